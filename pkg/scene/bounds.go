package scene

import "math"

// metersPerDegree is the length of one degree of latitude in metres.
// Longitude degrees shrink by cos(latitude); see the projection stage.
const metersPerDegree = 111320.0

// BoundingBox is a rectangular geographic region in decimal degrees.
//
// Invariant: South < North and West < East. Validate reports a violation as
// an *ErrInvalidBoundingBox, which the pipeline treats as fatal.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Validate checks the bounding box invariants.
func (b BoundingBox) Validate() error {
	if b.South >= b.North {
		return &ErrInvalidBoundingBox{BBox: b, Reason: "south must be less than north"}
	}
	if b.West >= b.East {
		return &ErrInvalidBoundingBox{BBox: b, Reason: "west must be less than east"}
	}
	if b.South < -90 || b.North > 90 {
		return &ErrInvalidBoundingBox{BBox: b, Reason: "latitude out of range (±90)"}
	}
	if b.West < -180 || b.East > 180 {
		return &ErrInvalidBoundingBox{BBox: b, Reason: "longitude out of range (±180)"}
	}
	return nil
}

// Center returns the centroid of the box, the anchor of the planar
// projection.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// PlanarWidth returns the east-west extent of the box in metres, measured at
// the box's central latitude.
func (b BoundingBox) PlanarWidth() float64 {
	lat, _ := b.Center()
	return (b.East - b.West) * metersPerDegree * math.Cos(lat*math.Pi/180)
}

// PlanarHeight returns the north-south extent of the box in metres.
func (b BoundingBox) PlanarHeight() float64 {
	return (b.North - b.South) * metersPerDegree
}
