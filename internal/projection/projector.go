// Package projection maps geodetic coordinates onto a local planar
// coordinate system anchored at the centroid of the requested bounding box,
// and attaches terrain elevation via a batched, cached lookup.
package projection

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/pkg/scene"
)

// metersPerDegree is the length of one degree of latitude in metres.
const metersPerDegree = 111320.0

// Projector implements a local tangent-plane projection: a small patch of
// the sphere is treated as flat, with east/north offsets measured in metres
// from the origin. One degree of longitude is scaled by cos(origin
// latitude), so the transform stays uniform across the area, unlike naive
// degree scaling. The transform is invertible (see Unproject); distortion
// stays negligible because scene extents are capped by the clipper.
type Projector struct {
	originLat float64
	originLon float64
	mPerLon   float64 // metres per degree of longitude at the origin latitude
	width     float64 // planar extent of the bounding box, metres
	height    float64
}

// New returns a projector anchored at the centroid of b.
func New(b scene.BoundingBox) *Projector {
	lat, lon := b.Center()
	return &Projector{
		originLat: lat,
		originLon: lon,
		mPerLon:   metersPerDegree * math.Cos(lat*math.Pi/180),
		width:     b.PlanarWidth(),
		height:    b.PlanarHeight(),
	}
}

// Project maps a geodetic (lon, lat) coordinate to planar offsets from the
// origin, carrying the supplied elevation as z.
func (p *Projector) Project(pt orb.Point, elevation float64) scene.Point {
	return scene.Point{
		X: (pt.Lon() - p.originLon) * p.mPerLon,
		Y: (pt.Lat() - p.originLat) * metersPerDegree,
		Z: elevation,
	}
}

// Unproject inverts Project, recovering the geodetic coordinate of a planar
// point. Elevation is discarded.
func (p *Projector) Unproject(pt scene.Point) orb.Point {
	return orb.Point{
		p.originLon + pt.X/p.mPerLon,
		p.originLat + pt.Y/metersPerDegree,
	}
}

// Origin returns the projection anchor in degrees.
func (p *Projector) Origin() (lat, lon float64) {
	return p.originLat, p.originLon
}

// ExtentWidth returns the east-west planar extent of the area in metres.
func (p *Projector) ExtentWidth() float64 { return p.width }

// ExtentHeight returns the north-south planar extent of the area in metres.
func (p *Projector) ExtentHeight() float64 { return p.height }

// Extent returns the planar bounding rectangle of the projected area,
// centred on the origin.
func (p *Projector) Extent() orb.Bound {
	return orb.Bound{
		Min: orb.Point{-p.width / 2, -p.height / 2},
		Max: orb.Point{p.width / 2, p.height / 2},
	}
}
