// Package scene defines the data model and external contracts of the
// OSM-to-scene conversion pipeline.
//
// A scene is the projected, validated, chunkable description of a city-sized
// area: road and rail segments, waterways, and the transit network, all
// expressed in a local planar coordinate system anchored at the centroid of
// the requested bounding box. The package also defines the input contract
// (RawFeature, as delivered by a fetch collaborator) and the collaborator
// interface for terrain elevation lookups.
//
// Scene values are built once per pipeline run and are immutable once
// serialized.
package scene

import "math"

// Point is a projected coordinate: x and y are planar offsets in metres
// east/north of the scene origin, z is terrain elevation in metres.
//
// All components are finite; the pipeline never emits NaN or infinite
// coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rounded returns the point with every component rounded to centimetres,
// the coordinate precision of serialized artifacts.
func (p Point) Rounded() Point {
	return Point{
		X: math.Round(p.X*100) / 100,
		Y: math.Round(p.Y*100) / 100,
		Z: math.Round(p.Z*100) / 100,
	}
}

// RoadSegment is a drivable way with a classified road type.
//
// A segment has at least 2 points. Segments produced by clipping a parent
// way carry a derived id (parent id plus ordinal suffix) and inherit every
// non-geometric attribute of the parent.
type RoadSegment struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Points     []Point `json:"points"`
	Lanes      int     `json:"lanes"`
	OneWay     bool    `json:"oneWay"`
	SpeedLimit int     `json:"speedLimit"`
	Priority   int     `json:"priority"`
}

// RailSegment is a rail-bound way (train, metro, subway, tram).
type RailSegment struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Points      []Point `json:"points"`
	Electrified bool    `json:"electrified"`
}

// Waterway is a linear water feature (river, stream, canal, coastline) or,
// when IsArea is set, a closed ring describing a lake or reservoir.
type Waterway struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Name   string   `json:"name"`
	IsArea bool     `json:"isArea"`
	Points []Point  `json:"points"`
	Width  *float64 `json:"width,omitempty"`
}

// TransitStop is a single transit halt (bus stop, tram stop, station
// platform) with one projected position.
type TransitStop struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Position Point  `json:"position"`
}

// TransitRoute is an ordered service pattern over existing stops.
//
// Stops holds TransitStop ids in relation order; every id resolves to a stop
// present in the same scene (dangling references are dropped during parsing).
// Routes carry no geometry of their own.
type TransitRoute struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Number   string   `json:"number"`
	Type     string   `json:"type"`
	Operator string   `json:"operator,omitempty"`
	Stops    []string `json:"stops"`
}

// TransitData groups the transit network of a scene.
type TransitData struct {
	Stops  []TransitStop  `json:"stops"`
	Routes []TransitRoute `json:"routes"`
}

// SceneData is the aggregate output of one pipeline run.
type SceneData struct {
	Roads     []RoadSegment `json:"roads"`
	Railways  []RailSegment `json:"railways"`
	Waterways []Waterway    `json:"waterways"`
	Transit   TransitData   `json:"transit"`
	Meta      *Meta         `json:"_meta,omitempty"`
}

// Meta records provenance and projection statistics for a scene.
type Meta struct {
	Area            string      `json:"area,omitempty"`
	BBox            BoundingBox `json:"bbox"`
	OriginLat       float64     `json:"originLat"`
	OriginLon       float64     `json:"originLon"`
	ExtentWidth     float64     `json:"extentWidth"`
	ExtentHeight    float64     `json:"extentHeight"`
	Clipped         bool        `json:"clipped"`
	ElevationPoints int         `json:"elevationPoints"`
}

// ChunkBounds is the rectangular planar footprint of a chunk.
type ChunkBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Chunk is one grid cell of the partitioned scene: its id, bounds, and the
// subset of scene entities whose geometry overlaps the cell.
//
// Chunk ids have the form "chunk_<col>_<row>" and double as the sort key of
// the chunked artifact.
type Chunk struct {
	ChunkID string      `json:"chunk_id"`
	Bounds  ChunkBounds `json:"bounds"`
	Data    *SceneData  `json:"data"`
}

// ValidationEvent is a non-fatal record of a skipped entity or defaulted
// value, distinct from a fatal pipeline error. The offending feature is
// dropped or repaired and the run continues.
type ValidationEvent struct {
	Kind      string `json:"kind"`
	FeatureID int64  `json:"feature_id,omitempty"`
	Detail    string `json:"detail"`
}

// EntityCount returns the number of entities across all categories.
func (s *SceneData) EntityCount() int {
	return len(s.Roads) + len(s.Railways) + len(s.Waterways) +
		len(s.Transit.Stops) + len(s.Transit.Routes)
}
