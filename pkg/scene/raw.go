package scene

import (
	"context"

	"github.com/paulmach/orb"
)

// Category identifies one class of fetched features. The fetch collaborator
// delivers raw features grouped by category, already confined to the
// requested bounding box.
type Category string

const (
	CategoryRoads     Category = "roads"
	CategoryRailways  Category = "railways"
	CategoryWaterways Category = "waterways"
	CategoryTransit   Category = "transit"
)

// FeatureKind distinguishes the raw element types of the source data model.
type FeatureKind int

const (
	KindNode FeatureKind = iota + 1
	KindWay
	KindRelation
)

// String returns the element type name used in the source data model.
func (k FeatureKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Member is one entry of a relation's ordered member list.
type Member struct {
	Kind FeatureKind `json:"kind"`
	Ref  int64       `json:"ref"`
	Role string      `json:"role"`
}

// RawFeature is a loosely-typed geographic element as delivered by the
// fetch collaborator: an ordered coordinate sequence (nodes and ways), or an
// ordered member list (relations), plus free-form key-value tags.
//
// RawFeature is transient: it exists only as input to the feature parser and
// is never retained in a scene.
type RawFeature struct {
	Kind    FeatureKind       `json:"kind"`
	ID      int64             `json:"id"`
	Points  []orb.Point       `json:"points,omitempty"` // (lon, lat) pairs in way order
	Members []Member          `json:"members,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// Tag returns the value of a tag, or "" when absent.
func (f *RawFeature) Tag(key string) string {
	return f.Tags[key]
}

// HasTag reports whether a tag key is present, regardless of value.
func (f *RawFeature) HasTag(key string) bool {
	_, ok := f.Tags[key]
	return ok
}

// ElevationSource looks up terrain elevation for a batch of geodetic
// coordinates. Implementations wrap an external elevation service and own
// their retry and rate-limit policy.
//
// The returned slice must have one elevation in metres per input coordinate,
// in input order. A batch-level failure is reported as an error; the
// pipeline degrades affected points to zero elevation rather than aborting.
//
// Lookups for the same coordinate always resolve to the same elevation, so
// concurrent batches against a shared cache are safe.
type ElevationSource interface {
	Elevations(ctx context.Context, coords []orb.Point) ([]float64, error)
}
