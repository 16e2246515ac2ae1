package scene

import (
	"fmt"
)

// ErrInvalidBoundingBox indicates a bounding box that violates its
// invariants (south < north, west < east, coordinates in range). Fatal: the
// pipeline aborts before fetching or parsing anything.
type ErrInvalidBoundingBox struct {
	BBox   BoundingBox
	Reason string
}

func (e *ErrInvalidBoundingBox) Error() string {
	return fmt.Sprintf("invalid bounding box (%g,%g,%g,%g): %s",
		e.BBox.South, e.BBox.West, e.BBox.North, e.BBox.East, e.Reason)
}

// ErrNoFeatures indicates that the requested area yielded zero entities
// across all categories. This usually means a caller input problem (wrong
// bounding box, wrong category selection) rather than an upstream outage.
type ErrNoFeatures struct {
	BBox BoundingBox
}

func (e *ErrNoFeatures) Error() string {
	return fmt.Sprintf("no features in area (%g,%g,%g,%g)",
		e.BBox.South, e.BBox.West, e.BBox.North, e.BBox.East)
}

// ErrUpstream wraps a failure of an external collaborator (feature fetch or
// elevation service) after its own retries are exhausted. Distinct from
// ErrNoFeatures: the request may succeed when retried later.
type ErrUpstream struct {
	Op  string // "fetch" or "elevation"
	Err error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Op, e.Err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}
