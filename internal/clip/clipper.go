// Package clip bounds oversized scenes. When the projected extent's larger
// dimension exceeds the maximum supported span, every geometry is
// intersected against a square clip rectangle centred on the scene origin,
// so no geometry extends past the declared extent.
package clip

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbclip "github.com/paulmach/orb/clip"

	"github.com/mapforge/osmscene/internal/validation"
	"github.com/mapforge/osmscene/pkg/scene"
)

// Clipper intersects scene geometry against a fixed square boundary.
//
// Clipping is idempotent: applying it to already-clipped geometry returns
// geometry equal to its input.
type Clipper struct {
	span  float64
	bound orb.Bound
	rec   *validation.Recorder
}

// New returns a clipper for a square boundary of the given span, centred
// on the origin.
func New(span float64, rec *validation.Recorder) *Clipper {
	half := span / 2
	return &Clipper{
		span: span,
		bound: orb.Bound{
			Min: orb.Point{-half, -half},
			Max: orb.Point{half, half},
		},
		rec: rec,
	}
}

// Bound returns the clip rectangle.
func (c *Clipper) Bound() orb.Bound { return c.bound }

// Needed reports whether an extent of the given planar dimensions requires
// clipping.
func (c *Clipper) Needed(width, height float64) bool {
	return math.Max(width, height) > c.span
}

// Apply returns a new SceneData with every geometry intersected against the
// clip rectangle. Input entities are never mutated. An entity split into
// multiple sub-segments yields derived ids (parent id plus ordinal suffix,
// starting at 0); a single surviving segment keeps the parent id. Entities
// entirely outside the boundary are dropped and recorded.
func (c *Clipper) Apply(data *scene.SceneData) *scene.SceneData {
	out := &scene.SceneData{Meta: data.Meta}

	for _, r := range data.Roads {
		parts := c.clipLine(r.Points)
		if len(parts) == 0 {
			c.dropped(r.ID)
			continue
		}
		for i, pts := range parts {
			seg := r
			seg.ID = derivedID(r.ID, i, len(parts))
			seg.Points = pts
			out.Roads = append(out.Roads, seg)
		}
	}

	for _, r := range data.Railways {
		parts := c.clipLine(r.Points)
		if len(parts) == 0 {
			c.dropped(r.ID)
			continue
		}
		for i, pts := range parts {
			seg := r
			seg.ID = derivedID(r.ID, i, len(parts))
			seg.Points = pts
			out.Railways = append(out.Railways, seg)
		}
	}

	for _, w := range data.Waterways {
		if w.IsArea {
			ring := c.clipRing(w.Points)
			if ring == nil {
				c.dropped(w.ID)
				continue
			}
			area := w
			area.Points = ring
			out.Waterways = append(out.Waterways, area)
			continue
		}
		parts := c.clipLine(w.Points)
		if len(parts) == 0 {
			c.dropped(w.ID)
			continue
		}
		for i, pts := range parts {
			seg := w
			seg.ID = derivedID(w.ID, i, len(parts))
			seg.Points = pts
			out.Waterways = append(out.Waterways, seg)
		}
	}

	kept := make(map[string]bool, len(data.Transit.Stops))
	for _, s := range data.Transit.Stops {
		if !c.bound.Contains(orb.Point{s.Position.X, s.Position.Y}) {
			c.dropped(s.ID)
			continue
		}
		kept[s.ID] = true
		out.Transit.Stops = append(out.Transit.Stops, s)
	}
	for _, r := range data.Transit.Routes {
		refs := make([]string, 0, len(r.Stops))
		for _, ref := range r.Stops {
			if kept[ref] {
				refs = append(refs, ref)
			}
		}
		if len(refs) == 0 {
			c.dropped(r.ID)
			continue
		}
		route := r
		route.Stops = refs
		out.Transit.Routes = append(out.Transit.Routes, route)
	}

	if out.Meta != nil {
		meta := *out.Meta
		meta.Clipped = true
		out.Meta = &meta
	}
	return out
}

func (c *Clipper) dropped(id string) {
	c.rec.Record(validation.KindDegenerate, 0,
		fmt.Sprintf("%s lies entirely outside the clip boundary", id))
}

func derivedID(parent string, ordinal, total int) string {
	if total == 1 {
		return parent
	}
	return fmt.Sprintf("%s_%d", parent, ordinal)
}

// clipLine intersects a polyline with the clip rectangle and rebuilds
// elevations on the result. Sub-segments reduced below 2 distinct points
// are discarded.
func (c *Clipper) clipLine(pts []scene.Point) [][]scene.Point {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.X, p.Y}
	}
	zi := newZIndex(pts)

	var out [][]scene.Point
	for _, part := range orbclip.LineString(c.bound, ls) {
		seg := zi.rebuild(part)
		if len(seg) >= 2 {
			out = append(out, seg)
		}
	}
	return out
}

// clipRing intersects a closed ring with the clip rectangle. It returns nil
// when the ring lies entirely outside.
func (c *Clipper) clipRing(pts []scene.Point) []scene.Point {
	ring := make(orb.Ring, len(pts))
	for i, p := range pts {
		ring[i] = orb.Point{p.X, p.Y}
	}
	zi := newZIndex(pts)

	clipped := orbclip.Ring(c.bound, ring)
	if len(clipped) < 4 {
		return nil
	}
	out := zi.rebuild(orb.LineString(clipped))
	if len(out) < 4 {
		return nil
	}
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// zIndex recovers elevations for clipped geometry. Vertices preserved by
// the clip keep their original z; vertices introduced on the boundary take
// an inverse-squared-distance weighting of the two nearest parent vertices.
type zIndex struct {
	exact map[orb.Point]float64
	nodes []scene.Point
}

func newZIndex(parent []scene.Point) *zIndex {
	zi := &zIndex{
		exact: make(map[orb.Point]float64, len(parent)),
		nodes: parent,
	}
	for _, p := range parent {
		zi.exact[orb.Point{p.X, p.Y}] = p.Z
	}
	return zi
}

func (zi *zIndex) rebuild(line orb.LineString) []scene.Point {
	out := make([]scene.Point, 0, len(line))
	for _, pt := range line {
		p := scene.Point{X: pt[0], Y: pt[1], Z: zi.at(pt)}.Rounded()
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (zi *zIndex) at(pt orb.Point) float64 {
	if z, ok := zi.exact[pt]; ok {
		return z
	}
	if len(zi.nodes) == 0 {
		return 0
	}

	d1, d2 := math.Inf(1), math.Inf(1)
	var z1, z2 float64
	for _, n := range zi.nodes {
		dx, dy := pt[0]-n.X, pt[1]-n.Y
		d := dx*dx + dy*dy
		switch {
		case d < d1:
			d2, z2 = d1, z1
			d1, z1 = d, n.Z
		case d < d2:
			d2, z2 = d, n.Z
		}
	}
	if d1 == 0 || math.IsInf(d2, 1) {
		return z1
	}
	w1, w2 := 1/(d1+1e-9), 1/(d2+1e-9)
	return (w1*z1 + w2*z2) / (w1 + w2)
}
