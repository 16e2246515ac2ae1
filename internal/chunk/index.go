package chunk

import (
	"github.com/dhconnelly/rtreego"

	"github.com/mapforge/osmscene/pkg/scene"
)

type entityKind int

const (
	kindRoad entityKind = iota
	kindRail
	kindWater
)

// rectEpsilon pads degenerate bounding boxes so vertical and horizontal
// segments still form valid R-tree rectangles.
const rectEpsilon = 1e-9

// entry references one scene entity by kind and slice index.
type entry struct {
	rect rtreego.Rect
	kind entityKind
	idx  int
}

// Bounds method for the rtreego.Spatial interface.
func (e *entry) Bounds() rtreego.Rect { return e.rect }

// sceneIndex answers "which entities overlap this cell" in O(log N) per
// query instead of a linear scan per cell.
type sceneIndex struct {
	tree *rtreego.Rtree
}

func newSceneIndex(data *scene.SceneData) *sceneIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i := range data.Roads {
		tree.Insert(&entry{rect: lineRect(data.Roads[i].Points), kind: kindRoad, idx: i})
	}
	for i := range data.Railways {
		tree.Insert(&entry{rect: lineRect(data.Railways[i].Points), kind: kindRail, idx: i})
	}
	for i := range data.Waterways {
		tree.Insert(&entry{rect: lineRect(data.Waterways[i].Points), kind: kindWater, idx: i})
	}
	return &sceneIndex{tree: tree}
}

// overlapping returns the entries whose bounding box intersects b.
func (ix *sceneIndex) overlapping(b scene.ChunkBounds) []*entry {
	rect, err := rtreego.NewRect(rtreego.Point{b.X, b.Y}, []float64{b.Width, b.Height})
	if err != nil {
		return nil
	}
	spatials := ix.tree.SearchIntersect(rect)
	out := make([]*entry, 0, len(spatials))
	for _, s := range spatials {
		out = append(out, s.(*entry))
	}
	return out
}

// lineRect returns the bounding rectangle of a polyline, padded on
// degenerate axes.
func lineRect(pts []scene.Point) rtreego.Rect {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	w, h := maxX-minX, maxY-minY
	if w < rectEpsilon {
		w = rectEpsilon
	}
	if h < rectEpsilon {
		h = rectEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
	return rect
}
