package chunk

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/pkg/scene"
)

type cellKey struct {
	col, row int
}

// Partition splits a scene into grid cells over the given planar extent.
//
// Line and area entities are assigned to every cell their bounding box
// overlaps, so roads crossing a cell boundary appear in both cells. Stops
// belong to exactly one cell. Routes are assigned to every cell holding at
// least one of their stops and carry their full stop list in each.
//
// All grid cells are emitted, including empty ones, in (column, row) order.
// Chunk entity slices reference the input entities; the input is not
// mutated.
func Partition(data *scene.SceneData, extent orb.Bound, cellSize float64) []scene.Chunk {
	g := NewGrid(extent, cellSize)
	ix := newSceneIndex(data)

	stopCell := make(map[string]cellKey, len(data.Transit.Stops))
	stopsByCell := make(map[cellKey][]int)
	for i, s := range data.Transit.Stops {
		col, row := g.CellAt(s.Position)
		k := cellKey{col, row}
		stopCell[s.ID] = k
		stopsByCell[k] = append(stopsByCell[k], i)
	}

	routesByCell := make(map[cellKey][]int)
	for i, r := range data.Transit.Routes {
		assigned := make(map[cellKey]bool)
		for _, ref := range r.Stops {
			k, ok := stopCell[ref]
			if !ok || assigned[k] {
				continue
			}
			assigned[k] = true
			routesByCell[k] = append(routesByCell[k], i)
		}
	}

	chunks := make([]scene.Chunk, 0, g.Cols()*g.Rows())
	for col := 0; col < g.Cols(); col++ {
		for row := 0; row < g.Rows(); row++ {
			k := cellKey{col, row}
			bounds := g.CellBounds(col, row)

			var roads, rails, waters []int
			for _, e := range ix.overlapping(bounds) {
				switch e.kind {
				case kindRoad:
					roads = append(roads, e.idx)
				case kindRail:
					rails = append(rails, e.idx)
				case kindWater:
					waters = append(waters, e.idx)
				}
			}
			// SearchIntersect order is not stable; restore input order.
			sort.Ints(roads)
			sort.Ints(rails)
			sort.Ints(waters)

			sub := &scene.SceneData{}
			for _, i := range roads {
				sub.Roads = append(sub.Roads, data.Roads[i])
			}
			for _, i := range rails {
				sub.Railways = append(sub.Railways, data.Railways[i])
			}
			for _, i := range waters {
				sub.Waterways = append(sub.Waterways, data.Waterways[i])
			}
			for _, i := range stopsByCell[k] {
				sub.Transit.Stops = append(sub.Transit.Stops, data.Transit.Stops[i])
			}
			for _, i := range routesByCell[k] {
				sub.Transit.Routes = append(sub.Transit.Routes, data.Transit.Routes[i])
			}

			chunks = append(chunks, scene.Chunk{
				ChunkID: fmt.Sprintf("chunk_%d_%d", col, row),
				Bounds:  bounds,
				Data:    sub,
			})
		}
	}
	return chunks
}
