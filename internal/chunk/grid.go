// Package chunk partitions a scene into a uniform grid of fixed-size cells.
// Every entity is assigned to each cell its geometry overlaps; the union of
// all cell bounds tiles the scene extent exactly, with no gaps and no
// overlap between distinct cells.
package chunk

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/mapforge/osmscene/pkg/scene"
)

// DefaultCellSize is the default grid cell edge length in metres, half the
// maximum supported scene span.
const DefaultCellSize = 28672.0

// Grid is a uniform partition of a planar extent. Cells are indexed by
// (column, row) from the extent's minimum corner; cell (c, r) covers the
// half-open square [minX+c*s, minX+(c+1)*s) x [minY+r*s, minY+(r+1)*s).
type Grid struct {
	cellSize float64
	minX     float64
	minY     float64
	cols     int
	rows     int
}

// NewGrid returns a grid covering extent. A non-positive cellSize falls
// back to DefaultCellSize. A degenerate extent still yields a 1x1 grid.
func NewGrid(extent orb.Bound, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cols := int(math.Ceil((extent.Max.X() - extent.Min.X()) / cellSize))
	rows := int(math.Ceil((extent.Max.Y() - extent.Min.Y()) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		cellSize: cellSize,
		minX:     extent.Min.X(),
		minY:     extent.Min.Y(),
		cols:     cols,
		rows:     rows,
	}
}

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the cell edge length in metres.
func (g *Grid) CellSize() float64 { return g.cellSize }

// CellBounds returns the planar footprint of cell (col, row).
func (g *Grid) CellBounds(col, row int) scene.ChunkBounds {
	return scene.ChunkBounds{
		X:      g.minX + float64(col)*g.cellSize,
		Y:      g.minY + float64(row)*g.cellSize,
		Width:  g.cellSize,
		Height: g.cellSize,
	}
}

// CellAt returns the (col, row) of the cell containing a point, clamped to
// the grid. Points on the extent's maximum edge land in the last cell.
func (g *Grid) CellAt(p scene.Point) (col, row int) {
	col = int(math.Floor((p.X - g.minX) / g.cellSize))
	row = int(math.Floor((p.Y - g.minY) / g.cellSize))
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
