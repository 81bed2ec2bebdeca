// Package spatial provides the broad phase for collision tests: a uniform
// grid of entity indices rebuilt every tick.
//
// The grid stores integer indices (not pointers) into the caller's slice so
// a rebuild allocates nothing once the cells have grown to their working size.
package spatial

import (
	"math"
	"sort"
)

// Grid buckets entity centers into fixed-size cells. Positions outside the
// field are clamped into the border cells, so entities still off-screen
// (spawning hostiles) remain queryable.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col])
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32 // reusable buffer for query results
	count       int
}

// NewGrid creates a grid covering width x height. cellSize should be about
// the size of the largest entity.
func NewGrid(width, height, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))

	// Ensure at least 1x1 grid
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, 4)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Reset empties every cell without releasing memory.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert files entity id under the cell containing (x, y).
func (g *Grid) Insert(id uint32, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], id)
	g.count++
}

// Query returns the ids of every entity whose position lies in a cell
// touched by the rectangle [x0,x1] x [y0,y1], in ascending order. Callers
// still run the exact overlap test.
//
// The returned slice is reused by the next Query.
func (g *Grid) Query(x0, y0, x1, y1 float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cell(x0, y0)
	maxCol, maxRow := g.cell(x1, y1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}

	sort.Slice(g.scratch, func(i, j int) bool { return g.scratch[i] < g.scratch[j] })
	return g.scratch
}

// cell maps a position to clamped grid coordinates.
func (g *Grid) cell(x, y float64) (int, int) {
	col := int(math.Floor(x * g.invCellSize))
	row := int(math.Floor(y * g.invCellSize))

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

// Stats describes the current occupancy for debugging/profiling.
type Stats struct {
	Cells     int
	Occupied  int
	Entities  int
	MaxInCell int
}

// Stats returns grid statistics.
func (g *Grid) Stats() Stats {
	st := Stats{Cells: len(g.cells), Entities: g.count}
	for _, cell := range g.cells {
		if n := len(cell); n > 0 {
			st.Occupied++
			if n > st.MaxInCell {
				st.MaxInCell = n
			}
		}
	}
	return st
}

// Dimensions returns the grid dimensions.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
