// Package world holds the static obstacle grid a robot drives on.
package world

import "errors"

// Cell is the content of one grid square.
type Cell uint8

const (
	Empty Cell = iota
	Obstacle
)

func (c Cell) String() string {
	if c == Obstacle {
		return "obstacle"
	}
	return "empty"
}

var ErrEmptyGrid = errors.New("grid has no cells")

// Grid is a W×H matrix addressed as (x, y) with y growing downwards.
// Once handed to an engine it must not be modified.
type Grid struct {
	cells [][]Cell
}

// New returns an all-empty grid. Non-positive sizes yield an empty grid.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		return &Grid{}
	}
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	return &Grid{cells: cells}
}

func (g *Grid) Width() int {
	if g == nil || len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Empty reports whether the grid has no addressable cell.
func (g *Grid) Empty() bool {
	return g.Width() == 0 || g.Height() == 0
}

func (g *Grid) InBounds(x, y int) bool {
	return y >= 0 && y < g.Height() && x >= 0 && x < g.Width()
}

// IsObstacle reports whether (x, y) is an in-bounds obstacle cell.
func (g *Grid) IsObstacle(x, y int) bool {
	return g.InBounds(x, y) && g.cells[y][x] == Obstacle
}

func (g *Grid) IsFree(x, y int) bool {
	return g.InBounds(x, y) && g.cells[y][x] == Empty
}

func (g *Grid) At(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Empty, false
	}
	return g.cells[y][x], true
}

// Set changes a cell while the grid is being built. Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, c Cell) {
	if g.InBounds(x, y) {
		g.cells[y][x] = c
	}
}

// Obstacles counts obstacle cells.
func (g *Grid) Obstacles() int {
	n := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c == Obstacle {
				n++
			}
		}
	}
	return n
}
