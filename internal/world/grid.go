// Package world provides the tile grid and the generator that grows a connected
// pipe network across it.
package world

import (
	"fmt"

	"github.com/samdwyer/conduit/internal/tile"
)

const (
	// DefaultSize is the grid edge length used when none is configured.
	DefaultSize = 16

	// MinSize is the smallest grid whose centre cell does not touch an edge.
	MinSize = 3

	// MaxSize bounds the edge length so the cell count stays well inside int.
	MaxSize = 1 << 12
)

// Cell is a single grid position. A cell is empty until Placed is set.
type Cell struct {
	Variant tile.Variant
	Placed  bool
}

// Glyph returns the cell's display rune, blank when empty.
func (c Cell) Glyph() rune {
	if !c.Placed {
		return tile.BlankGlyph
	}
	return c.Variant.Glyph()
}

// Grid is a fixed-size square of cells addressed by linear index row*size+col.
type Grid struct {
	size  int
	cells []Cell
}

// NewGrid creates an empty grid with the given edge length.
func NewGrid(size int) (*Grid, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: grid size %d outside %d..%d", tile.ErrInvalidConfiguration, size, MinSize, MaxSize)
	}
	return &Grid{
		size:  size,
		cells: make([]Cell, size*size),
	}, nil
}

// Size returns the grid edge length.
func (g *Grid) Size() int {
	return g.size
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Index converts a row and column to a linear index.
func (g *Grid) Index(row, col int) int {
	return row*g.size + col
}

// Position converts a linear index to row and column.
func (g *Grid) Position(index int) (row, col int) {
	return index / g.size, index % g.size
}

// Center returns the index of the seed cell.
func (g *Grid) Center() int {
	return g.Index(g.size/2, g.size/2)
}

// InBounds returns true if the index addresses a cell.
func (g *Grid) InBounds(index int) bool {
	return index >= 0 && index < len(g.cells)
}

// Neighbor returns the index of the adjacent cell on the given side, or false
// when that side faces the grid edge. There is no wraparound.
func (g *Grid) Neighbor(index int, side tile.Side) (int, bool) {
	if !g.InBounds(index) {
		return 0, false
	}
	row, col := g.Position(index)

	switch side {
	case tile.Top:
		row--
	case tile.Right:
		col++
	case tile.Bottom:
		row++
	case tile.Left:
		col--
	default:
		return 0, false
	}

	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		return 0, false
	}
	return g.Index(row, col), true
}

// Cell returns the cell at the given index.
func (g *Grid) Cell(index int) Cell {
	return g.cells[index]
}

// Placed returns true if the cell at index holds a tile.
func (g *Grid) Placed(index int) bool {
	return g.cells[index].Placed
}

// Set assigns a variant to the cell at index. The grid does not refuse a second
// assignment; the generator never issues one.
func (g *Grid) Set(index int, v tile.Variant) {
	g.cells[index] = Cell{Variant: v, Placed: true}
}

// Count returns the number of placed cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c.Placed {
			n++
		}
	}
	return n
}

// Render returns one glyph per cell in row-major order.
func (g *Grid) Render() []rune {
	glyphs := make([]rune, len(g.cells))
	for i, c := range g.cells {
		glyphs[i] = c.Glyph()
	}
	return glyphs
}

// Rows returns the rendered grid split into one string per row.
func (g *Grid) Rows() []string {
	glyphs := g.Render()
	rows := make([]string, g.size)
	for r := range rows {
		rows[r] = string(glyphs[r*g.size : (r+1)*g.size])
	}
	return rows
}

// Equal reports whether two grids have the same size and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
