package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/conduit/internal/tileset"
	"github.com/samdwyer/conduit/internal/world"
)

// Status is the information shown below the grid.
type Status struct {
	Seed      int64
	Seeded    bool
	Animate   bool
	Traversal string
	State     string
	Attempts  int
	Placed    int
	Message   string
}

// Renderer handles drawing grids to the screen.
type Renderer struct {
	screen  *Screen
	palette tileset.Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette tileset.Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// Render draws the framed grid and status lines to the screen.
func (r *Renderer) Render(grid *world.Grid, status Status) {
	r.screen.Clear()

	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	size := grid.Size()

	// Frame
	for x := 1; x <= size; x++ {
		r.screen.SetContent(x, 0, frameHorizontal, borderStyle)
		r.screen.SetContent(x, size+1, frameHorizontal, borderStyle)
	}
	for y := 1; y <= size; y++ {
		r.screen.SetContent(0, y, frameVertical, borderStyle)
		r.screen.SetContent(size+1, y, frameVertical, borderStyle)
	}
	for _, corner := range [][2]int{{0, 0}, {size + 1, 0}, {0, size + 1}, {size + 1, size + 1}} {
		r.screen.SetContent(corner[0], corner[1], frameCorner, borderStyle)
	}

	// Cells
	for i := 0; i < grid.Len(); i++ {
		row, col := grid.Position(i)
		cell := grid.Cell(i)
		style := tcell.StyleDefault
		if cell.Placed {
			style = style.Foreground(r.palette.Color(cell.Variant))
		}
		r.screen.SetContent(col+1, row+1, cell.Glyph(), style)
	}

	r.renderStatus(status, size+2)
	r.screen.Show()
}

func (r *Renderer) renderStatus(status Status, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	mode := "random"
	if status.Seeded {
		mode = "seeded"
	}
	line := fmt.Sprintf("Seed %d (%s)  %s  tiles %d  attempts %d",
		status.Seed, mode, status.State, status.Placed, status.Attempts)
	if status.Traversal != "" {
		line += "  " + status.Traversal
	}
	if status.Animate {
		line += "  animating"
	}
	r.screen.SetString(0, y, line, style)

	if status.Message != "" {
		r.RenderMessage(status.Message, y+1)
	}
	r.screen.SetString(0, y+2, "r regenerate  s seeded/random  space animate  q quit",
		tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// RenderMessage displays a message at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.screen.SetString(0, y, msg, tcell.StyleDefault.Foreground(tcell.ColorYellow))
}
