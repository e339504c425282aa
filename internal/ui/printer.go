package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/samdwyer/conduit/internal/logger"
	"github.com/samdwyer/conduit/internal/tileset"
	"github.com/samdwyer/conduit/internal/world"
)

const (
	frameCorner     = '+'
	frameHorizontal = '-'
	frameVertical   = '|'
)

// Printer writes grids as framed text.
type Printer struct {
	out     io.Writer
	palette tileset.Palette
	color   bool
	width   int // 0 when the output is not a terminal
}

// NewPrinter creates a printer for out. Colour is enabled when out is a terminal.
func NewPrinter(out io.Writer, palette tileset.Palette) *Printer {
	p := &Printer{out: out, palette: palette}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.color = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = w
		}
	}
	return p
}

// SetColor forces colour output on or off.
func (p *Printer) SetColor(enabled bool) {
	p.color = enabled
}

// Print writes the header line and the framed grid.
func (p *Printer) Print(grid *world.Grid, seed int64) error {
	size := grid.Size()
	if p.width > 0 && p.width < size+2 {
		logger.Warning("terminal narrower than grid", "width", p.width, "needed", size+2)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Map (%dx%d), Seed = %d\n", size, size, seed)
	border := Border(size)
	b.WriteString(border)
	b.WriteByte('\n')
	for row := 0; row < size; row++ {
		b.WriteRune(frameVertical)
		for col := 0; col < size; col++ {
			b.WriteString(p.glyph(grid.Cell(grid.Index(row, col))))
		}
		b.WriteRune(frameVertical)
		b.WriteByte('\n')
	}
	b.WriteString(border)
	b.WriteByte('\n')

	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *Printer) glyph(cell world.Cell) string {
	s := string(cell.Glyph())
	if !p.color || !cell.Placed {
		return s
	}
	r, g, b := p.palette.RGB(cell.Variant)
	return color.RGB(r, g, b).Sprint(s)
}

// Border returns the top or bottom frame line for a grid of the given size.
func Border(size int) string {
	return string(frameCorner) + strings.Repeat(string(frameHorizontal), size) + string(frameCorner)
}

// Frame returns the grid rows surrounded by the text frame, without colour.
func Frame(grid *world.Grid) []string {
	border := Border(grid.Size())
	lines := make([]string, 0, grid.Size()+2)
	lines = append(lines, border)
	for _, row := range grid.Rows() {
		lines = append(lines, string(frameVertical)+row+string(frameVertical))
	}
	return append(lines, border)
}
