package tileset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/conduit/internal/tile"
)

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	r, g, b, err := parseHexRGB(hex)
	if err != nil {
		return tcell.ColorDefault, err
	}
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

func parseHexRGB(hex string) (r, g, b uint8, err error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color length: %s", hex)
	}

	components := [3]uint8{}
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid %s component in %s: %w", name, hex, err)
		}
		components[i] = uint8(v)
	}
	return components[0], components[1], components[2], nil
}

// Palette maps a tile's opening count to a colour.
type Palette struct {
	hex    []string
	colors []tcell.Color
}

// NewPalette builds a palette from up to five hex colours. Unparseable or
// missing entries fall back to white.
func NewPalette(hex []string) Palette {
	p := Palette{
		hex:    make([]string, 5),
		colors: make([]tcell.Color, 5),
	}
	for i := range p.colors {
		p.hex[i] = "#FFFFFF"
		p.colors[i] = tcell.ColorWhite
		if i < len(hex) {
			if c, err := ParseHexColor(hex[i]); err == nil {
				p.hex[i] = "#" + strings.ToUpper(strings.TrimPrefix(hex[i], "#"))
				p.colors[i] = c
			}
		}
	}
	return p
}

// Color returns the tcell colour for a variant.
func (p Palette) Color(v tile.Variant) tcell.Color {
	if len(p.colors) == 0 {
		return tcell.ColorWhite
	}
	return p.colors[v.OpeningCount()]
}

// RGB returns the red, green and blue components for a variant.
func (p Palette) RGB(v tile.Variant) (r, g, b uint8) {
	if len(p.hex) == 0 {
		return 255, 255, 255
	}
	r, g, b, _ = parseHexRGB(p.hex[v.OpeningCount()])
	return r, g, b
}
