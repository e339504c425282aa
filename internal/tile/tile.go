// Package tile provides the connectivity codec for pipe tiles: the 16 variants,
// their openings, display glyphs and the weighted candidate tables used to grow
// a network of connected tiles.
package tile

// Variant is a tile shape encoded as a 4-bit openings mask.
// Bit 1 is top, 2 is right, 4 is bottom and 8 is left.
type Variant uint8

const (
	// Isolated has no openings.
	Isolated Variant = 0
	// Cross has an opening on all four sides. It is the seed variant.
	Cross Variant = 15

	// Count is the number of distinct variants.
	Count = 16
)

// Side identifies one of the four sides of a tile, and equally the direction
// from a cell towards its neighbour on that side.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists the four sides in growth order.
var Sides = [4]Side{Top, Right, Bottom, Left}

// Bit returns the mask bit for the side.
func (s Side) Bit() Variant {
	return 1 << uint(s)
}

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Valid reports whether v is one of the 16 variants.
func (v Variant) Valid() bool {
	return v < Count
}

// HasOpening returns true if the variant is open on the given side.
func (v Variant) HasOpening(s Side) bool {
	return v&s.Bit() == s.Bit()
}

// Openings returns the open sides in growth order.
func (v Variant) Openings() []Side {
	sides := make([]Side, 0, 4)
	for _, s := range Sides {
		if v.HasOpening(s) {
			sides = append(sides, s)
		}
	}
	return sides
}

// OpeningCount returns how many sides are open.
func (v Variant) OpeningCount() int {
	n := 0
	for _, s := range Sides {
		if v.HasOpening(s) {
			n++
		}
	}
	return n
}

// FromOpenings encodes four side flags into a variant.
func FromOpenings(top, right, bottom, left bool) Variant {
	var v Variant
	for s, open := range [4]bool{top, right, bottom, left} {
		if open {
			v |= Side(s).Bit()
		}
	}
	return v
}

// BlankGlyph is displayed for cells that hold no tile.
const BlankGlyph = ' '

var glyphs = [Count]rune{
	' ', // 0000
	'╨', // 0001
	'╞', // 0010
	'╚', // 0011
	'╥', // 0100
	'║', // 0101
	'╔', // 0110
	'╠', // 0111
	'╡', // 1000
	'╝', // 1001
	'═', // 1010
	'╩', // 1011
	'╗', // 1100
	'╣', // 1101
	'╦', // 1110
	'╬', // 1111
}

// Glyph returns the box-drawing rune for the variant.
func (v Variant) Glyph() rune {
	if !v.Valid() {
		return '?'
	}
	return glyphs[v]
}

// String returns the variant's glyph.
func (v Variant) String() string {
	return string(v.Glyph())
}
