package tile

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidConfiguration is returned when a tile table or grid request can never
// produce a valid generation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// WeightedTile pairs a variant with its relative selection weight.
type WeightedTile struct {
	Variant Variant
	Weight  int
}

// DefaultWeights returns the reference weight table, one entry per variant.
func DefaultWeights() []WeightedTile {
	return []WeightedTile{
		{0, 1}, {1, 16}, {2, 16}, {3, 12},
		{4, 16}, {5, 12}, {6, 12}, {7, 6},
		{8, 16}, {9, 12}, {10, 12}, {11, 6},
		{12, 12}, {13, 6}, {14, 6}, {15, 2},
	}
}

// Tables holds the candidate list for each growth direction. The list for
// direction d contains every tile that is open on d.Opposite(), so a tile placed
// on side d of a cell connects back to it.
type Tables struct {
	byDirection [4][]WeightedTile
}

// NewTables builds direction tables from a weighted tile set. Every weight must be
// positive, variants must be distinct and in range, and each growth direction must
// end up with at least one candidate.
func NewTables(set []WeightedTile) (*Tables, error) {
	seen := make(map[Variant]bool, len(set))
	for _, wt := range set {
		if !wt.Variant.Valid() {
			return nil, fmt.Errorf("%w: variant %d out of range", ErrInvalidConfiguration, wt.Variant)
		}
		if wt.Weight <= 0 {
			return nil, fmt.Errorf("%w: variant %d has non-positive weight %d", ErrInvalidConfiguration, wt.Variant, wt.Weight)
		}
		if seen[wt.Variant] {
			return nil, fmt.Errorf("%w: variant %d listed twice", ErrInvalidConfiguration, wt.Variant)
		}
		seen[wt.Variant] = true
	}

	t := &Tables{}
	for _, d := range Sides {
		back := d.Opposite()
		for _, wt := range set {
			if wt.Variant.HasOpening(back) {
				t.byDirection[d] = append(t.byDirection[d], wt)
			}
		}
		if len(t.byDirection[d]) == 0 {
			return nil, fmt.Errorf("%w: no tile can be grown %s (needs a %s opening)", ErrInvalidConfiguration, d, back)
		}
	}
	return t, nil
}

// MustNewTables builds tables, panicking on error.
func MustNewTables(set []WeightedTile) *Tables {
	t, err := NewTables(set)
	if err != nil {
		panic(err)
	}
	return t
}

// For returns a copy of the candidate list for growing in direction d.
func (t *Tables) For(d Side) []WeightedTile {
	return slices.Clone(t.byDirection[d])
}

var defaultTables = sync.OnceValue(func() *Tables {
	return MustNewTables(DefaultWeights())
})

// DefaultTables returns the shared tables built from DefaultWeights.
func DefaultTables() *Tables {
	return defaultTables()
}
