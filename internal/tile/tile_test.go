package tile

import (
	"errors"
	"slices"
	"testing"
)

func TestHasOpeningMatchesBits(t *testing.T) {
	bits := map[Side]int{Top: 1, Right: 2, Bottom: 4, Left: 8}

	for v := Variant(0); v < Count; v++ {
		for _, s := range Sides {
			want := int(v)&bits[s] != 0
			if got := v.HasOpening(s); got != want {
				t.Errorf("Variant(%d).HasOpening(%s) = %v, want %v", v, s, got, want)
			}
		}
	}
}

func TestFromOpeningsRoundTrip(t *testing.T) {
	for v := Variant(0); v < Count; v++ {
		got := FromOpenings(v.HasOpening(Top), v.HasOpening(Right), v.HasOpening(Bottom), v.HasOpening(Left))
		if got != v {
			t.Errorf("FromOpenings(openings of %d) = %d", v, got)
		}
	}

	if Isolated.OpeningCount() != 0 {
		t.Errorf("Isolated.OpeningCount() = %d, want 0", Isolated.OpeningCount())
	}
	if Cross.OpeningCount() != 4 {
		t.Errorf("Cross.OpeningCount() = %d, want 4", Cross.OpeningCount())
	}
}

func TestOpeningsInGrowthOrder(t *testing.T) {
	tests := []struct {
		variant  Variant
		expected []Side
	}{
		{Isolated, nil},
		{Cross, []Side{Top, Right, Bottom, Left}},
		{9, []Side{Top, Left}},
		{6, []Side{Right, Bottom}},
	}

	for _, tt := range tests {
		got := tt.variant.Openings()
		if !slices.Equal(got, tt.expected) {
			t.Errorf("Variant(%d).Openings() = %v, want %v", tt.variant, got, tt.expected)
		}
		if len(got) != tt.variant.OpeningCount() {
			t.Errorf("len(Openings()) = %d, OpeningCount() = %d", len(got), tt.variant.OpeningCount())
		}
	}
}

func TestSideOpposite(t *testing.T) {
	tests := []struct {
		side, want Side
	}{
		{Top, Bottom},
		{Right, Left},
		{Bottom, Top},
		{Left, Right},
	}

	for _, tt := range tests {
		if got := tt.side.Opposite(); got != tt.want {
			t.Errorf("%s.Opposite() = %s, want %s", tt.side, got, tt.want)
		}
	}
	if got := Side(7).String(); got != "unknown" {
		t.Errorf("Side(7).String() = %q, want %q", got, "unknown")
	}
}

func TestGlyphs(t *testing.T) {
	if Isolated.Glyph() != BlankGlyph {
		t.Errorf("Isolated.Glyph() = %q, want blank", Isolated.Glyph())
	}
	if Cross.Glyph() != '╬' {
		t.Errorf("Cross.Glyph() = %q, want '╬'", Cross.Glyph())
	}

	seen := make(map[rune]Variant)
	for v := Variant(0); v < Count; v++ {
		g := v.Glyph()
		if prev, ok := seen[g]; ok {
			t.Errorf("variants %d and %d share glyph %q", prev, v, g)
		}
		seen[g] = v
	}

	if Variant(16).Glyph() != '?' {
		t.Errorf("Variant(16).Glyph() = %q, want '?'", Variant(16).Glyph())
	}
}

func TestDefaultTablesCompleteness(t *testing.T) {
	tables := DefaultTables()

	for _, d := range Sides {
		candidates := tables.For(d)
		if len(candidates) == 0 {
			t.Fatalf("For(%s) is empty", d)
		}

		inTable := make(map[Variant]bool)
		for _, wt := range candidates {
			inTable[wt.Variant] = true
			if !wt.Variant.HasOpening(d.Opposite()) {
				t.Errorf("For(%s) contains %d without a %s opening", d, wt.Variant, d.Opposite())
			}
		}

		// Every variant with the back-connecting opening must be present.
		for v := Variant(0); v < Count; v++ {
			if v.HasOpening(d.Opposite()) != inTable[v] {
				t.Errorf("For(%s): variant %d membership = %v", d, v, inTable[v])
			}
		}
		if len(candidates) != 8 {
			t.Errorf("len(For(%s)) = %d, want 8", d, len(candidates))
		}
	}
}

func TestTablesForReturnsCopy(t *testing.T) {
	tables := DefaultTables()
	first := tables.For(Top)
	first[0].Weight = 999

	if tables.For(Top)[0].Weight == 999 {
		t.Error("For() exposed the shared table to mutation")
	}
}

func TestNewTablesRejectsDegenerateSets(t *testing.T) {
	tests := []struct {
		name string
		set  []WeightedTile
	}{
		{"empty", nil},
		{"no left opening", []WeightedTile{{Variant: 5, Weight: 1}, {Variant: 7, Weight: 1}}},
		{"zero weight", []WeightedTile{{Variant: 15, Weight: 0}}},
		{"negative weight", []WeightedTile{{Variant: 15, Weight: -3}}},
		{"out of range", []WeightedTile{{Variant: 15, Weight: 1}, {Variant: 16, Weight: 1}}},
		{"duplicate", []WeightedTile{{Variant: 15, Weight: 1}, {Variant: 15, Weight: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTables(tt.set)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("NewTables() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestNewTablesMinimalSet(t *testing.T) {
	tables, err := NewTables([]WeightedTile{{Variant: Cross, Weight: 1}})
	if err != nil {
		t.Fatalf("NewTables() failed: %v", err)
	}
	for _, d := range Sides {
		if got := tables.For(d); len(got) != 1 || got[0].Variant != Cross {
			t.Errorf("For(%s) = %v, want only Cross", d, got)
		}
	}
}

func TestMustNewTablesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewTables(nil) did not panic")
		}
	}()
	MustNewTables(nil)
}
