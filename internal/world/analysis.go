package world

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/conduit/internal/tile"
)

var (
	ErrBoundaryOpening   = errors.New("opening faces grid edge")
	ErrMismatchedOpening = errors.New("opening not matched by neighbour")
	ErrUnreachable       = errors.New("tile not reachable from seed")
)

// Stats summarises a generated grid.
type Stats struct {
	Placed     int
	DeadEnds   int    // tiles with a single opening
	ByOpenings [5]int // placed tiles by number of openings
}

// Stats computes placement statistics for the grid.
func (g *Grid) Stats() Stats {
	var s Stats
	for _, c := range g.cells {
		if !c.Placed {
			continue
		}
		s.Placed++
		n := c.Variant.OpeningCount()
		s.ByOpenings[n]++
		if n == 1 {
			s.DeadEnds++
		}
	}
	return s
}

// Reachable returns the set of placed cells that can be reached from start by
// crossing only matched openings.
func Reachable(g *Grid, start int) *mapset.Set[int] {
	visited := mapset.New[int]()
	if !g.InBounds(start) || !g.Placed(start) {
		return &visited
	}

	queue := []int{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		v := g.Cell(current).Variant
		for _, s := range v.Openings() {
			n, ok := g.Neighbor(current, s)
			if !ok || !g.Placed(n) || visited.Has(n) {
				continue
			}
			if g.Cell(n).Variant.HasOpening(s.Opposite()) {
				visited.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return &visited
}

// Validate checks that no opening faces the grid edge, that every opening
// between adjacent placed tiles is matched on both sides, and that every placed
// tile is reachable from the centre. All violations are joined into one error.
func Validate(g *Grid) error {
	var errs []error

	for i, c := range g.cells {
		if !c.Placed {
			continue
		}
		row, col := g.Position(i)
		for _, s := range tile.Sides {
			n, ok := g.Neighbor(i, s)
			if !ok {
				if c.Variant.HasOpening(s) {
					errs = append(errs, fmt.Errorf("%w: (%d,%d) %s", ErrBoundaryOpening, row, col, s))
				}
				continue
			}
			if !g.Placed(n) {
				if c.Variant.HasOpening(s) {
					errs = append(errs, fmt.Errorf("%w: (%d,%d) %s leads to an empty cell", ErrMismatchedOpening, row, col, s))
				}
				continue
			}
			// Each placed pair is compared once, from its top or left member.
			if s != tile.Right && s != tile.Bottom {
				continue
			}
			if c.Variant.HasOpening(s) != g.Cell(n).Variant.HasOpening(s.Opposite()) {
				errs = append(errs, fmt.Errorf("%w: (%d,%d) %s", ErrMismatchedOpening, row, col, s))
			}
		}
	}

	reachable := Reachable(g, g.Center())
	for i, c := range g.cells {
		if c.Placed && !reachable.Has(i) {
			row, col := g.Position(i)
			errs = append(errs, fmt.Errorf("%w: (%d,%d)", ErrUnreachable, row, col))
		}
	}

	return errors.Join(errs...)
}
