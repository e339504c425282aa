package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/conduit/internal/telemetry"
	"github.com/samdwyer/conduit/internal/tile"
)

// ErrExhaustedCandidates is returned when no tile satisfies the neighbours of a
// cell that must be filled. The generator does not backtrack.
var ErrExhaustedCandidates = errors.New("no candidate tile fits cell")

// ExhaustedError reports the cell at which generation ran out of candidates.
type ExhaustedError struct {
	Index    int
	Row, Col int
	From     tile.Side // direction the cell was grown in
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v at (%d,%d) grown %s", ErrExhaustedCandidates, e.Row, e.Col, e.From)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhaustedCandidates
}

// Rand supplies uniform integers in [0, n). *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Traversal selects the order in which newly placed cells are expanded.
type Traversal int

const (
	// TraversalDepth completes each placed cell's subtree before its next sibling.
	TraversalDepth Traversal = iota
	// TraversalBreadth expands cells in the order they were placed.
	TraversalBreadth
)

// String returns the traversal name.
func (t Traversal) String() string {
	switch t {
	case TraversalDepth:
		return "depth"
	case TraversalBreadth:
		return "breadth"
	default:
		return "unknown"
	}
}

// ParseTraversal converts a traversal name to a Traversal.
func ParseTraversal(name string) (Traversal, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "depth", "dfs":
		return TraversalDepth, nil
	case "breadth", "bfs":
		return TraversalBreadth, nil
	default:
		return TraversalDepth, fmt.Errorf("%w: unknown traversal %q", tile.ErrInvalidConfiguration, name)
	}
}

// Generator grows a connected tile network outward from the grid centre.
type Generator struct {
	tables    *tile.Tables
	rng       Rand
	traversal Traversal
}

// NewGenerator creates a generator. A nil tables uses tile.DefaultTables and a
// nil rng uses a time-seeded source.
func NewGenerator(tables *tile.Tables, rng Rand) *Generator {
	if tables == nil {
		tables = tile.DefaultTables()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		tables: tables,
		rng:    rng,
	}
}

// SetTraversal sets the expansion order.
func (g *Generator) SetTraversal(t Traversal) {
	g.traversal = t
}

// Traversal returns the expansion order.
func (g *Generator) Traversal() Traversal {
	return g.traversal
}

// Create builds and fully generates a grid from the default tables and a
// source seeded with seed. The same size and seed always give the same grid.
func Create(ctx context.Context, size int, seed int64) (*Grid, error) {
	return NewGenerator(tile.DefaultTables(), rand.New(rand.NewSource(seed))).Generate(ctx, size)
}

// Generate creates a grid of the given size, places the seed tile in the centre
// and grows the network until no open side leads to an empty cell.
func (g *Generator) Generate(ctx context.Context, size int) (*Grid, error) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "grid.generate")
	defer span.End()

	startTime := time.Now()
	span.SetAttributes(
		attribute.Int("grid.size", size),
		attribute.String("grid.traversal", g.traversal.String()),
	)

	run, err := g.Start(size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid configuration")
		return nil, err
	}

	for !run.Done() {
		if err := run.Step(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
			span.SetAttributes(attribute.Int("grid.placed", run.Grid().Count()))
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.Int("grid.placed", run.Grid().Count()),
		attribute.Int("grid.steps", run.Steps()),
		attribute.Int64("grid.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return run.Grid(), nil
}

// Start creates a grid with the seed tile placed and returns a Run that expands
// it one cell per Step.
func (g *Generator) Start(size int) (*Run, error) {
	grid, err := NewGrid(size)
	if err != nil {
		return nil, err
	}

	run := &Run{
		gen:     g,
		grid:    grid,
		pending: newWorklist(g.traversal),
	}
	center := grid.Center()
	grid.Set(center, tile.Cross)
	run.pending.push([]int{center})
	return run, nil
}

// Run is a generation in progress.
type Run struct {
	gen     *Generator
	grid    *Grid
	pending worklist
	steps   int
	err     error
}

// Grid returns the grid being generated.
func (r *Run) Grid() *Grid {
	return r.grid
}

// Done returns true once no cell is waiting to be expanded, or after a failure.
func (r *Run) Done() bool {
	return r.err != nil || r.pending.len() == 0
}

// Err returns the error that stopped the run, if any.
func (r *Run) Err() error {
	return r.err
}

// Steps returns the number of cells expanded so far.
func (r *Run) Steps() int {
	return r.steps
}

// Step expands the next pending cell: every open side leading to an empty cell
// gets a new tile, and the new cells are queued for expansion.
func (r *Run) Step() error {
	if r.Done() {
		return r.err
	}

	from := r.pending.pop()
	placed, err := r.gen.expand(r.grid, from)
	r.steps++
	if err != nil {
		r.err = err
		return err
	}
	r.pending.push(placed)
	return nil
}

// expand fills the empty neighbours reached through the openings of the tile at
// from, in side order, and returns their indexes.
func (g *Generator) expand(grid *Grid, from int) ([]int, error) {
	v := grid.Cell(from).Variant

	var placed []int
	for _, d := range v.Openings() {
		target, ok := grid.Neighbor(from, d)
		if !ok || grid.Placed(target) {
			continue
		}

		candidates := constrain(grid, target, g.tables.For(d))
		choice, ok := pick(candidates, g.rng)
		if !ok {
			row, col := grid.Position(target)
			return placed, &ExhaustedError{Index: target, Row: row, Col: col, From: d}
		}
		grid.Set(target, choice)
		placed = append(placed, target)
	}
	return placed, nil
}

// constrain narrows candidates for the cell at target against every side: an
// edge or a placed neighbour without a facing opening forbids an opening there,
// a placed neighbour with one requires it, an empty neighbour leaves it free.
func constrain(grid *Grid, target int, candidates []tile.WeightedTile) []tile.WeightedTile {
	for _, s := range tile.Sides {
		n, ok := grid.Neighbor(target, s)
		switch {
		case !ok:
			candidates = narrow(candidates, s, false)
		case grid.Placed(n):
			candidates = narrow(candidates, s, grid.Cell(n).Variant.HasOpening(s.Opposite()))
		}
	}
	return candidates
}

// narrow keeps the candidates whose opening on side equals open.
func narrow(candidates []tile.WeightedTile, side tile.Side, open bool) []tile.WeightedTile {
	return slices.DeleteFunc(candidates, func(wt tile.WeightedTile) bool {
		return wt.Variant.HasOpening(side) != open
	})
}

// pick selects a candidate with probability proportional to its weight.
func pick(candidates []tile.WeightedTile, rng Rand) (tile.Variant, bool) {
	total := 0
	for _, wt := range candidates {
		total += wt.Weight
	}
	if total <= 0 {
		return 0, false
	}

	roll := rng.Intn(total)
	cumulative := 0
	for _, wt := range candidates {
		cumulative += wt.Weight
		if roll < cumulative {
			return wt.Variant, true
		}
	}

	// Unreachable for a roll in [0, total).
	return candidates[len(candidates)-1].Variant, true
}
