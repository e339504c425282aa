package world

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/samdwyer/conduit/internal/tile"
)

// edgeRand always rolls either the lowest or the highest value, which selects the
// first or the last candidate under cumulative weighting.
type edgeRand struct {
	high  bool
	calls int
}

func (r *edgeRand) Intn(n int) int {
	r.calls++
	if r.high {
		return n - 1
	}
	return 0
}

// seqRand returns a fixed sequence of rolls.
type seqRand struct {
	rolls []int
}

func (r *seqRand) Intn(n int) int {
	v := r.rolls[0]
	r.rolls = r.rolls[1:]
	return v % n
}

func rowsEqual(t *testing.T, g *Grid, want []string) {
	t.Helper()
	got := g.Rows()
	if len(got) != len(want) {
		t.Fatalf("Rows() returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateGoldenHighRolls(t *testing.T) {
	for _, traversal := range []Traversal{TraversalDepth, TraversalBreadth} {
		t.Run(traversal.String(), func(t *testing.T) {
			gen := NewGenerator(nil, &edgeRand{high: true})
			gen.SetTraversal(traversal)

			grid, err := gen.Generate(context.Background(), 3)
			if err != nil {
				t.Fatalf("Generate() failed: %v", err)
			}
			rowsEqual(t, grid, []string{
				"╔╦╗",
				"╠╬╣",
				"╚╩╝",
			})
		})
	}
}

func TestGenerateGoldenLowRolls(t *testing.T) {
	rng := &edgeRand{}
	grid, err := NewGenerator(nil, rng).Generate(context.Background(), 3)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	rowsEqual(t, grid, []string{
		" ╥ ",
		"╞╬╡",
		" ╨ ",
	})
	if rng.calls != 4 {
		t.Errorf("random source called %d times, want 4", rng.calls)
	}
	if grid.Count() != 5 {
		t.Errorf("Count() = %d, want 5", grid.Count())
	}
}

func TestCreateReproducibility(t *testing.T) {
	ctx := context.Background()

	for _, size := range []int{3, DefaultSize, 20} {
		g1, err := Create(ctx, size, 42)
		if err != nil {
			t.Fatalf("Create(%d, 42) failed: %v", size, err)
		}
		g2, err := Create(ctx, size, 42)
		if err != nil {
			t.Fatalf("Create(%d, 42) failed: %v", size, err)
		}
		if !g1.Equal(g2) {
			t.Errorf("Create(%d, 42) produced different grids:\n%v\n%v", size, g1.Rows(), g2.Rows())
		}
	}
}

func TestCreateGoldenSeed42(t *testing.T) {
	grid, err := Create(context.Background(), 3, 42)
	if err != nil {
		t.Fatalf("Create(3, 42) failed: %v", err)
	}
	rowsEqual(t, grid, []string{
		"╥╥╥",
		"╚╬╝",
		" ╚╡",
	})
}

func TestGenerateGoldenSeed42Traversals(t *testing.T) {
	tests := []struct {
		traversal Traversal
		want      []string
	}{
		{TraversalDepth, []string{
			"╞═╗  ",
			"  ║  ",
			"╥╔╬═╡",
			"╚╬╣  ",
			"╞╝╨  ",
		}},
		{TraversalBreadth, []string{
			" ╞╗  ",
			"  ║  ",
			"╥╔╬═╗",
			"╚╩╣╞╝",
			"  ╚╡ ",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.traversal.String(), func(t *testing.T) {
			gen := NewGenerator(nil, rand.New(rand.NewSource(42)))
			gen.SetTraversal(tt.traversal)

			grid, err := gen.Generate(context.Background(), 5)
			if err != nil {
				t.Fatalf("Generate() failed: %v", err)
			}
			rowsEqual(t, grid, tt.want)
			if grid.Count() != 15 {
				t.Errorf("Count() = %d, want 15", grid.Count())
			}
		})
	}
}

func TestCreateDifferentSeeds(t *testing.T) {
	ctx := context.Background()

	base, err := Create(ctx, DefaultSize, 12345)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	identical := true
	for seed := int64(1); seed <= 5; seed++ {
		g, err := Create(ctx, DefaultSize, seed)
		if err != nil {
			t.Fatalf("Create(seed %d) failed: %v", seed, err)
		}
		if !g.Equal(base) {
			identical = false
		}
	}
	if identical {
		t.Error("grids from different seeds should not all be identical")
	}
}

func TestGenerateInvariants(t *testing.T) {
	ctx := context.Background()

	for _, traversal := range []Traversal{TraversalDepth, TraversalBreadth} {
		for _, size := range []int{3, 4, 5, 9, DefaultSize, 20} {
			for seed := int64(0); seed < 40; seed++ {
				gen := NewGenerator(nil, rand.New(rand.NewSource(seed)))
				gen.SetTraversal(traversal)

				grid, err := gen.Generate(ctx, size)
				if err != nil {
					t.Fatalf("%s size %d seed %d: Generate() failed: %v", traversal, size, seed, err)
				}
				if err := Validate(grid); err != nil {
					t.Errorf("%s size %d seed %d: Validate() = %v", traversal, size, seed, err)
				}

				center := grid.Cell(grid.Center())
				if !center.Placed || center.Variant != tile.Cross {
					t.Errorf("%s size %d seed %d: centre = %+v, want Cross", traversal, size, seed, center)
				}
				if got := Reachable(grid, grid.Center()).Size(); got != grid.Count() {
					t.Errorf("%s size %d seed %d: %d reachable of %d placed", traversal, size, seed, got, grid.Count())
				}
			}
		}
	}
}

func TestRunSingleAssignment(t *testing.T) {
	gen := NewGenerator(nil, rand.New(rand.NewSource(7)))
	run, err := gen.Start(DefaultSize)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	grid := run.Grid()
	snapshot := make([]Cell, grid.Len())
	for i := range snapshot {
		snapshot[i] = grid.Cell(i)
	}

	for !run.Done() {
		if err := run.Step(); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
		for i := range snapshot {
			now := grid.Cell(i)
			if snapshot[i].Placed && now != snapshot[i] {
				t.Fatalf("cell %d changed after assignment: %+v -> %+v", i, snapshot[i], now)
			}
			snapshot[i] = now
		}
	}

	if run.Steps() != grid.Count() {
		t.Errorf("Steps() = %d, want one per placed cell (%d)", run.Steps(), grid.Count())
	}
	if err := run.Step(); err != nil {
		t.Errorf("Step() after completion = %v, want nil", err)
	}
}

// recursiveGenerate grows a grid with a plain recursive walk for comparison with
// the depth-first work list.
func recursiveGenerate(t *testing.T, gen *Generator, size int) *Grid {
	t.Helper()
	grid, err := NewGrid(size)
	if err != nil {
		t.Fatalf("NewGrid() failed: %v", err)
	}
	grid.Set(grid.Center(), tile.Cross)

	var visit func(int)
	visit = func(from int) {
		placed, err := gen.expand(grid, from)
		if err != nil {
			t.Fatalf("expand(%d) failed: %v", from, err)
		}
		for _, i := range placed {
			visit(i)
		}
	}
	visit(grid.Center())
	return grid
}

func TestDepthTraversalMatchesRecursion(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		want := recursiveGenerate(t, NewGenerator(nil, rand.New(rand.NewSource(seed))), DefaultSize)

		got, err := NewGenerator(nil, rand.New(rand.NewSource(seed))).Generate(context.Background(), DefaultSize)
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("seed %d: work list order differs from recursion", seed)
		}
	}
}

func TestCreateRejectsDegenerateSizes(t *testing.T) {
	for _, size := range []int{-4, 0, 1, 2} {
		grid, err := Create(context.Background(), size, 42)
		if !errors.Is(err, tile.ErrInvalidConfiguration) {
			t.Errorf("Create(%d) error = %v, want ErrInvalidConfiguration", size, err)
		}
		if grid != nil {
			t.Errorf("Create(%d) returned a grid", size)
		}
	}
}

func TestGenerateExhaustedCandidates(t *testing.T) {
	// Straights and the cross: every direction has a candidate, but nothing can
	// sit against the top edge below an opening.
	tables, err := tile.NewTables([]tile.WeightedTile{
		{Variant: tile.Cross, Weight: 1},
		{Variant: 5, Weight: 1},
		{Variant: 10, Weight: 1},
	})
	if err != nil {
		t.Fatalf("NewTables() failed: %v", err)
	}

	rng := &edgeRand{}
	grid, err := NewGenerator(tables, rng).Generate(context.Background(), 3)
	if !errors.Is(err, ErrExhaustedCandidates) {
		t.Fatalf("Generate() error = %v, want ErrExhaustedCandidates", err)
	}
	if grid != nil {
		t.Error("Generate() returned a grid on failure")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error %v is not an *ExhaustedError", err)
	}
	if exhausted.Index != 1 || exhausted.Row != 0 || exhausted.Col != 1 || exhausted.From != tile.Top {
		t.Errorf("ExhaustedError = %+v, want index 1 at (0,1) grown top", exhausted)
	}
	if rng.calls != 0 {
		t.Errorf("random source called %d times on an empty candidate set", rng.calls)
	}
}

func TestExhaustionKeepsEarlierSiblings(t *testing.T) {
	// The top cell takes the bottom-only stub; nothing can then close the
	// right cell against the edge.
	tables := tile.MustNewTables([]tile.WeightedTile{
		{Variant: tile.Cross, Weight: 1},
		{Variant: 4, Weight: 1},
		{Variant: 10, Weight: 1},
	})
	rng := &edgeRand{}
	run, err := NewGenerator(tables, rng).Start(3)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	err = run.Step()
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Step() error = %v, want *ExhaustedError", err)
	}
	if exhausted.Index != 5 || exhausted.From != tile.Right {
		t.Errorf("ExhaustedError = %+v, want index 5 grown right", exhausted)
	}

	grid := run.Grid()
	if !grid.Placed(1) || grid.Cell(1).Variant != 4 {
		t.Errorf("Cell(1) = %+v, want placed variant 4", grid.Cell(1))
	}
	if grid.Placed(5) {
		t.Error("the exhausted cell should stay empty")
	}
	if got := grid.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if rng.calls != 1 {
		t.Errorf("random source called %d times, want 1", rng.calls)
	}
}

func TestRunStopsAfterFailure(t *testing.T) {
	tables := tile.MustNewTables([]tile.WeightedTile{{Variant: tile.Cross, Weight: 1}})
	run, err := NewGenerator(tables, &edgeRand{}).Start(5)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var stepErr error
	for !run.Done() {
		stepErr = run.Step()
	}
	if !errors.Is(stepErr, ErrExhaustedCandidates) {
		t.Fatalf("Step() error = %v, want ErrExhaustedCandidates", stepErr)
	}
	if !errors.Is(run.Err(), ErrExhaustedCandidates) {
		t.Errorf("Err() = %v, want ErrExhaustedCandidates", run.Err())
	}
}

func TestNarrow(t *testing.T) {
	all := tile.DefaultWeights()

	open := narrow(append([]tile.WeightedTile(nil), all...), tile.Left, true)
	for _, wt := range open {
		if !wt.Variant.HasOpening(tile.Left) {
			t.Errorf("narrow(left, open) kept %d", wt.Variant)
		}
	}
	closed := narrow(append([]tile.WeightedTile(nil), all...), tile.Left, false)
	for _, wt := range closed {
		if wt.Variant.HasOpening(tile.Left) {
			t.Errorf("narrow(left, closed) kept %d", wt.Variant)
		}
	}
	if len(open)+len(closed) != len(all) {
		t.Errorf("narrow split %d tiles into %d + %d", len(all), len(open), len(closed))
	}
}

func TestPickWeighted(t *testing.T) {
	candidates := []tile.WeightedTile{
		{Variant: 1, Weight: 1},
		{Variant: 2, Weight: 2},
		{Variant: 4, Weight: 3},
	}

	tests := []struct {
		roll int
		want tile.Variant
	}{
		{0, 1},
		{1, 2},
		{2, 2},
		{3, 4},
		{5, 4},
	}

	for _, tt := range tests {
		got, ok := pick(candidates, &seqRand{rolls: []int{tt.roll}})
		if !ok || got != tt.want {
			t.Errorf("pick(roll %d) = %d, %v, want %d", tt.roll, got, ok, tt.want)
		}
	}

	if _, ok := pick(nil, &seqRand{}); ok {
		t.Error("pick(nil) should report no candidate")
	}
}

func TestPickDistribution(t *testing.T) {
	candidates := []tile.WeightedTile{
		{Variant: 1, Weight: 1},
		{Variant: 2, Weight: 3},
	}
	rng := rand.New(rand.NewSource(99))

	counts := make(map[tile.Variant]int)
	for i := 0; i < 8000; i++ {
		v, _ := pick(candidates, rng)
		counts[v]++
	}
	// Expect roughly 2000 / 6000.
	if counts[1] < 1700 || counts[1] > 2300 {
		t.Errorf("variant 1 picked %d times, want about 2000", counts[1])
	}
}

func TestParseTraversal(t *testing.T) {
	tests := []struct {
		input string
		want  Traversal
		valid bool
	}{
		{"", TraversalDepth, true},
		{"depth", TraversalDepth, true},
		{"DFS", TraversalDepth, true},
		{"breadth", TraversalBreadth, true},
		{" bfs ", TraversalBreadth, true},
		{"spiral", TraversalDepth, false},
	}

	for _, tt := range tests {
		got, err := ParseTraversal(tt.input)
		if tt.valid && (err != nil || got != tt.want) {
			t.Errorf("ParseTraversal(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
		if !tt.valid && !errors.Is(err, tile.ErrInvalidConfiguration) {
			t.Errorf("ParseTraversal(%q) error = %v, want ErrInvalidConfiguration", tt.input, err)
		}
	}
	if Traversal(9).String() != "unknown" {
		t.Errorf("Traversal(9).String() = %q", Traversal(9).String())
	}
}
