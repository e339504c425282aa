package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/conduit/internal/logger"
	"github.com/samdwyer/conduit/internal/telemetry"
	"github.com/samdwyer/conduit/internal/tile"
	"github.com/samdwyer/conduit/internal/world"
)

// ErrBelowMinimum is returned when a legal grid has fewer tiles than required.
var ErrBelowMinimum = errors.New("grid below minimum tile count")

// Options configures a generation session.
type Options struct {
	Size      int
	Seed      int64 // 0 picks a time-based seed
	Traversal world.Traversal
	Tables    *tile.Tables // nil uses tile.DefaultTables

	// MinTiles rejects grids with fewer placed tiles. 0 accepts any grid.
	MinTiles int
	// MaxAttempts bounds the number of grids tried by Generate.
	MaxAttempts int
}

// Result is a generated grid with the details needed to reproduce it.
type Result struct {
	Grid     *world.Grid
	Seed     int64
	Attempts int
	RunID    uuid.UUID
	Stats    world.Stats
}

// Session generates grids from one seeded random stream. Every grid it
// produces, retries included, is reproducible from the seed.
type Session struct {
	opts Options
	seed int64
	rng  *rand.Rand
	gen  *world.Generator
}

// NewSession validates opts and creates a session.
func NewSession(opts Options) (*Session, error) {
	if opts.Size < world.MinSize || opts.Size > world.MaxSize {
		return nil, fmt.Errorf("%w: grid size %d outside %d..%d", tile.ErrInvalidConfiguration, opts.Size, world.MinSize, world.MaxSize)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MinTiles < 0 || opts.MinTiles > opts.Size*opts.Size {
		return nil, fmt.Errorf("%w: min tiles %d outside 0..%d", tile.ErrInvalidConfiguration, opts.MinTiles, opts.Size*opts.Size)
	}

	s := &Session{opts: opts}
	s.Reseed(opts.Seed)
	return s, nil
}

// Reseed restarts the random stream. A seed of 0 picks a time-based seed.
func (s *Session) Reseed(seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
	s.gen = world.NewGenerator(s.opts.Tables, s.rng)
	s.gen.SetTraversal(s.opts.Traversal)
}

// Seed returns the seed of the current random stream.
func (s *Session) Seed() int64 {
	return s.seed
}

// Options returns the session options.
func (s *Session) Options() Options {
	return s.opts
}

// Start begins a step-wise generation on the session's random stream.
func (s *Session) Start() (*world.Run, error) {
	return s.gen.Start(s.opts.Size)
}

// Accept checks a finished grid against the minimum tile count.
func (s *Session) Accept(grid *world.Grid) error {
	if placed := grid.Count(); placed < s.opts.MinTiles {
		return fmt.Errorf("%w: placed %d, need %d", ErrBelowMinimum, placed, s.opts.MinTiles)
	}
	return nil
}

// Generate produces a grid, retrying on exhausted candidates or a grid that is
// too small, up to MaxAttempts times.
func (s *Session) Generate(ctx context.Context) (*Result, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.generate")
	defer span.End()

	runID := uuid.New()
	attempts := 0
	span.SetAttributes(
		attribute.String("session.run_id", runID.String()),
		attribute.Int64("session.seed", s.seed),
		attribute.Int("session.max_attempts", s.opts.MaxAttempts),
	)

	operation := func() (*world.Grid, error) {
		attempts++
		grid, err := s.gen.Generate(ctx, s.opts.Size)
		if err != nil {
			if errors.Is(err, tile.ErrInvalidConfiguration) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if err := s.Accept(grid); err != nil {
			return nil, err
		}
		return grid, nil
	}

	grid, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(uint(s.opts.MaxAttempts)),
		backoff.WithNotify(func(err error, _ time.Duration) {
			logger.Debug("retrying generation", "run_id", runID.String(), "attempt", attempts, "error", err)
		}),
	)
	span.SetAttributes(attribute.Int("session.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		logger.Error("generation failed", "run_id", runID.String(), "seed", s.seed, "attempts", attempts, "error", err)
		return nil, fmt.Errorf("generation failed after %d attempts: %w", attempts, err)
	}

	result := &Result{
		Grid:     grid,
		Seed:     s.seed,
		Attempts: attempts,
		RunID:    runID,
		Stats:    grid.Stats(),
	}
	span.SetAttributes(attribute.Int("session.placed", result.Stats.Placed))
	logger.Info("grid generated",
		"run_id", runID.String(),
		"seed", s.seed,
		"size", s.opts.Size,
		"traversal", s.opts.Traversal.String(),
		"attempts", attempts,
		"placed", result.Stats.Placed,
		"dead_ends", result.Stats.DeadEnds,
	)
	return result, nil
}
