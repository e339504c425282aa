package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/conduit/internal/logger"
	"github.com/samdwyer/conduit/internal/telemetry"
	"github.com/samdwyer/conduit/internal/tileset"
	"github.com/samdwyer/conduit/internal/ui"
	"github.com/samdwyer/conduit/internal/world"
)

// ViewerOptions configures the interactive viewer.
type ViewerOptions struct {
	// Seeded starts in seeded mode, where every regeneration replays the
	// session's seed.
	Seeded bool
	// Animate grows each grid frame by frame instead of all at once.
	Animate       bool
	StepsPerFrame int
	Tick          time.Duration
}

// Game is the interactive grid viewer.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	session  *Session
	opts     ViewerOptions

	seed     int64 // replayed in seeded mode
	run      *world.Run
	grid     *world.Grid
	state    State
	attempts int
	message  string
	running  bool
}

// New creates a viewer on the terminal.
func New(session *Session, palette tileset.Palette, opts ViewerOptions) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return newGame(screen, session, palette, opts), nil
}

func newGame(screen *ui.Screen, session *Session, palette tileset.Palette, opts ViewerOptions) *Game {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen, palette),
		session:  session,
		opts:     opts,
		seed:     session.Seed(),
		running:  true,
	}
}

// Run executes the main viewer loop until the user quits. The caller
// releases the terminal with Close.
func (g *Game) Run(ctx context.Context) error {
	g.regenerate(ctx)

	stop := g.startTicker()
	for g.running {
		g.render()
		g.handleInput(ctx)
	}
	stop()
	return nil
}

// startTicker posts an interrupt event every tick so the loop can advance
// animated runs. The returned function stops it.
func (g *Game) startTicker() func() {
	ticker := time.NewTicker(g.opts.Tick)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				g.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case *tcell.EventInterrupt:
		g.advance(ctx)
	case nil:
		// Screen finalized
		g.running = false
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
	case tcell.KeyRune:
		g.handleRune(ctx, ev.Rune())
	}
}

func (g *Game) handleRune(ctx context.Context, r rune) {
	switch r {
	case 'q', 'Q':
		g.running = false
	case 'r', 'R':
		g.regenerate(ctx)
	case 's', 'S':
		g.toggleSeeded(ctx)
	case ' ':
		g.toggleAnimation(ctx)
	}
}

// regenerate replaces the current grid with a new one. In seeded mode the
// random stream restarts from the seed, so the same grid comes back.
func (g *Game) regenerate(ctx context.Context) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "viewer.regenerate")
	defer span.End()

	if g.opts.Seeded {
		g.session.Reseed(g.seed)
	}
	g.attempts = 0
	g.message = ""

	if g.opts.Animate {
		g.startRun()
	} else {
		result, err := g.session.Generate(ctx)
		if err != nil {
			g.fail(err)
		} else {
			g.grid = result.Grid
			g.attempts = result.Attempts
			g.run = nil
			g.state = StateComplete
		}
	}

	span.SetAttributes(
		attribute.Int64("viewer.seed", g.session.Seed()),
		attribute.Bool("viewer.seeded", g.opts.Seeded),
		attribute.Bool("viewer.animate", g.opts.Animate),
		attribute.String("viewer.state", g.state.String()),
	)
}

// startRun begins a new animated attempt.
func (g *Game) startRun() {
	run, err := g.session.Start()
	if err != nil {
		g.fail(err)
		return
	}
	g.attempts++
	g.run = run
	g.grid = run.Grid()
	g.state = StateGrowing
}

// advance expands the animated run by one frame.
func (g *Game) advance(ctx context.Context) {
	if !g.opts.Animate || g.state != StateGrowing {
		return
	}
	for i := 0; i < g.opts.StepsPerFrame && !g.run.Done(); i++ {
		if err := g.run.Step(); err != nil {
			break
		}
	}
	if g.run.Done() {
		g.finish(ctx)
	}
}

// finish settles a completed run: it is either accepted, retried, or the
// viewer gives up after the session's attempt limit.
func (g *Game) finish(ctx context.Context) {
	err := g.run.Err()
	if err == nil {
		err = g.session.Accept(g.grid)
	}
	if err == nil {
		g.state = StateComplete
		logger.Info("grid generated",
			"seed", g.session.Seed(),
			"attempts", g.attempts,
			"placed", g.grid.Count(),
		)
		return
	}

	if g.attempts >= g.session.Options().MaxAttempts {
		g.fail(fmt.Errorf("generation failed after %d attempts: %w", g.attempts, err))
		return
	}
	logger.Debug("retrying generation", "attempt", g.attempts, "error", err)
	g.startRun()
}

// complete runs the animated generation to the end without waiting for ticks.
func (g *Game) complete(ctx context.Context) {
	for g.state == StateGrowing {
		for !g.run.Done() {
			if err := g.run.Step(); err != nil {
				break
			}
		}
		g.finish(ctx)
	}
}

func (g *Game) fail(err error) {
	g.state = StateFailed
	g.message = err.Error()
	if errors.Is(err, ErrBelowMinimum) {
		g.message = "no grid reached the minimum tile count, press r to retry"
	}
	logger.Error("viewer generation failed", "seed", g.session.Seed(), "error", err)
}

func (g *Game) toggleSeeded(ctx context.Context) {
	g.opts.Seeded = !g.opts.Seeded
	if !g.opts.Seeded {
		g.session.Reseed(0)
	}
	g.regenerate(ctx)
}

func (g *Game) toggleAnimation(ctx context.Context) {
	g.opts.Animate = !g.opts.Animate
	if !g.opts.Animate {
		g.complete(ctx)
	}
}

// render draws the current grid and status.
func (g *Game) render() {
	if g.grid == nil {
		g.screen.Clear()
		g.renderer.RenderMessage(g.message, 0)
		g.screen.Show()
		return
	}
	g.renderer.Render(g.grid, ui.Status{
		Seed:      g.session.Seed(),
		Seeded:    g.opts.Seeded,
		Animate:   g.opts.Animate,
		Traversal: g.session.Options().Traversal.String(),
		State:     g.state.String(),
		Attempts:  g.attempts,
		Placed:    g.grid.Count(),
		Message:   g.message,
	})
}

// Close cleans up viewer resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
