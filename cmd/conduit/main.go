// Package main is the entry point for conduit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/samdwyer/conduit/internal/config"
	"github.com/samdwyer/conduit/internal/game"
	"github.com/samdwyer/conduit/internal/logger"
	"github.com/samdwyer/conduit/internal/telemetry"
	"github.com/samdwyer/conduit/internal/tileset"
	"github.com/samdwyer/conduit/internal/ui"
	"github.com/samdwyer/conduit/internal/world"
)

func main() {
	os.Exit(run())
}

// run wires the configuration and returns the process exit code, so that
// deferred telemetry shutdown happens before the process exits.
func run() int {
	// Load .env file for local development
	// This makes HONEYCOMB_CONDUIT_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	configPath := flag.String("config", "conduit.yaml", "path to the YAML config file")
	size := flag.Int("size", world.DefaultSize, "grid edge length")
	var seed int64
	flag.Int64Var(&seed, "seed", 0, "random seed (0 picks a time-based seed)")
	flag.Int64Var(&seed, "s", 0, "shorthand for -seed")
	tilesetName := flag.String("tileset", "", "embedded tile set preset")
	tilesetFile := flag.String("tileset-file", "", "custom tile set file (.json or .yaml)")
	traversal := flag.String("traversal", "", "growth order: depth or breadth")
	minTiles := flag.Int("min-tiles", 0, "reject grids with fewer placed tiles (default scales with grid area)")
	attempts := flag.Int("attempts", 0, "maximum number of grids tried")
	printMode := flag.Bool("print", false, "print one grid and exit")
	colorMode := flag.String("color", "auto", "print colour: auto, always or never")
	check := flag.Bool("check", false, "validate the printed grid and report statistics")
	animate := flag.Bool("animate", false, "start the viewer with animation on")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
	}
	cfg.ApplyEnv()

	// Flags given on the command line win over the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Grid.Size = *size
		case "seed", "s":
			cfg.Grid.Seed = seed
		case "tileset":
			cfg.Grid.Tileset = *tilesetName
		case "tileset-file":
			cfg.Grid.TilesetFile = *tilesetFile
		case "traversal":
			cfg.Grid.Traversal = *traversal
		case "min-tiles":
			cfg.Generation.MinTiles = minTiles
		case "attempts":
			cfg.Generation.MaxAttempts = *attempts
		}
	})

	if !*printMode && !*check {
		// The viewer owns the terminal.
		cfg.Logging.ConsoleEnabled = false
	}
	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv()

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logger.Warning("telemetry setup failed, running without observability", "error", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.Error("telemetry shutdown failed", "error", err)
				}
			}()
		}
	}

	def, err := cfg.Tileset()
	if err != nil {
		log.Printf("Failed to load tile set: %v", err)
		return 1
	}
	tables, err := def.Tables()
	if err != nil {
		log.Printf("Invalid tile set %s: %v", def.ID, err)
		return 1
	}
	order, _ := world.ParseTraversal(cfg.Grid.Traversal)

	session, err := game.NewSession(game.Options{
		Size:        cfg.Grid.Size,
		Seed:        cfg.Grid.Seed,
		Traversal:   order,
		Tables:      tables,
		MinTiles:    cfg.MinTiles(),
		MaxAttempts: cfg.Generation.MaxAttempts,
	})
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return 1
	}
	logger.Info("session ready", "tileset", def.ID, "seed", session.Seed(), "size", cfg.Grid.Size, "min_tiles", cfg.MinTiles())

	if *printMode || *check {
		return runPrint(ctx, session, def.Colors(), *colorMode, *check)
	}

	g, err := game.New(session, def.Colors(), game.ViewerOptions{
		Seeded:        cfg.Grid.Seed != 0,
		Animate:       *animate,
		StepsPerFrame: cfg.Viewer.StepsPerFrame,
		Tick:          time.Duration(cfg.Viewer.StepMillis) * time.Millisecond,
	})
	if err != nil {
		log.Printf("Failed to initialize viewer: %v", err)
		return 1
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		logger.Error("viewer error", "error", err)
		fmt.Fprintf(os.Stderr, "conduit: %v\n", err)
		return 1
	}
	return 0
}

// runPrint generates one grid, prints it and returns the process exit code.
func runPrint(ctx context.Context, session *game.Session, palette tileset.Palette, colorMode string, check bool) int {
	result, err := session.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conduit: %v\n", err)
		return 1
	}

	printer := ui.NewPrinter(os.Stdout, palette)
	switch colorMode {
	case "always":
		printer.SetColor(true)
	case "never":
		printer.SetColor(false)
	}
	if err := printer.Print(result.Grid, result.Seed); err != nil {
		fmt.Fprintf(os.Stderr, "conduit: %v\n", err)
		return 1
	}

	if !check {
		return 0
	}
	stats := result.Stats
	fmt.Printf("tiles %d, dead ends %d, attempts %d, by openings %v\n",
		stats.Placed, stats.DeadEnds, result.Attempts, stats.ByOpenings)
	if err := world.Validate(result.Grid); err != nil {
		fmt.Fprintf(os.Stderr, "conduit: invalid grid: %v\n", err)
		return 1
	}
	fmt.Println("grid is consistent")
	return 0
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	}

	// The .env file may have an unexpanded variable reference that doesn't
	// work, so the header is constructed here
	apiKey := os.Getenv("HONEYCOMB_CONDUIT_API_KEY")
	dataset := os.Getenv("HONEYCOMB_CONDUIT_DATASET")
	if dataset == "" {
		dataset = "conduit"
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
