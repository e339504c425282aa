// Package config loads application settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/conduit/internal/logger"
	"github.com/samdwyer/conduit/internal/tile"
	"github.com/samdwyer/conduit/internal/tileset"
	"github.com/samdwyer/conduit/internal/world"
)

// Config holds all application settings.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Generation GenerationConfig `yaml:"generation"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    logger.Config    `yaml:"logging"`
}

// GridConfig describes the grid to generate.
type GridConfig struct {
	// Size is the grid edge length. Must be at least world.MinSize.
	Size int `yaml:"size"`

	// Seed for random number generation. A seed of 0 means a time-based seed.
	Seed int64 `yaml:"seed"`

	// Traversal is "depth" or "breadth".
	Traversal string `yaml:"traversal"`

	// Tileset names an embedded preset.
	Tileset string `yaml:"tileset"`

	// TilesetFile, if set, loads a custom tile set and takes precedence over Tileset.
	TilesetFile string `yaml:"tileset_file"`
}

// DefaultMinTiles is the minimum tile count for a grid of world.DefaultSize.
const DefaultMinTiles = 35

// GenerationConfig controls whole-grid retries.
type GenerationConfig struct {
	// MinTiles rejects grids with fewer placed tiles. 0 accepts any grid.
	// When unset the minimum scales with the grid area, see Config.MinTiles.
	MinTiles *int `yaml:"min_tiles"`

	// MaxAttempts bounds the number of grids tried before giving up.
	MaxAttempts int `yaml:"max_attempts"`
}

// ViewerConfig controls the interactive viewer.
type ViewerConfig struct {
	// StepMillis is the delay between animation frames.
	StepMillis int `yaml:"step_millis"`

	// StepsPerFrame is the number of cells expanded per frame.
	StepsPerFrame int `yaml:"steps_per_frame"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// DefaultConfig returns a Config with the reference settings.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Size:      world.DefaultSize,
			Seed:      0,
			Traversal: world.TraversalDepth.String(),
			Tileset:   tileset.DefaultID,
		},
		Generation: GenerationConfig{
			MaxAttempts: 50,
		},
		Viewer: ViewerConfig{
			StepMillis:    100,
			StepsPerFrame: 1,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "conduit",
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides settings from CONDUIT_* and LOG_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONDUIT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Grid.Size = n
		}
	}
	if v := os.Getenv("CONDUIT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Grid.Seed = n
		}
	}
	if v := os.Getenv("CONDUIT_TRAVERSAL"); v != "" {
		c.Grid.Traversal = v
	}
	if v := os.Getenv("CONDUIT_TILESET"); v != "" {
		c.Grid.Tileset = v
	}
	if v := os.Getenv("CONDUIT_TILESET_FILE"); v != "" {
		c.Grid.TilesetFile = v
	}
	if v := os.Getenv("CONDUIT_MIN_TILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.MinTiles = &n
		}
	}
	if v := os.Getenv("CONDUIT_TELEMETRY"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = enabled
		}
	}

	c.Logging.ApplyEnv()
}

// Validate rejects settings that can never generate a grid.
func (c *Config) Validate() error {
	if c.Grid.Size < world.MinSize || c.Grid.Size > world.MaxSize {
		return fmt.Errorf("%w: grid size %d outside %d..%d", tile.ErrInvalidConfiguration, c.Grid.Size, world.MinSize, world.MaxSize)
	}
	if _, err := world.ParseTraversal(c.Grid.Traversal); err != nil {
		return err
	}
	if n := c.Generation.MinTiles; n != nil && (*n < 0 || *n > c.Grid.Size*c.Grid.Size) {
		return fmt.Errorf("%w: min_tiles %d outside 0..%d", tile.ErrInvalidConfiguration, *n, c.Grid.Size*c.Grid.Size)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1", tile.ErrInvalidConfiguration)
	}
	if c.Viewer.StepMillis < 1 || c.Viewer.StepsPerFrame < 1 {
		return fmt.Errorf("%w: viewer step settings must be positive", tile.ErrInvalidConfiguration)
	}
	return nil
}

// MinTiles returns the configured minimum tile count. When none was set it
// scales DefaultMinTiles by the grid area relative to world.DefaultSize,
// rounding up, so a 16x16 grid needs 35 tiles and a 3x3 grid needs 2.
func (c *Config) MinTiles() int {
	if c.Generation.MinTiles != nil {
		return *c.Generation.MinTiles
	}
	return ScaledMinTiles(c.Grid.Size)
}

// ScaledMinTiles scales DefaultMinTiles to a grid of the given size.
func ScaledMinTiles(size int) int {
	if size <= 0 {
		return 0
	}
	area := size * size
	ref := world.DefaultSize * world.DefaultSize
	return (area*DefaultMinTiles + ref - 1) / ref
}

// Tileset resolves the configured tile set.
func (c *Config) Tileset() (*tileset.Def, error) {
	if c.Grid.TilesetFile != "" {
		return tileset.LoadFile(c.Grid.TilesetFile)
	}
	registry, err := tileset.LoadRegistry()
	if err != nil {
		return nil, err
	}
	return registry.Get(c.Grid.Tileset)
}
