package tileset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samdwyer/conduit/internal/tile"
)

// DefaultID names the preset used when none is configured.
const DefaultID = "classic"

// Def defines a tile set loaded from JSON or YAML.
type Def struct {
	ID      string   `json:"id" yaml:"id"`           // Unique identifier (e.g., "classic")
	Name    string   `json:"name" yaml:"name"`       // Display name
	Weights []int    `json:"weights" yaml:"weights"` // One weight per variant; 0 leaves the variant out
	Palette []string `json:"palette" yaml:"palette"` // Hex colours indexed by opening count (0-4)
}

// validate checks the shape of the definition. Weight semantics are checked by
// tile.NewTables when the tables are built.
func (d *Def) validate() error {
	if len(d.Weights) != tile.Count {
		return fmt.Errorf("%w: tile set %q has %d weights, want %d", tile.ErrInvalidConfiguration, d.ID, len(d.Weights), tile.Count)
	}
	if len(d.Palette) != 0 && len(d.Palette) != 5 {
		return fmt.Errorf("%w: tile set %q palette has %d colours, want 5", tile.ErrInvalidConfiguration, d.ID, len(d.Palette))
	}
	for _, hex := range d.Palette {
		if _, err := ParseHexColor(hex); err != nil {
			return fmt.Errorf("%w: tile set %q: %v", tile.ErrInvalidConfiguration, d.ID, err)
		}
	}
	return nil
}

// WeightedTiles returns the set's variants with non-zero weight.
func (d *Def) WeightedTiles() []tile.WeightedTile {
	tiles := make([]tile.WeightedTile, 0, len(d.Weights))
	for v, w := range d.Weights {
		if w == 0 {
			continue
		}
		tiles = append(tiles, tile.WeightedTile{Variant: tile.Variant(v), Weight: w})
	}
	return tiles
}

// Tables builds the direction tables for the set.
func (d *Def) Tables() (*tile.Tables, error) {
	tables, err := tile.NewTables(d.WeightedTiles())
	if err != nil {
		return nil, fmt.Errorf("tile set %q: %w", d.ID, err)
	}
	return tables, nil
}

// Colors returns the set's palette.
func (d *Def) Colors() Palette {
	return NewPalette(d.Palette)
}

// TilesetsFile represents the structure of tilesets.json.
type TilesetsFile struct {
	Tilesets []Def `json:"tilesets"`
}

// LoadTilesets loads the embedded presets from tilesets.json.
func LoadTilesets() ([]Def, error) {
	file, err := Load[TilesetsFile]("tilesets.json")
	if err != nil {
		return nil, err
	}
	for i := range file.Tilesets {
		if err := file.Tilesets[i].validate(); err != nil {
			return nil, err
		}
	}
	return file.Tilesets, nil
}

// Registry holds tile set definitions by ID.
type Registry struct {
	sets map[string]*Def
	all  []Def
}

// NewRegistry creates a registry from loaded definitions.
func NewRegistry(defs []Def) *Registry {
	registry := &Registry{
		sets: make(map[string]*Def),
		all:  defs,
	}
	for i := range defs {
		registry.sets[defs[i].ID] = &defs[i]
	}
	return registry
}

// LoadRegistry loads the embedded presets into a registry.
func LoadRegistry() (*Registry, error) {
	defs, err := LoadTilesets()
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("no tile sets loaded from tilesets.json")
	}
	return NewRegistry(defs), nil
}

// MustLoadRegistry loads the embedded presets, panicking on error.
func MustLoadRegistry() *Registry {
	registry, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Get returns the tile set with the given ID.
func (r *Registry) Get(id string) (*Def, error) {
	def, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tile set %q (have %v)", tile.ErrInvalidConfiguration, id, r.Names())
	}
	return def, nil
}

// Names returns the IDs of all tile sets, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for _, def := range r.all {
		names = append(names, def.ID)
	}
	sort.Strings(names)
	return names
}
