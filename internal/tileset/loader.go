package tileset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// LoadFile reads a single tile set definition from disk. Files ending in .yaml
// or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Def, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile set file %s: %w", path, err)
	}

	var def Def
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &def)
	default:
		err = json.Unmarshal(content, &def)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tile set %s: %w", path, err)
	}

	if def.ID == "" {
		def.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("tile set %s: %w", path, err)
	}
	return &def, nil
}
