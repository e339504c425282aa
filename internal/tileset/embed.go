// Package tileset provides the embedded weight presets and colour palettes for
// tile generation, and loads custom tile sets from JSON or YAML files.
package tileset

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
