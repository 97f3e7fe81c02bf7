// pkg/manifest/load.go
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a manifest. Files ending in .yaml or .yml are
// YAML; anything else is TOML.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(b, FormatYAML)
	default:
		return Parse(b, FormatTOML)
	}
}

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func Parse(b []byte, f Format) (Config, error) {
	var cfg Config
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
