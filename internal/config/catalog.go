package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed definitions/intents.yaml
var defaultDefinitions []byte

// Intent describes one classification category. The prompt builder renders
// the category list from these entries, so the catalog order is the prompt
// order.
type Intent struct {
	Type           string   `yaml:"type"`
	Description    string   `yaml:"description"`
	MetadataFields []string `yaml:"metadata_fields"`
}

type Catalog struct {
	Intents []Intent
}

// ByType returns the intent definition for a category label.
func (c *Catalog) ByType(t string) (Intent, bool) {
	for _, it := range c.Intents {
		if it.Type == t {
			return it, true
		}
	}
	return Intent{}, false
}

// DefaultCatalog parses the embedded intent definitions.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(defaultDefinitions, "embedded definitions")
}

// LoadFromDir reads every YAML file in dir and merges their intents, in file
// order. Used to override the embedded defaults at deploy time.
func LoadFromDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions dir: %w", err)
	}

	cfg := &Catalog{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		c, err := parseCatalog(data, path)
		if err != nil {
			return nil, err
		}
		cfg.Intents = append(cfg.Intents, c.Intents...)
	}

	if len(cfg.Intents) == 0 {
		return nil, fmt.Errorf("no intents defined in %s", dir)
	}
	return cfg, nil
}

func parseCatalog(data []byte, source string) (*Catalog, error) {
	var raw struct {
		Intents []Intent `yaml:"intents"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	for _, it := range raw.Intents {
		if it.Type == "" {
			return nil, fmt.Errorf("parsing %s: intent with empty type", source)
		}
	}
	return &Catalog{Intents: raw.Intents}, nil
}
