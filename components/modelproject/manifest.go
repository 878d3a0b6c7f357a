package modelproject

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Manifest describes a model project: a named collection of models with
// their dependency edges, as produced by the modeling tool.
type Manifest struct {
	Name   string  `yaml:"name"`
	Models []Model `yaml:"models"`
}

// Model is one entry in a project manifest. DependsOn names other models by
// their manifest name; names not present in the manifest are treated as
// references to assets contributed by other units.
type Model struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Group       string            `yaml:"group"`
	DependsOn   []string          `yaml:"depends_on"`
	Tags        map[string]string `yaml:"tags"`
	Meta        map[string]string `yaml:"meta"`
}

// LoadManifest reads and validates a project manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("model manifest %s has no project name", path)
	}
	seen := make(map[string]bool, len(m.Models))
	for i, model := range m.Models {
		if model.Name == "" {
			return nil, fmt.Errorf("model manifest %s: model %d has no name", path, i)
		}
		if seen[model.Name] {
			return nil, fmt.Errorf("model manifest %s: duplicate model %q", path, model.Name)
		}
		seen[model.Name] = true
	}
	return &m, nil
}
