package chain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ragqa/internal/domain"
)

// Definition is the YAML form of a chain. Either Steps or Simple is set.
type Definition struct {
	Name    string   `yaml:"name"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Steps   []Step   `yaml:"steps,omitempty"`
	Simple  []string `yaml:"simple,omitempty"`
}

// LoadDefinition reads a chain definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if (len(d.Steps) == 0) == (len(d.Simple) == 0) {
		return nil, domain.InvalidConfig("chain definition", path, "exactly one of steps or simple must be set")
	}
	return &d, nil
}

// IsSimple reports whether the definition is a single-field chain.
func (d *Definition) IsSimple() bool { return len(d.Simple) > 0 }
