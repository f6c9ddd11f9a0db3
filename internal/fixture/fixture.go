// Package fixture serves the telemetry API from a static YAML document. It
// backs demos and tests; it does not reproduce the real server's storage.
package fixture

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

type Machine struct {
	ID      string `yaml:"machine_id" json:"machine_id"`
	Name    string `yaml:"machine_name" json:"machine_name"`
	Type    string `yaml:"machine_type" json:"machine_type"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

type Metric struct {
	MachineID  string `yaml:"machine_id" json:"machine_id"`
	Name       string `yaml:"metric_name" json:"metric_name"`
	Value      string `yaml:"metric_value" json:"metric_value"`
	Timestamp  string `yaml:"record_timestamp" json:"record_timestamp"`
	SourceFile string `yaml:"source_file" json:"source_file"`
}

type LusuRow struct {
	MachineID string         `yaml:"machine_id"`
	Timestamp string         `yaml:"record_timestamp"`
	Values    map[string]any `yaml:"values"`
}

// Fixture is the whole dataset served by the fixture server
type Fixture struct {
	Machines []Machine `yaml:"machines"`
	Metrics  []Metric  `yaml:"metrics"`
	Lusu     []LusuRow `yaml:"lusu"`
}

// Parse decodes a YAML fixture
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Load reads a fixture file; an empty path loads the embedded default
func Load(path string) (*Fixture, error) {
	if path == "" {
		return Parse(defaultFixture)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded fixture
func Default() *Fixture {
	f, err := Parse(defaultFixture)
	if err != nil {
		panic(err)
	}
	return f
}
