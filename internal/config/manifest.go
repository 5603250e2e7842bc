// internal/config/manifest.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is an optional YAML file bundling the inputs of one experiment,
// so a run can be launched with --config alone. Explicit flags take
// precedence over manifest values.
type Manifest struct {
	Input       string `yaml:"input"`       // directory holding raw FASTQ pairs
	Output      string `yaml:"output"`      // demultiplexing output root
	Populations string `yaml:"populations"` // multiplexing CSV path
	Primers     string `yaml:"primers"`     // UMI primer CSV path
	MinLength   int    `yaml:"min_length"`  // read-length floor; 0 = default
	IndexLength int    `yaml:"index_length"`
	UMILength   int    `yaml:"umi_length"`
	Threads     int    `yaml:"threads"`
}

// LoadManifest reads and strictly decodes a manifest file; unknown keys
// are an error so typos do not silently fall back to defaults.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
