package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a `.cthulhu.yaml` build manifest: a list of modules, each
// named by its dotted module path and its backing HLIR source files
// (§1.3, mirroring the teacher's eval_harness YAML spec-loading idiom).
type Manifest struct {
	Modules []ManifestModule `yaml:"modules"`
}

// ManifestModule names one module's dotted path and the HLIR module files
// that together define it.
type ManifestModule struct {
	Path  string   `yaml:"path"`
	Files []string `yaml:"files"`
}

// LoadManifest reads and parses a `.cthulhu.yaml` file at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("driver: parse manifest %s: %w", path, err)
	}
	return &m, nil
}
