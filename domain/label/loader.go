package label

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the path of the labels file inside an embedded filesystem.
const DefaultFile = "labels/garbage.yaml"

// yamlLabelFile is the YAML structure for label definitions.
type yamlLabelFile struct {
	Model  string   `yaml:"model"`
	Labels []string `yaml:"labels"`
}

// LoadFromFS loads a label set from an embedded or real filesystem.
func LoadFromFS(fsys fs.FS, path string) (*Set, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFromFile loads a label set from a file on disk.
func LoadFromFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Set, error) {
	var def yamlLabelFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse labels file %s: %w", path, err)
	}

	set, err := NewSet(def.Labels)
	if err != nil {
		return nil, fmt.Errorf("invalid labels file %s: %w", path, err)
	}
	set.model = def.Model
	return set, nil
}
