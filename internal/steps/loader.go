package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type tableDocument struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Parse builds a table from a YAML document of the form
//
//	name: feedback
//	steps:
//	  - title: "Step 1: Basic details"
//	    fields:
//	      - {name: title, kind: string, required: true}
func Parse(data []byte) (*Table, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse step table: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("parse step table: name is required")
	}
	return New(doc.Name, doc.Steps...)
}

// LoadFile reads and parses a YAML step table.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read step table: %w", err)
	}
	return Parse(data)
}

// Resolve returns the table at path when set, otherwise the built-in table
// called name.
func Resolve(name, path string) (*Table, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFile(path)
	}
	return Builtin(name)
}
