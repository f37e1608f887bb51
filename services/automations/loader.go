package automations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of an automation catalog:
//
//	version: 1
//	actions:
//	  - id: send_email
//	    label: Send Email
//	    params:
//	      - { name: to, type: string, required: true }
type catalogFile struct {
	Version int      `yaml:"version"`
	Actions []Action `yaml:"actions"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a YAML catalog document.
func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse automation catalog: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported automation catalog version: %d", f.Version)
	}
	return NewCatalog(f.Actions)
}
