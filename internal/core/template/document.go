// Package template builds pre-configured entities from declarative documents.
//
// A document lists named templates; each template names the tags, values and
// capabilities a fresh entity starts with. Capability types are resolved
// through a Registry of constructors, so documents stay data only.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Templates []Spec `yaml:"templates" json:"templates"`
}

type Spec struct {
	Name         string           `yaml:"name" json:"name"`
	Tags         []string         `yaml:"tags" json:"tags"`
	Values       map[string]any   `yaml:"values" json:"values"`
	Capabilities []CapabilitySpec `yaml:"capabilities" json:"capabilities"`
}

type CapabilitySpec struct {
	Type   string `yaml:"type" json:"type"`
	Params Params `yaml:"params" json:"params"`
}

func LoadYAML(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("template: decode yaml: %w", err)
	}
	return &doc, nil
}

func LoadJSON(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("template: decode json: %w", err)
	}
	return &doc, nil
}

// LoadFile picks the decoder from the file extension: .yaml, .yml or .json.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: load %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	case ".json":
		return LoadJSON(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
