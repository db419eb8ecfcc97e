package dna

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"xdao.co/compository/model"
)

// Descriptor file names, in lookup order.
var DescriptorFiles = []string{"dna.json", "dna.yaml", "dna.yml"}

type ZomeDescriptor struct {
	WasmPath              string   `json:"wasm_path" yaml:"wasm_path"`
	UIPath                string   `json:"ui_path,omitempty" yaml:"ui_path,omitempty"`
	EntryDefs             []string `json:"entry_defs,omitempty" yaml:"entry_defs,omitempty"`
	RequiredProperties    []string `json:"required_properties,omitempty" yaml:"required_properties,omitempty"`
	RequiredMembraneProof bool     `json:"required_membrane_proof,omitempty" yaml:"required_membrane_proof,omitempty"`
}

// Descriptor is the parsed dna.json. Paths are relative to the working
// directory.
type Descriptor struct {
	Name       string                    `json:"name" yaml:"name"`
	UUID       string                    `json:"uuid" yaml:"uuid"`
	Properties any                       `json:"properties" yaml:"properties"`
	Zomes      map[string]ZomeDescriptor `json:"zomes" yaml:"zomes"`

	// Path is the descriptor file that was read.
	Path string `json:"-" yaml:"-"`
	// GeneratedUUID is set when the descriptor had no uuid and one was
	// generated.
	GeneratedUUID bool `json:"-" yaml:"-"`
}

// ReadDescriptor finds and parses the descriptor in workDir.
func ReadDescriptor(workDir string) (*Descriptor, error) {
	for _, name := range DescriptorFiles {
		path := filepath.Join(workDir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		d, err := ParseDescriptor(name, data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		d.Path = path
		return d, nil
	}
	return nil, model.ValidationError("no dna descriptor (%s) in %s", DescriptorFiles[0], workDir)
}

// ParseDescriptor decodes data as JSON with comments, or as YAML when name
// ends in .yaml or .yml.
func ParseDescriptor(name string, data []byte) (*Descriptor, error) {
	var d Descriptor
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, model.ValidationError("invalid yaml: %v", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
			return nil, model.ValidationError("invalid json: %v", err)
		}
	}
	if d.UUID == "" {
		d.UUID = uuid.NewString()
		d.GeneratedUUID = true
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return model.ValidationError("dna descriptor has no name")
	}
	if len(d.Zomes) == 0 {
		return model.ValidationError("dna %q has no zomes", d.Name)
	}
	for name, z := range d.Zomes {
		if name == "" {
			return model.ValidationError("dna %q has a zome with an empty name", d.Name)
		}
		if z.WasmPath == "" {
			return model.ValidationError("zome %q has no wasm_path", name)
		}
	}
	return nil
}
