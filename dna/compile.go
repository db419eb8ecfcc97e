package dna

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"xdao.co/compository/cidutil"
	"xdao.co/compository/codec"
	"xdao.co/compository/model"
)

// ZomeDef is one zome of a compiled DNA.
type ZomeDef struct {
	_        struct{} `cbor:",toarray"`
	Name     string
	WasmHash string
}

// Def is the hashed part of a compiled DNA. Zomes are ordered by name.
type Def struct {
	Name       string    `cbor:"name"`
	UUID       string    `cbor:"uuid"`
	Properties []byte    `cbor:"properties"`
	Zomes      []ZomeDef `cbor:"zomes"`
}

// File is a compiled DNA: its definition plus the code and UI bundles of
// every zome.
type File struct {
	Def        Def
	Descriptor *Descriptor
	zomes      []model.ZomeWithCode
}

// Load reads the descriptor in workDir and compiles it.
func Load(workDir string) (*File, error) {
	d, err := ReadDescriptor(workDir)
	if err != nil {
		return nil, err
	}
	return Compile(workDir, d)
}

// Compile reads every zome's wasm and UI bundle relative to workDir.
func Compile(workDir string, d *Descriptor) (*File, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	properties, err := codec.Marshal(d.Properties)
	if err != nil {
		return nil, model.ValidationError("dna %q properties: %v", d.Name, err)
	}

	names := make([]string, 0, len(d.Zomes))
	for name := range d.Zomes {
		names = append(names, name)
	}
	slices.Sort(names)

	f := &File{
		Def:        Def{Name: d.Name, UUID: d.UUID, Properties: properties},
		Descriptor: d,
	}
	for _, name := range names {
		zd := d.Zomes[name]
		wasm, err := readFile(workDir, zd.WasmPath)
		if err != nil {
			return nil, fmt.Errorf("zome %q wasm: %w", name, err)
		}
		if len(wasm) == 0 {
			return nil, model.ValidationError("zome %q: %s is empty", name, zd.WasmPath)
		}
		var bundle []byte
		if zd.UIPath != "" {
			if bundle, err = readFile(workDir, zd.UIPath); err != nil {
				return nil, fmt.Errorf("zome %q UI bundle: %w", name, err)
			}
		}

		wasmHash := cidutil.WasmHash(wasm)
		f.Def.Zomes = append(f.Def.Zomes, ZomeDef{Name: name, WasmHash: wasmHash})
		f.zomes = append(f.zomes, model.ZomeWithCode{
			Name:                  name,
			ComponentsBundle:      bundle,
			WasmCode:              wasm,
			WasmHash:              wasmHash,
			EntryDefs:             zd.EntryDefs,
			RequiredProperties:    zd.RequiredProperties,
			RequiredMembraneProof: zd.RequiredMembraneProof,
		})
	}
	return f, nil
}

func readFile(workDir, rel string) ([]byte, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, rel)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ValidationError("%s does not exist", path)
	}
	return data, err
}

// Hash returns the deterministic hash of the compiled DNA: a CIDv1
// (dag-cbor, sha2-256) over the canonical CBOR encoding of Def.
func (f *File) Hash() (model.ContentHash, error) {
	encoded, err := codec.Marshal(f.Def)
	if err != nil {
		return "", err
	}
	id, err := cidutil.CIDv1DagCBORSHA256CID(encoded)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Zomes returns the zomes with their code, sorted by name.
func (f *File) Zomes() []model.ZomeWithCode {
	return slices.Clone(f.zomes)
}
