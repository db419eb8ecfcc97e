package model

import "time"

// ContentHash is a registry-assigned identifier for a stored record. Clients
// treat it as an opaque, comparable string.
type ContentHash = string

// Timestamp is a wall-clock instant encoded as (seconds, nanoseconds) since
// the Unix epoch, serialized as a two-element array.
type Timestamp struct {
	_     struct{} `cbor:",toarray"`
	Secs  int64
	Nanos uint32
}

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Secs: t.Unix(), Nanos: uint32(t.Nanosecond())}
}

// Time returns the instant as a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Secs, int64(ts.Nanos)).UTC()
}

// FileMetadata describes an uploaded file by its ordered chunk hashes.
type FileMetadata struct {
	Name         string    `cbor:"name"`
	LastModified Timestamp `cbor:"lastModified"`
	Size         int       `cbor:"size"`
	FileType     string    `cbor:"fileType"`
	ChunksHashes []string  `cbor:"chunksHashes"`
}

// ZomeWithCode is a locally compiled zome ready to be uploaded.
type ZomeWithCode struct {
	Name string
	// ComponentsBundle is the optional UI bundle; nil means none.
	ComponentsBundle []byte
	WasmCode         []byte
	WasmHash         string
	// EntryDefs are entry definition ids ordered by position in the zome.
	EntryDefs             []string
	RequiredProperties    []string
	RequiredMembraneProof bool
}

// ZomeToPublish is the publish_zome input: a zome whose files are already
// in the registry.
type ZomeToPublish struct {
	Name                 string  `cbor:"name"`
	WasmFile             string  `cbor:"wasm_file"`
	ComponentsBundleFile *string `cbor:"components_bundle_file"`
	// WasmHash lets the registry cross-check the reassembled wasm file.
	WasmHash              string   `cbor:"wasm_hash"`
	EntryDefs             []string `cbor:"entry_defs"`
	RequiredProperties    []string `cbor:"required_properties"`
	RequiredMembraneProof bool     `cbor:"required_membrane_proof"`
}

type ZomeReference struct {
	Name        string `cbor:"name"`
	ZomeDefHash string `cbor:"zome_def_hash"`
}

// DnaTemplate is the abstract shape of a DNA, independent of any uuid or
// properties.
type DnaTemplate struct {
	Name     string          `cbor:"name"`
	ZomeDefs []ZomeReference `cbor:"zome_defs"`
}

// PublishInstantiatedDnaInput links a concrete DNA back to its template.
type PublishInstantiatedDnaInput struct {
	DnaTemplateHash     string `cbor:"dna_template_hash"`
	InstantiatedDnaHash string `cbor:"instantiated_dna_hash"`
	UUID                string `cbor:"uuid"`
	// Properties are the DNA properties as serialized bytes.
	Properties []byte `cbor:"properties"`
}
