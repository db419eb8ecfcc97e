package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// WasmHash returns the integrity hash sent alongside an uploaded wasm file:
// a CIDv1 string using the "raw" multicodec and a sha2-256 multihash.
func WasmHash(code []byte) string {
	id, err := CIDv1RawSHA256CID(code)
	if err != nil {
		// multihash.Sum only errors for unknown codes or bad lengths.
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CIDv1DagCBORSHA256CID returns a CIDv1 (dag-cbor + sha2-256) for bytes that
// are already in deterministic CBOR form. Used for structured records such as
// a compiled DNA definition.
func CIDv1DagCBORSHA256CID(encoded []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(encoded, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.DagCBOR, sum), nil
}

// Verify reports whether s decodes to a defined CID whose multihash matches data.
func Verify(s string, data []byte) bool {
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return false
	}
	want, err := id.Prefix().Sum(data)
	if err != nil {
		return false
	}
	return want.Equals(id)
}
