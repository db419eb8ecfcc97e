package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
)

func TestWasmHash_StableAndRaw(t *testing.T) {
	code := []byte("\x00asm\x01\x00\x00\x00")
	a := WasmHash(code)
	b := WasmHash(append([]byte(nil), code...))
	if a == "" || a != b {
		t.Fatalf("WasmHash not stable: %q vs %q", a, b)
	}
	id, err := cid.Decode(a)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.Type() != cid.Raw {
		t.Fatalf("codec: got %d want raw", id.Type())
	}
	if !Verify(a, code) {
		t.Fatalf("Verify: expected match")
	}
	if Verify(a, []byte("other")) {
		t.Fatalf("Verify: expected mismatch for different bytes")
	}
}

func TestCIDv1DagCBOR_DiffersFromRaw(t *testing.T) {
	data := []byte{0xa1, 0x61, 0x61, 0x01}
	raw, err := CIDv1RawSHA256CID(data)
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	dag, err := CIDv1DagCBORSHA256CID(data)
	if err != nil {
		t.Fatalf("dag: %v", err)
	}
	if raw.Equals(dag) {
		t.Fatalf("expected distinct CIDs for distinct codecs")
	}
	if dag.Type() != cid.DagCBOR {
		t.Fatalf("codec: got %d want dag-cbor", dag.Type())
	}
	if !Verify(dag.String(), data) {
		t.Fatalf("Verify: expected dag-cbor CID to verify")
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	if Verify("not-a-cid", []byte("x")) {
		t.Fatalf("expected false for undecodable CID")
	}
}
