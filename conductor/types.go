package conductor

import (
	"fmt"

	"xdao.co/compository/codec"
)

// ProtocolVersion is sent in every request envelope. A conductor speaking a
// different version rejects the request instead of misreading it.
const ProtocolVersion = 1

// Envelope types.
const (
	TypeAppInfo  = "app_info"
	TypeZomeCall = "zome_call"
	TypeError    = "error"
)

// CellID addresses one running DNA for one agent.
type CellID struct {
	DnaHash     string `cbor:"dna_hash"`
	AgentPubKey string `cbor:"agent_pub_key"`
}

func (c CellID) String() string {
	return fmt.Sprintf("CellID(%s, %s)", c.DnaHash, c.AgentPubKey)
}

// InstalledCell is a cell as listed in an app's info.
type InstalledCell struct {
	CellID   CellID `cbor:"cell_id"`
	CellNick string `cbor:"cell_nick"`
}

// AppInfo is returned by the app_info request.
type AppInfo struct {
	InstalledAppID string          `cbor:"installed_app_id"`
	CellData       []InstalledCell `cbor:"cell_data"`
}

// ZomeCall invokes one zome function in one cell.
type ZomeCall struct {
	CellID   CellID `cbor:"cell_id"`
	ZomeName string `cbor:"zome_name"`
	FnName   string `cbor:"fn_name"`
	// Payload is the CBOR-encoded function input.
	Payload []byte `cbor:"payload"`
	// CapSecret may be empty when the function is granted unrestricted.
	CapSecret  []byte `cbor:"cap,omitempty"`
	Provenance string `cbor:"provenance"`
	Signer     string `cbor:"signer,omitempty"`
	Signature  []byte `cbor:"signature,omitempty"`
}

// Procedure returns "zome/fn", the name used in errors and logs.
func (c ZomeCall) Procedure() string {
	return c.ZomeName + "/" + c.FnName
}

// SigningBytes is the canonical encoding a signature covers: the call with
// its Signature cleared.
func (c ZomeCall) SigningBytes() ([]byte, error) {
	c.Signature = nil
	return codec.Marshal(c)
}

// RemoteFailure is the structured error a conductor returns in an "error"
// envelope.
type RemoteFailure struct {
	Kind    string `cbor:"kind"`
	Message string `cbor:"message"`
}

func (f *RemoteFailure) Error() string {
	if f.Kind == "" {
		return f.Message
	}
	return f.Kind + ": " + f.Message
}

type request struct {
	Version int              `cbor:"version"`
	Type    string           `cbor:"type"`
	Data    codec.RawMessage `cbor:"data"`
}

type response struct {
	Type string           `cbor:"type"`
	Data codec.RawMessage `cbor:"data"`
}
