// Package registrytest is an in-memory compository cell for tests. It stores
// every record it is sent, checks that records only reference hashes it
// already holds, logs every call in arrival order, and can be told to fail
// specific calls.
package registrytest

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"xdao.co/compository/cidutil"
	"xdao.co/compository/codec"
	"xdao.co/compository/conductor"
	"xdao.co/compository/model"
)

const (
	DefaultAppID   = "compository-app"
	DefaultDnaHash = "uhC0kcompositorydna"
	DefaultAgent   = "uhCAkpublisheragent"
)

// Call is one zome call as received.
type Call struct {
	Procedure string
	Payload   []byte
}

type failure struct {
	match   func(payload []byte) bool
	message string
}

// Registry implements conductor.Handler.
type Registry struct {
	AppID string
	Cell  conductor.CellID

	// Hook, when set, runs before each zome call is handled, outside the
	// registry lock. Tests use it to add latency or observe concurrency.
	Hook func(call conductor.ZomeCall)

	mu        sync.Mutex
	calls     []Call
	chunks    map[string][]byte
	files     map[string]model.FileMetadata
	zomes     map[string]model.ZomeToPublish
	templates map[string]model.DnaTemplate
	instances []model.PublishInstantiatedDnaInput
	failures  map[string][]failure
}

func New() *Registry {
	return &Registry{
		AppID:     DefaultAppID,
		Cell:      conductor.CellID{DnaHash: DefaultDnaHash, AgentPubKey: DefaultAgent},
		chunks:    map[string][]byte{},
		files:     map[string]model.FileMetadata{},
		zomes:     map[string]model.ZomeToPublish{},
		templates: map[string]model.DnaTemplate{},
		failures:  map[string][]failure{},
	}
}

// FailOn makes calls to procedure ("zome/fn") whose payload satisfies match
// return a remote failure with message. A nil match fails every call.
func (r *Registry) FailOn(procedure string, match func(payload []byte) bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[procedure] = append(r.failures[procedure], failure{match: match, message: message})
}

func (r *Registry) AppInfo(_ context.Context, installedAppID string) (*conductor.AppInfo, error) {
	if installedAppID != r.AppID {
		return nil, nil
	}
	return &conductor.AppInfo{
		InstalledAppID: r.AppID,
		CellData: []conductor.InstalledCell{
			{CellID: conductor.CellID{DnaHash: "uhC0kotherdna", AgentPubKey: r.Cell.AgentPubKey}, CellNick: "other"},
			{CellID: r.Cell, CellNick: "compository"},
		},
	}, nil
}

func (r *Registry) CallZome(_ context.Context, call conductor.ZomeCall) ([]byte, error) {
	if r.Hook != nil {
		r.Hook(call)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	proc := call.Procedure()
	r.calls = append(r.calls, Call{Procedure: proc, Payload: call.Payload})

	if call.CellID != r.Cell {
		return nil, &conductor.RemoteFailure{Kind: "CellMissing", Message: call.CellID.String()}
	}
	if call.Provenance != r.Cell.AgentPubKey {
		return nil, &conductor.RemoteFailure{Kind: "Unauthorized", Message: "provenance does not match cell agent"}
	}
	for _, f := range r.failures[proc] {
		if f.match == nil || f.match(call.Payload) {
			return nil, &conductor.RemoteFailure{Kind: "ZomeCallFailed", Message: f.message}
		}
	}

	var out any
	var err error
	switch proc {
	case "file_storage/create_file_chunk":
		out, err = r.createChunk(call.Payload)
	case "file_storage/create_file_metadata":
		out, err = r.createFile(call.Payload)
	case "compository/publish_zome":
		out, err = r.publishZome(call.Payload)
	case "compository/publish_dna_template":
		out, err = r.publishTemplate(call.Payload)
	case "compository/publish_instantiated_dna":
		out, err = r.publishInstance(call.Payload)
	default:
		return nil, &conductor.RemoteFailure{Kind: "FunctionMissing", Message: proc}
	}
	if err != nil {
		return nil, err
	}
	return codec.Marshal(out)
}

func decode(payload []byte, v any) error {
	if err := codec.Unmarshal(payload, v); err != nil {
		return &conductor.RemoteFailure{Kind: "Deserialize", Message: err.Error()}
	}
	return nil
}

func missing(what, hash string) error {
	return &conductor.RemoteFailure{Kind: "NotFound", Message: fmt.Sprintf("%s %s not found", what, hash)}
}

// entryHash content-addresses an entry by its CBOR encoding.
func entryHash(kind string, v any) string {
	b, err := codec.Marshal(v)
	if err != nil {
		panic(err)
	}
	sum := blake3.Sum256(append([]byte(kind+"\x00"), b...))
	return "uhCEk" + base64.RawURLEncoding.EncodeToString(sum[:])
}

func (r *Registry) createChunk(payload []byte) (string, error) {
	var chunk []byte
	if err := decode(payload, &chunk); err != nil {
		return "", err
	}
	h := entryHash("chunk", chunk)
	r.chunks[h] = chunk
	return h, nil
}

func (r *Registry) createFile(payload []byte) (string, error) {
	var meta model.FileMetadata
	if err := decode(payload, &meta); err != nil {
		return "", err
	}
	total := 0
	for _, h := range meta.ChunksHashes {
		c, ok := r.chunks[h]
		if !ok {
			return "", missing("chunk", h)
		}
		total += len(c)
	}
	if total != meta.Size {
		return "", &conductor.RemoteFailure{Kind: "Invalid", Message: fmt.Sprintf("file size %d does not match chunks (%d)", meta.Size, total)}
	}
	h := entryHash("file", meta)
	r.files[h] = meta
	return h, nil
}

func (r *Registry) reassemble(fileHash string) ([]byte, error) {
	meta, ok := r.files[fileHash]
	if !ok {
		return nil, missing("file", fileHash)
	}
	var buf bytes.Buffer
	for _, h := range meta.ChunksHashes {
		buf.Write(r.chunks[h])
	}
	return buf.Bytes(), nil
}

func (r *Registry) publishZome(payload []byte) (string, error) {
	var z model.ZomeToPublish
	if err := decode(payload, &z); err != nil {
		return "", err
	}
	wasm, err := r.reassemble(z.WasmFile)
	if err != nil {
		return "", err
	}
	if !cidutil.Verify(z.WasmHash, wasm) {
		return "", &conductor.RemoteFailure{Kind: "Invalid", Message: "wasm hash does not match uploaded wasm file"}
	}
	if z.ComponentsBundleFile != nil {
		if _, ok := r.files[*z.ComponentsBundleFile]; !ok {
			return "", missing("file", *z.ComponentsBundleFile)
		}
	}
	h := entryHash("zome", z)
	r.zomes[h] = z
	return h, nil
}

func (r *Registry) publishTemplate(payload []byte) (string, error) {
	var t model.DnaTemplate
	if err := decode(payload, &t); err != nil {
		return "", err
	}
	for _, ref := range t.ZomeDefs {
		if _, ok := r.zomes[ref.ZomeDefHash]; !ok {
			return "", missing("zome", ref.ZomeDefHash)
		}
	}
	h := entryHash("template", t)
	r.templates[h] = t
	return h, nil
}

func (r *Registry) publishInstance(payload []byte) (string, error) {
	var in model.PublishInstantiatedDnaInput
	if err := decode(payload, &in); err != nil {
		return "", err
	}
	if _, ok := r.templates[in.DnaTemplateHash]; !ok {
		return "", missing("template", in.DnaTemplateHash)
	}
	r.instances = append(r.instances, in)
	return entryHash("instance", in), nil
}
