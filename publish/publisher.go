package publish

import (
	"context"
	"io"
	"log/slog"
	"time"

	"xdao.co/compository/codec"
	"xdao.co/compository/conductor"
	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
)

// Zome and function names exposed by the compository DNA.
const (
	FileStorageZome = "file_storage"
	CompositoryZome = "compository"

	FnCreateFileChunk        = "create_file_chunk"
	FnCreateFileMetadata     = "create_file_metadata"
	FnPublishZome            = "publish_zome"
	FnPublishDnaTemplate     = "publish_dna_template"
	FnPublishInstantiatedDna = "publish_instantiated_dna"
)

// Caller is the slice of the conductor channel the publisher needs.
// *conductor.Client satisfies it.
type Caller interface {
	CallZome(ctx context.Context, call conductor.ZomeCall) ([]byte, error)
}

// Options tunes a Publisher. The zero value publishes sequentially with
// DefaultChunkSize and no ledger.
type Options struct {
	// ChunkSize is the maximum chunk length. Zero uses DefaultChunkSize.
	ChunkSize int
	// UploadConcurrency bounds in-flight calls within one zome's uploads
	// (its chunks, and its wasm vs. UI bundle). Values below 1 mean 1.
	UploadConcurrency int
	// ZomeConcurrency bounds zomes published at once. Values below 1 mean 1.
	ZomeConcurrency int
	// CapSecret is attached to every zome call when set.
	CapSecret []byte
	// Now stamps file metadata. Nil uses time.Now.
	Now func() time.Time
	// Reporter receives progress markers. Nil discards them.
	Reporter Reporter
	// Ledger, when set, lets a rerun skip calls that already succeeded.
	Ledger ledger.Ledger
	// Logger receives debug lines per call and info lines per stage. Nil
	// discards them.
	Logger *slog.Logger
}

// Publisher publishes zomes, templates and instances into one compository
// cell through an explicitly owned channel.
type Publisher struct {
	caller Caller
	cell   conductor.CellID
	opts   Options
	log    *slog.Logger
}

func NewPublisher(caller Caller, cell conductor.CellID, opts Options) *Publisher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.UploadConcurrency < 1 {
		opts.UploadConcurrency = 1
	}
	if opts.ZomeConcurrency < 1 {
		opts.ZomeConcurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{caller: caller, cell: cell, opts: opts, log: log}
}

// Cell returns the target compository cell.
func (p *Publisher) Cell() conductor.CellID { return p.cell }

// call encodes in, invokes zome/fn and decodes the output into out (when
// out is non-nil).
func (p *Publisher) call(ctx context.Context, zome, fn string, in, out any) error {
	payload, err := codec.Marshal(in)
	if err != nil {
		return err
	}
	call := conductor.ZomeCall{
		CellID:     p.cell,
		ZomeName:   zome,
		FnName:     fn,
		Payload:    payload,
		CapSecret:  p.opts.CapSecret,
		Provenance: p.cell.AgentPubKey,
	}
	started := time.Now()
	raw, err := p.caller.CallZome(ctx, call)
	if err != nil {
		p.log.Debug("zome call failed", "procedure", call.Procedure(), "error", err)
		return err
	}
	p.log.Debug("zome call", "procedure", call.Procedure(), "payload_bytes", len(payload), "elapsed", time.Since(started))
	if out == nil {
		return nil
	}
	if err := codec.Unmarshal(raw, out); err != nil {
		return model.ProtocolMismatchError(call.Procedure(), "unexpected output "+codec.Diagnose(raw), err)
	}
	return nil
}

// callHash invokes zome/fn and expects a non-empty hash in return.
func (p *Publisher) callHash(ctx context.Context, zome, fn string, in any) (model.ContentHash, error) {
	var hash string
	if err := p.call(ctx, zome, fn, in, &hash); err != nil {
		return "", err
	}
	if hash == "" {
		return "", model.ProtocolMismatchError(zome+"/"+fn, "empty hash in response", nil)
	}
	return hash, nil
}
