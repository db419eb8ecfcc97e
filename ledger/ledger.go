// Package ledger remembers the registry hash obtained for each piece of
// published content, so that a rerun after a partial failure skips the
// calls that already succeeded.
//
// Entries are keyed by kind and by the CIDv1 (raw, sha2-256) of a key the
// caller derives from the content. A ledger must be scoped to one
// compository cell: hashes are only meaningful to the registry that
// returned them.
package ledger

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/compository/cidutil"
	"xdao.co/compository/model"
)

// Entry kinds.
const (
	KindChunk    = "chunk"
	KindFile     = "file"
	KindZome     = "zome"
	KindTemplate = "template"
)

// Ledger is a write-once map from (kind, key) to a registry hash.
//
// Contract:
// - Lookup MUST return ErrNotFound when nothing was recorded.
// - Record MUST be idempotent for the same hash.
// - Record MUST return ErrConflict rather than replace a different hash.
type Ledger interface {
	Lookup(kind string, key []byte) (model.ContentHash, error)
	Record(kind string, key []byte, hash model.ContentHash) error
}

func validKind(kind string) bool {
	if kind == "" {
		return false
	}
	for _, r := range kind {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func keyID(kind string, key []byte) (cid.Cid, error) {
	if !validKind(kind) {
		return cid.Undef, ErrInvalidKind
	}
	return cidutil.CIDv1RawSHA256CID(key)
}

// Memory is an in-process ledger.
type Memory struct {
	mu      sync.Mutex
	entries map[string]model.ContentHash
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]model.ContentHash{}}
}

func (m *Memory) Lookup(kind string, key []byte) (model.ContentHash, error) {
	id, err := keyID(kind, key)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.entries[kind+"/"+id.String()]
	if !ok {
		return "", ErrNotFound
	}
	return hash, nil
}

func (m *Memory) Record(kind string, key []byte, hash model.ContentHash) error {
	if hash == "" {
		return ErrEmptyHash
	}
	id, err := keyID(kind, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := kind + "/" + id.String()
	if existing, ok := m.entries[k]; ok && existing != hash {
		return ErrConflict
	}
	m.entries[k] = hash
	return nil
}

// Len returns the number of recorded entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
