package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/compository/model"
)

// Dir is a filesystem-backed ledger. Each entry is an immutable file at
// <root>/<kind>/<cid[:2]>/<cid> holding the registry hash.
type Dir struct {
	root string
}

// OpenDir opens a ledger rooted at root, creating the directory if needed.
func OpenDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("ledger: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

// OpenForCell opens the ledger under root scoped to one compository cell.
func OpenForCell(root, dnaHash, agentPubKey string) (*Dir, error) {
	if dnaHash == "" || agentPubKey == "" {
		return nil, errors.New("ledger: cell dna hash and agent key are required")
	}
	return OpenDir(filepath.Join(root, pathSafe(dnaHash), pathSafe(agentPubKey)))
}

func pathSafe(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}

// Root returns the directory entries are stored under.
func (d *Dir) Root() string { return d.root }

func (d *Dir) Lookup(kind string, key []byte) (model.ContentHash, error) {
	id, err := keyID(kind, key)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(d.pathFor(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	hash := strings.TrimSpace(string(b))
	if hash == "" {
		// A truncated entry counts as missing.
		return "", ErrNotFound
	}
	return hash, nil
}

func (d *Dir) Record(kind string, key []byte, hash model.ContentHash) error {
	if hash == "" {
		return ErrEmptyHash
	}
	id, err := keyID(kind, key)
	if err != nil {
		return err
	}

	path := d.pathFor(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	existing, err := d.Lookup(kind, key)
	switch {
	case err == nil && existing == hash:
		return nil
	case err == nil:
		return ErrConflict
	case !IsNotFound(err):
		return err
	}

	// Readers never see a partial entry: write a temp file, then rename.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(hash); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (d *Dir) pathFor(kind string, id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(d.root, kind, s)
	}
	return filepath.Join(d.root, kind, s[:2], s)
}
