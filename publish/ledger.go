package publish

import (
	"context"
	"fmt"

	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
)

// ledgerHash returns the hash recorded for (kind, key) when a ledger is
// configured, and otherwise invokes zome/fn and records its hash.
func (p *Publisher) ledgerHash(ctx context.Context, kind string, key []byte, zome, fn string, in any) (model.ContentHash, error) {
	l := p.opts.Ledger
	if l != nil && key != nil {
		hash, err := l.Lookup(kind, key)
		if err == nil {
			p.log.Debug("ledger hit", "kind", kind, "hash", hash)
			return hash, nil
		}
		if !ledger.IsNotFound(err) {
			return "", fmt.Errorf("ledger lookup %s: %w", kind, err)
		}
	}

	hash, err := p.callHash(ctx, zome, fn, in)
	if err != nil {
		return "", err
	}
	if l != nil && key != nil {
		if err := l.Record(kind, key, hash); err != nil {
			return "", fmt.Errorf("ledger record %s: %w", kind, err)
		}
	}
	return hash, nil
}
