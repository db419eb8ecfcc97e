package publish

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"xdao.co/compository/cidutil"
	"xdao.co/compository/codec"
	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
)

// File names and types under which zome files are uploaded.
const (
	WasmFileName   = "artifact"
	WasmFileType   = "wasm"
	BundleFileName = "bundle"
	BundleFileType = "js"
)

// PublishZome uploads the zome's wasm and optional UI bundle, then publishes
// the zome record referencing both files. It returns the zome's hash.
func (p *Publisher) PublishZome(ctx context.Context, zome model.ZomeWithCode) (model.ContentHash, error) {
	if err := validateZome(zome); err != nil {
		return "", err
	}

	var wasmFile string
	var bundleFile *string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.UploadConcurrency)
	g.Go(func() error {
		hash, err := p.UploadFile(gctx, WasmFileName, WasmFileType, zome.WasmCode)
		if err != nil {
			return fmt.Errorf("upload wasm: %w", err)
		}
		wasmFile = hash
		return nil
	})
	if zome.ComponentsBundle != nil {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := p.UploadFile(gctx, BundleFileName, BundleFileType, zome.ComponentsBundle)
			if err != nil {
				return fmt.Errorf("upload UI bundle: %w", err)
			}
			bundleFile = &hash
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("publish zome %q: %w", zome.Name, err)
	}

	wasmHash := zome.WasmHash
	if wasmHash == "" {
		wasmHash = cidutil.WasmHash(zome.WasmCode)
	}
	in := model.ZomeToPublish{
		Name:                  zome.Name,
		WasmFile:              wasmFile,
		ComponentsBundleFile:  bundleFile,
		WasmHash:              wasmHash,
		EntryDefs:             nonNil(zome.EntryDefs),
		RequiredProperties:    nonNil(zome.RequiredProperties),
		RequiredMembraneProof: zome.RequiredMembraneProof,
	}
	key, err := codec.Marshal(in)
	if err != nil {
		return "", err
	}
	hash, err := p.ledgerHash(ctx, ledger.KindZome, key, CompositoryZome, FnPublishZome, in)
	if err != nil {
		return "", fmt.Errorf("publish zome %q: %w", zome.Name, err)
	}
	p.log.Info("zome published", "zome", zome.Name, "hash", hash)
	p.opts.Reporter.ZomePublished(zome.Name, hash)
	return hash, nil
}

func validateZome(zome model.ZomeWithCode) error {
	if zome.Name == "" {
		return model.ValidationError("zome has no name")
	}
	if len(zome.WasmCode) == 0 {
		return model.ValidationError("zome %q has no wasm code", zome.Name)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
