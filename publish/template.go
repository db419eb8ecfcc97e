package publish

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"xdao.co/compository/codec"
	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
)

// PublishTemplate publishes every zome and then the DNA template that
// references them in input order. If any zome fails the template is never
// published.
func (p *Publisher) PublishTemplate(ctx context.Context, dnaName string, zomes []model.ZomeWithCode) (model.ContentHash, error) {
	if err := validateTemplate(dnaName, zomes); err != nil {
		return "", err
	}
	refs, err := p.PublishZomes(ctx, zomes)
	if err != nil {
		return "", err
	}
	return p.PublishDnaTemplate(ctx, model.DnaTemplate{Name: dnaName, ZomeDefs: refs})
}

// PublishZomes publishes zomes with bounded fan-out and returns their
// references in the same order as zomes.
func (p *Publisher) PublishZomes(ctx context.Context, zomes []model.ZomeWithCode) ([]model.ZomeReference, error) {
	refs := make([]model.ZomeReference, len(zomes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.ZomeConcurrency)
	for i, zome := range zomes {
		i, zome := i, zome
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := p.PublishZome(gctx, zome)
			if err != nil {
				return err
			}
			refs[i] = model.ZomeReference{Name: zome.Name, ZomeDefHash: hash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// PublishDnaTemplate publishes a template whose zomes already exist.
func (p *Publisher) PublishDnaTemplate(ctx context.Context, template model.DnaTemplate) (model.ContentHash, error) {
	key, err := codec.Marshal(template)
	if err != nil {
		return "", err
	}
	hash, err := p.ledgerHash(ctx, ledger.KindTemplate, key, CompositoryZome, FnPublishDnaTemplate, template)
	if err != nil {
		return "", fmt.Errorf("publish dna template %q: %w", template.Name, err)
	}
	p.log.Info("dna template published", "dna", template.Name, "zomes", len(template.ZomeDefs), "hash", hash)
	p.opts.Reporter.TemplatePublished(template.Name, hash)
	return hash, nil
}

func validateTemplate(dnaName string, zomes []model.ZomeWithCode) error {
	if dnaName == "" {
		return model.ValidationError("dna has no name")
	}
	if len(zomes) == 0 {
		return model.ValidationError("dna %q has no zomes", dnaName)
	}
	seen := make(map[string]struct{}, len(zomes))
	for _, z := range zomes {
		if err := validateZome(z); err != nil {
			return err
		}
		if _, dup := seen[z.Name]; dup {
			return model.ValidationError("dna %q lists zome %q twice", dnaName, z.Name)
		}
		seen[z.Name] = struct{}{}
	}
	return nil
}
