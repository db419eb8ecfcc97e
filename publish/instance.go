package publish

import (
	"context"
	"fmt"

	"xdao.co/compository/model"
)

// PublishInstance links a compiled DNA (by its deterministic hash) to the
// template it instantiates. Any successful response counts as success.
func (p *Publisher) PublishInstance(ctx context.Context, templateHash, dnaHash model.ContentHash, uuid string, properties []byte) error {
	if templateHash == "" || dnaHash == "" {
		return model.ValidationError("instantiated dna needs both a template hash and a dna hash")
	}
	in := model.PublishInstantiatedDnaInput{
		DnaTemplateHash:     templateHash,
		InstantiatedDnaHash: dnaHash,
		UUID:                uuid,
		Properties:          properties,
	}
	if err := p.call(ctx, CompositoryZome, FnPublishInstantiatedDna, in, nil); err != nil {
		return fmt.Errorf("publish instantiated dna %s: %w", dnaHash, err)
	}
	p.log.Info("instantiated dna published", "dna_hash", dnaHash, "template", templateHash)
	p.opts.Reporter.InstancePublished(dnaHash)
	return nil
}
