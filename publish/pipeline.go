package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"xdao.co/compository/model"
)

// State is the pipeline's position in a run.
type State int

const (
	StateIdle State = iota
	StateUnitsPublishing
	StateTemplatePublished
	StateInstancePublished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateUnitsPublishing:
		return "UnitsPublishing"
	case StateTemplatePublished:
		return "TemplatePublished"
	case StateInstancePublished:
		return "InstancePublished"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Package is everything a run publishes: the zomes, the template name, and
// the compiled DNA's identity.
type Package struct {
	Name  string
	Zomes []model.ZomeWithCode
	// DnaHash is the deterministic hash of the compiled DNA.
	DnaHash    model.ContentHash
	UUID       string
	Properties []byte
}

// Result holds the hashes a successful run produced.
type Result struct {
	RunID        string
	Zomes        []model.ZomeReference
	TemplateHash model.ContentHash
	DnaHash      model.ContentHash
}

// Pipeline runs one publish: zomes, then template, then instance.
//
// A pipeline is single-use. Once it reaches StateInstancePublished or
// StateFailed it stays there; the error that failed it is kept in Err.
type Pipeline struct {
	publisher *Publisher
	// Deadline bounds the whole run when non-zero.
	Deadline time.Duration

	mu    sync.Mutex
	state State
	err   error
}

func NewPipeline(publisher *Publisher, deadline time.Duration) *Pipeline {
	return &Pipeline{publisher: publisher, Deadline: deadline}
}

func (pl *Pipeline) State() State {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.state
}

// Err returns the error that moved the pipeline to StateFailed, if any.
func (pl *Pipeline) Err() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.err
}

func (pl *Pipeline) transition(to State) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.state = to
}

func (pl *Pipeline) fail(err error) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.state = StateFailed
	pl.err = err
	return err
}

// Run publishes pkg. Local validation happens before any zome call.
func (pl *Pipeline) Run(ctx context.Context, pkg Package) (*Result, error) {
	pl.mu.Lock()
	if pl.state != StateIdle {
		state := pl.state
		pl.mu.Unlock()
		return nil, model.ValidationError("pipeline already ran (state %s)", state)
	}
	pl.state = StateUnitsPublishing
	pl.mu.Unlock()

	if pl.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pl.Deadline)
		defer cancel()
	}

	runID := uuid.NewString()
	log := pl.publisher.log.With("run_id", runID, "dna", pkg.Name)

	if err := validateTemplate(pkg.Name, pkg.Zomes); err != nil {
		return nil, pl.fail(err)
	}
	if pkg.DnaHash == "" {
		return nil, pl.fail(model.ValidationError("dna %q has no deterministic hash", pkg.Name))
	}

	log.Info("publishing zomes", "count", len(pkg.Zomes), "cell", pl.publisher.Cell().String())
	refs, err := pl.publisher.PublishZomes(ctx, pkg.Zomes)
	if err != nil {
		log.Error("publish failed", "state", StateUnitsPublishing.String(), "error", err)
		return nil, pl.fail(err)
	}

	templateHash, err := pl.publisher.PublishDnaTemplate(ctx, model.DnaTemplate{Name: pkg.Name, ZomeDefs: refs})
	if err != nil {
		log.Error("publish failed", "state", StateUnitsPublishing.String(), "error", err)
		return nil, pl.fail(err)
	}
	pl.transition(StateTemplatePublished)

	if err := pl.publisher.PublishInstance(ctx, templateHash, pkg.DnaHash, pkg.UUID, pkg.Properties); err != nil {
		log.Error("publish failed", "state", StateTemplatePublished.String(), "error", err)
		return nil, pl.fail(err)
	}
	pl.transition(StateInstancePublished)

	return &Result{RunID: runID, Zomes: refs, TemplateHash: templateHash, DnaHash: pkg.DnaHash}, nil
}
