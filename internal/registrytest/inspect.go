package registrytest

import (
	"context"
	"errors"

	"xdao.co/compository/conductor"
	"xdao.co/compository/model"
)

// Calls returns every zome call received, in arrival order.
func (r *Registry) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Procedures returns the procedure names of Calls.
func (r *Registry) Procedures() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Procedure
	}
	return out
}

// Count returns how many calls to procedure were received.
func (r *Registry) Count(procedure string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Procedure == procedure {
			n++
		}
	}
	return n
}

func (r *Registry) File(hash string) (model.FileMetadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[hash]
	return f, ok
}

// FileContent reassembles a stored file from its chunks.
func (r *Registry) FileContent(hash string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reassemble(hash)
}

func (r *Registry) Zome(hash string) (model.ZomeToPublish, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.zomes[hash]
	return z, ok
}

func (r *Registry) Template(hash string) (model.DnaTemplate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[hash]
	return t, ok
}

func (r *Registry) Instances() []model.PublishInstantiatedDnaInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PublishInstantiatedDnaInput(nil), r.instances...)
}

// Direct returns a caller that invokes the registry in-process, mapping
// remote failures the way the gRPC client does.
func (r *Registry) Direct() DirectCaller {
	return DirectCaller{r: r}
}

type DirectCaller struct{ r *Registry }

func (d DirectCaller) CallZome(ctx context.Context, call conductor.ZomeCall) ([]byte, error) {
	out, err := d.r.CallZome(ctx, call)
	var rf *conductor.RemoteFailure
	if errors.As(err, &rf) {
		return nil, model.RemoteError(call.Procedure(), rf.Error())
	}
	return out, err
}
