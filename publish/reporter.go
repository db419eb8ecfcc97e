package publish

import "xdao.co/compository/model"

// Reporter receives a marker after each completed step. Implementations
// must be safe for concurrent use when any concurrency option exceeds 1.
type Reporter interface {
	FileUploaded(name, fileType string, hash model.ContentHash)
	ZomePublished(name string, hash model.ContentHash)
	TemplatePublished(name string, hash model.ContentHash)
	InstancePublished(dnaHash model.ContentHash)
}

type NopReporter struct{}

func (NopReporter) FileUploaded(string, string, model.ContentHash) {}
func (NopReporter) ZomePublished(string, model.ContentHash)        {}
func (NopReporter) TemplatePublished(string, model.ContentHash)    {}
func (NopReporter) InstancePublished(model.ContentHash)            {}
