// Package printer writes the publisher's user-facing progress lines.
package printer

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"xdao.co/compository/model"
	"xdao.co/compository/publish"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
)

// Printer prints progress to out and errors to errOut. It implements
// publish.Reporter and is safe for concurrent use.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

var _ publish.Reporter = (*Printer)(nil)

func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// Success prints a green line with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func (p *Printer) Info(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", a...)
}

// Step prints an emphasized line for the start of a stage.
func (p *Printer) Step(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cyan.Fprintf(p.out, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints title in red followed by the explanation and suggestions, and
// returns an error carrying only the title.
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	red.Fprintf(p.errOut, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(p.errOut, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.errOut)
		if len(suggestions) == 1 {
			fmt.Fprintf(p.errOut, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.errOut, "Either:\n")
			for i, s := range suggestions {
				fmt.Fprintf(p.errOut, "  %d. %s\n", i+1, s)
			}
		}
	}
	return fmt.Errorf("%s", title)
}

func (p *Printer) FileUploaded(name, fileType string, hash model.ContentHash) {
	if fileType == publish.BundleFileType {
		p.Info("Uploaded UI bundle with hash %s", hash)
		return
	}
	p.Info("Uploaded %s file with hash %s", fileType, hash)
}

func (p *Printer) ZomePublished(name string, hash model.ContentHash) {
	p.Success("Published zome %s with hash %s", name, hash)
}

func (p *Printer) TemplatePublished(name string, hash model.ContentHash) {
	p.Success("Published template dna with hash %s", hash)
}

func (p *Printer) InstancePublished(dnaHash model.ContentHash) {
	p.Success("Published instantiated dna with hash %s", dnaHash)
}
