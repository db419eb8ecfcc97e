package printer

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		p, _, errOut := newTestPrinter(t)
		err := p.Error("Publish failed", "conductor unreachable", nil)
		require.Error(t, err)
		require.Equal(t, "Publish failed", err.Error())
		require.Contains(t, errOut.String(), "conductor unreachable")
	})

	t.Run("numbers multiple suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter(t)
		err := p.Error("Publish failed", "", []string{"Start the conductor", "Pass --url"})
		require.Equal(t, "Publish failed", err.Error())
		require.Contains(t, errOut.String(), "Either:\n  1. Start the conductor\n  2. Pass --url\n")
	})
}

func TestReporterLines(t *testing.T) {
	p, out, _ := newTestPrinter(t)
	p.FileUploaded("bundle", "js", "uhCEkbundle")
	p.ZomePublished("posts", "uhCEkzome")
	p.TemplatePublished("forum", "uhCEktemplate")
	p.InstancePublished("bafydna")

	require.Equal(t, "Uploaded UI bundle with hash uhCEkbundle\n"+
		"✓ Published zome posts with hash uhCEkzome\n"+
		"✓ Published template dna with hash uhCEktemplate\n"+
		"✓ Published instantiated dna with hash bafydna\n", out.String())
}

func TestConcurrentWrites(t *testing.T) {
	p, out, _ := newTestPrinter(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ZomePublished("z", "h")
		}()
	}
	wg.Wait()
	require.Equal(t, 20, bytes.Count(out.Bytes(), []byte("\n")))
}
