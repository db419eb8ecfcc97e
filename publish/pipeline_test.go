package publish_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/compository/codec"
	"xdao.co/compository/conductor"
	"xdao.co/compository/internal/registrytest"
	"xdao.co/compository/model"
	"xdao.co/compository/publish"
)

func scenarioPackage() publish.Package {
	return publish.Package{
		Name: "P",
		Zomes: []model.ZomeWithCode{
			zomeNamed("A", 25*mib, nil),
			zomeNamed("B", 5*1024, []byte("bundle of B")),
		},
		DnaHash:    "bafyreidnahash",
		UUID:       "0d9a2c4e-5b8f-4c1e-9f3a-7e6d5c4b3a21",
		Properties: []byte{0xa0},
	}
}

func TestPipeline_Scenario(t *testing.T) {
	reg := registrytest.New()
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{}), 0)
	assert.Equal(t, publish.StateIdle, pl.State())

	res, err := pl.Run(context.Background(), scenarioPackage())
	require.NoError(t, err)
	assert.Equal(t, publish.StateInstancePublished, pl.State())
	assert.NoError(t, pl.Err())
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, 5, reg.Count("file_storage/create_file_chunk"))
	assert.Equal(t, 3, reg.Count("file_storage/create_file_metadata"))
	assert.Equal(t, 2, reg.Count("compository/publish_zome"))
	assert.Equal(t, 1, reg.Count("compository/publish_dna_template"))
	assert.Equal(t, 1, reg.Count("compository/publish_instantiated_dna"))

	tmpl, ok := reg.Template(res.TemplateHash)
	require.True(t, ok)
	assert.Equal(t, "P", tmpl.Name)
	require.Len(t, tmpl.ZomeDefs, 2)
	assert.Equal(t, "A", tmpl.ZomeDefs[0].Name)
	assert.Equal(t, "B", tmpl.ZomeDefs[1].Name)
	assert.Equal(t, res.Zomes, tmpl.ZomeDefs)

	a, ok := reg.Zome(tmpl.ZomeDefs[0].ZomeDefHash)
	require.True(t, ok)
	meta, ok := reg.File(a.WasmFile)
	require.True(t, ok)
	assert.Equal(t, 25*mib, meta.Size)
	assert.Len(t, meta.ChunksHashes, 3)

	instances := reg.Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, res.TemplateHash, instances[0].DnaTemplateHash)
	assert.Equal(t, "bafyreidnahash", instances[0].InstantiatedDnaHash)
	assert.Equal(t, "0d9a2c4e-5b8f-4c1e-9f3a-7e6d5c4b3a21", instances[0].UUID)
}

func TestPipeline_CallsFollowDependencyOrder(t *testing.T) {
	reg := registrytest.New()
	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 300, nil)
	pkg.Zomes[1] = zomeNamed("B", 100, []byte("bundle of B"))
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{ChunkSize: 128}), 0)

	_, err := pl.Run(context.Background(), pkg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"file_storage/create_file_chunk",
		"file_storage/create_file_chunk",
		"file_storage/create_file_chunk",
		"file_storage/create_file_metadata",
		"compository/publish_zome",
		"file_storage/create_file_chunk",
		"file_storage/create_file_metadata",
		"file_storage/create_file_chunk",
		"file_storage/create_file_metadata",
		"compository/publish_zome",
		"compository/publish_dna_template",
		"compository/publish_instantiated_dna",
	}, reg.Procedures())
}

func TestPipeline_ZomeFailureSkipsTemplate(t *testing.T) {
	reg := registrytest.New()
	reg.FailOn("compository/publish_zome", func(payload []byte) bool {
		var z model.ZomeToPublish
		return codec.Unmarshal(payload, &z) == nil && z.Name == "B"
	}, "invalid entry defs")
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{ChunkSize: mib}), 0)

	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 1024, nil)
	_, err := pl.Run(context.Background(), pkg)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindRemote), "got %v", err)
	assert.Contains(t, err.Error(), `"B"`)
	assert.Contains(t, err.Error(), "invalid entry defs")

	assert.Equal(t, publish.StateFailed, pl.State())
	assert.Equal(t, err, pl.Err())
	assert.Equal(t, 0, reg.Count("compository/publish_dna_template"))
	assert.Equal(t, 0, reg.Count("compository/publish_instantiated_dna"))
}

func TestPipeline_InstanceFailureAfterTemplate(t *testing.T) {
	reg := registrytest.New()
	reg.FailOn("compository/publish_instantiated_dna", nil, "already instantiated")
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{}), 0)

	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 64, nil)
	_, err := pl.Run(context.Background(), pkg)
	require.Error(t, err)
	assert.Equal(t, publish.StateFailed, pl.State())
	assert.Equal(t, 1, reg.Count("compository/publish_dna_template"))
}

func TestPipeline_ValidationFailsBeforeAnyCall(t *testing.T) {
	reg := registrytest.New()
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{}), 0)

	pkg := scenarioPackage()
	pkg.DnaHash = ""
	_, err := pl.Run(context.Background(), pkg)
	assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
	assert.Equal(t, publish.StateFailed, pl.State())
	assert.Empty(t, reg.Calls())
}

func TestPipeline_IsSingleUse(t *testing.T) {
	reg := registrytest.New()
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{}), 0)
	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 64, nil)

	_, err := pl.Run(context.Background(), pkg)
	require.NoError(t, err)
	before := len(reg.Calls())

	_, err = pl.Run(context.Background(), pkg)
	assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
	assert.Equal(t, publish.StateInstancePublished, pl.State())
	assert.Len(t, reg.Calls(), before)
}

func TestPipeline_DeadlineCancelsRun(t *testing.T) {
	reg := registrytest.New()
	reg.Hook = func(conductor.ZomeCall) { time.Sleep(30 * time.Millisecond) }
	pl := publish.NewPipeline(newPublisher(reg, publish.Options{ChunkSize: 16}), 50*time.Millisecond)

	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 256, nil)
	_, err := pl.Run(context.Background(), pkg)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, publish.StateFailed, pl.State())
	assert.Equal(t, 0, reg.Count("compository/publish_dna_template"))
}

func TestPipeline_OverGRPC(t *testing.T) {
	reg := registrytest.New()
	client := registrytest.Serve(t, reg, nil)

	cell, err := client.ResolveCell(context.Background(), reg.AppID, reg.Cell.DnaHash)
	require.NoError(t, err)

	rep := &recordingReporter{}
	pub := publish.NewPublisher(client, cell, publish.Options{
		ChunkSize:         4096,
		UploadConcurrency: 3,
		ZomeConcurrency:   2,
		Reporter:          rep,
	})
	pkg := scenarioPackage()
	pkg.Zomes[0] = zomeNamed("A", 10_000, nil)

	res, err := publish.NewPipeline(pub, 10*time.Second).Run(context.Background(), pkg)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, []string{res.Zomes[0].Name, res.Zomes[1].Name})
	// A: 3 wasm chunks. B: 2 wasm chunks and 1 bundle chunk.
	assert.Equal(t, 6, reg.Count("file_storage/create_file_chunk"))
	assert.Contains(t, rep.events, "template P")
	assert.Equal(t, "instance", rep.events[len(rep.events)-1])
}
