package dna

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/compository/cidutil"
	"xdao.co/compository/codec"
	"xdao.co/compository/model"
)

const descriptorJSON = `{
  // comments are allowed
  "name": "forum",
  "uuid": "6f2c1d9e-0b5a-4f7e-8a3c-2d1e0f9b8a7c",
  "properties": {"max_posts": 10},
  "zomes": {
    "posts": {"wasm_path": "target/posts.wasm", "ui_path": "ui/posts.js", "entry_defs": ["post"]},
    "comments": {"wasm_path": "target/comments.wasm"},
  },
}`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func forumDir(t *testing.T) string {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"dna.json":             descriptorJSON,
		"target/posts.wasm":    "\x00asm posts",
		"target/comments.wasm": "\x00asm comments",
		"ui/posts.js":          "customElements.define('posts', class {})",
	})
	return dir
}

func TestReadDescriptor_JSONWithComments(t *testing.T) {
	d, err := ReadDescriptor(forumDir(t))
	require.NoError(t, err)
	assert.Equal(t, "forum", d.Name)
	assert.False(t, d.GeneratedUUID)
	assert.Equal(t, "ui/posts.js", d.Zomes["posts"].UIPath)
	assert.Equal(t, []string{"post"}, d.Zomes["posts"].EntryDefs)
	assert.Equal(t, map[string]any{"max_posts": float64(10)}, d.Properties)
}

func TestReadDescriptor_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"dna.yaml": `
name: forum
zomes:
  posts:
    wasm_path: posts.wasm
    required_membrane_proof: true
`})
	d, err := ReadDescriptor(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dna.yaml"), d.Path)
	assert.True(t, d.Zomes["posts"].RequiredMembraneProof)
	assert.True(t, d.GeneratedUUID)
	_, err = uuid.Parse(d.UUID)
	assert.NoError(t, err)
}

func TestReadDescriptor_Invalid(t *testing.T) {
	cases := map[string]string{
		"no name":   `{"zomes": {"a": {"wasm_path": "a.wasm"}}}`,
		"no zomes":  `{"name": "x", "zomes": {}}`,
		"no wasm":   `{"name": "x", "zomes": {"a": {}}}`,
		"malformed": `{"name": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"dna.json": body})
			_, err := ReadDescriptor(dir)
			assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
		})
	}
}

func TestReadDescriptor_Missing(t *testing.T) {
	_, err := ReadDescriptor(t.TempDir())
	assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
}

func TestLoad_ZomesSortedWithCode(t *testing.T) {
	f, err := Load(forumDir(t))
	require.NoError(t, err)

	zomes := f.Zomes()
	require.Len(t, zomes, 2)
	assert.Equal(t, "comments", zomes[0].Name)
	assert.Nil(t, zomes[0].ComponentsBundle)
	assert.Equal(t, "posts", zomes[1].Name)
	assert.Equal(t, []byte("\x00asm posts"), zomes[1].WasmCode)
	assert.Equal(t, []byte("customElements.define('posts', class {})"), zomes[1].ComponentsBundle)
	assert.True(t, cidutil.Verify(zomes[1].WasmHash, zomes[1].WasmCode))

	var props map[string]any
	require.NoError(t, codec.Unmarshal(f.Def.Properties, &props))
	assert.EqualValues(t, 10, props["max_posts"])
}

func TestLoad_MissingWasm(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"dna.json": descriptorJSON})
	_, err := Load(dir)
	assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
	assert.Contains(t, err.Error(), "comments")
}

func TestHash_DeterministicAndSensitive(t *testing.T) {
	dir := forumDir(t)
	a, err := Load(dir)
	require.NoError(t, err)
	b, err := Load(dir)
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	writeFiles(t, dir, map[string]string{"target/posts.wasm": "\x00asm posts v2"})
	c, err := Load(dir)
	require.NoError(t, err)
	hc, err := c.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)

	encoded, err := codec.Marshal(a.Def)
	require.NoError(t, err)
	assert.True(t, cidutil.Verify(ha, encoded))
}

func TestPackage(t *testing.T) {
	f, err := Load(forumDir(t))
	require.NoError(t, err)

	pkg, err := f.Package()
	require.NoError(t, err)
	hash, err := f.Hash()
	require.NoError(t, err)
	assert.Equal(t, "forum", pkg.Name)
	assert.Equal(t, hash, pkg.DnaHash)
	assert.Equal(t, "6f2c1d9e-0b5a-4f7e-8a3c-2d1e0f9b8a7c", pkg.UUID)
	assert.Equal(t, f.Def.Properties, pkg.Properties)
	assert.Len(t, pkg.Zomes, 2)
}
