package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/compository/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8888", cfg.URL)
	assert.Equal(t, ".", cfg.WorkDir)
	assert.Equal(t, 10*1024*1024, cfg.Upload.ChunkSize)
	assert.Equal(t, 1, cfg.Upload.UploadConcurrency)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Dial)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "ed25519", cfg.Signing.Algorithm)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compository.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: ws://conductor:9000
installed_app_id: from-file
compository_dna_hash: uhC0kfile
upload:
  chunk_size: 4096
  concurrency: 4
timeout:
  deadline: 5m
log:
  format: json
`), 0o644))
	t.Setenv("COMPOSITORY_INSTALLED_APP_ID", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://conductor:9000", cfg.URL)
	assert.Equal(t, "from-env", cfg.InstalledAppID)
	assert.Equal(t, "uhC0kfile", cfg.CompositoryDnaHash)
	assert.Equal(t, 4096, cfg.Upload.ChunkSize)
	assert.Equal(t, 4, cfg.Upload.UploadConcurrency)
	assert.Equal(t, 5*time.Minute, cfg.Timeout.Deadline)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, model.IsKind(err, model.KindValidation), "got %v", err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.InstalledAppID = "app"
		cfg.CompositoryDnaHash = "uhC0k"
		return cfg
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"no app id":         func(c *Config) { c.InstalledAppID = "" },
		"no dna hash":       func(c *Config) { c.CompositoryDnaHash = "" },
		"no url":            func(c *Config) { c.URL = " " },
		"zero chunk":        func(c *Config) { c.Upload.ChunkSize = 0 },
		"zero concurrency":  func(c *Config) { c.Upload.ZomeConcurrency = 0 },
		"negative deadline": func(c *Config) { c.Timeout.Deadline = -time.Second },
		"tiny messages":     func(c *Config) { c.MaxMsgBytes = 1024 },
		"bad algorithm":     func(c *Config) { c.Signing.Algorithm = "rsa" },
		"bad log format":    func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.True(t, model.IsKind(cfg.Validate(), model.KindValidation))
		})
	}
}
