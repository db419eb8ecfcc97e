// Package config loads publisher settings from an optional YAML file and
// COMPOSITORY_* environment variables. Command-line flags are applied on top
// by the CLI.
package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"xdao.co/compository/keys"
	"xdao.co/compository/model"
)

type Config struct {
	URL                string `yaml:"url" env:"COMPOSITORY_URL" env-default:"ws://localhost:8888"`
	InstalledAppID     string `yaml:"installed_app_id" env:"COMPOSITORY_INSTALLED_APP_ID"`
	CompositoryDnaHash string `yaml:"compository_dna_hash" env:"COMPOSITORY_DNA_HASH"`
	WorkDir            string `yaml:"work_dir" env:"COMPOSITORY_WORKDIR" env-default:"."`

	Upload  UploadConfig  `yaml:"upload"`
	Timeout TimeoutConfig `yaml:"timeout"`
	Log     LogConfig     `yaml:"log"`
	Signing SigningConfig `yaml:"signing"`

	// MaxMsgBytes caps gRPC messages in both directions. Zero uses the
	// conductor client's default.
	MaxMsgBytes int `yaml:"max_msg_bytes" env:"COMPOSITORY_MAX_MSG_BYTES"`

	// LedgerDir enables resumable publishing when set.
	LedgerDir string `yaml:"ledger_dir" env:"COMPOSITORY_LEDGER_DIR"`
}

type UploadConfig struct {
	ChunkSize         int `yaml:"chunk_size" env:"COMPOSITORY_CHUNK_SIZE" env-default:"10485760"`
	UploadConcurrency int `yaml:"concurrency" env:"COMPOSITORY_UPLOAD_CONCURRENCY" env-default:"1"`
	ZomeConcurrency   int `yaml:"zome_concurrency" env:"COMPOSITORY_ZOME_CONCURRENCY" env-default:"1"`
}

type TimeoutConfig struct {
	Dial     time.Duration `yaml:"dial" env:"COMPOSITORY_DIAL_TIMEOUT" env-default:"10s"`
	Call     time.Duration `yaml:"call" env:"COMPOSITORY_CALL_TIMEOUT" env-default:"2m"`
	Deadline time.Duration `yaml:"deadline" env:"COMPOSITORY_DEADLINE"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"COMPOSITORY_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"COMPOSITORY_LOG_FORMAT" env-default:"text"`
}

type SigningConfig struct {
	KeyFile   string `yaml:"key_file" env:"COMPOSITORY_SIGNING_KEY_FILE"`
	Algorithm string `yaml:"algorithm" env:"COMPOSITORY_SIGNING_ALGORITHM" env-default:"ed25519"`
}

// Load reads path (when non-empty) and then the environment. Environment
// variables override the file.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, model.ValidationError("config: %v", err)
	}
	return &cfg, nil
}

// Validate checks the settings a publish run needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return model.ValidationError("conductor url is required")
	}
	if c.InstalledAppID == "" {
		return model.ValidationError("installed app id is required")
	}
	if c.CompositoryDnaHash == "" {
		return model.ValidationError("compository dna hash is required")
	}
	if c.WorkDir == "" {
		return model.ValidationError("work dir is required")
	}
	if c.Upload.ChunkSize <= 0 {
		return model.ValidationError("chunk size must be positive, got %d", c.Upload.ChunkSize)
	}
	if c.Upload.UploadConcurrency < 1 || c.Upload.ZomeConcurrency < 1 {
		return model.ValidationError("concurrency must be at least 1")
	}
	if c.Timeout.Dial < 0 || c.Timeout.Call < 0 || c.Timeout.Deadline < 0 {
		return model.ValidationError("timeouts must not be negative")
	}
	if c.MaxMsgBytes != 0 && c.MaxMsgBytes < c.Upload.ChunkSize {
		return model.ValidationError("max message size %d is smaller than chunk size %d", c.MaxMsgBytes, c.Upload.ChunkSize)
	}
	switch c.Signing.Algorithm {
	case "", keys.AlgEd25519, keys.AlgDilithium3:
	default:
		return model.ValidationError("unsupported signing algorithm %q", c.Signing.Algorithm)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return model.ValidationError("unsupported log format %q", c.Log.Format)
	}
	return nil
}
