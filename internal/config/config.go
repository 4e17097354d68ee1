// Package config loads the process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Backend names accepted in SPENDLOG_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendGCS    = "gcs"
)

// Config holds everything the CLI needs to pick a blob backend and reach the
// warehouse. All fields come from environment variables.
type Config struct {
	// Backend selects the blob store: memory, file or gcs.
	// Environment variable: SPENDLOG_BACKEND
	Backend string `koanf:"SPENDLOG_BACKEND"`

	// DataDir is the directory used by the file backend.
	// Environment variable: SPENDLOG_DATA_DIR
	DataDir string `koanf:"SPENDLOG_DATA_DIR"`

	// GCSBucket and GCSPrefix locate the objects used by the gcs backend.
	GCSBucket string `koanf:"SPENDLOG_GCS_BUCKET"`
	GCSPrefix string `koanf:"SPENDLOG_GCS_PREFIX"`

	// BigQuery warehouse coordinates for the archive sync.
	BQProject string `koanf:"SPENDLOG_BQ_PROJECT"`
	BQDataset string `koanf:"SPENDLOG_BQ_DATASET"`
	BQTable   string `koanf:"SPENDLOG_BQ_TABLE"`

	// CredentialsFile optionally points at a service account key used for
	// both GCS and BigQuery. Empty means ambient credentials.
	CredentialsFile string `koanf:"SPENDLOG_CREDENTIALS_FILE"`

	// Locale is the BCP 47 tag used for category collation.
	// Environment variable: SPENDLOG_LOCALE
	Locale string `koanf:"SPENDLOG_LOCALE"`
}

// Load reads the environment and applies defaults.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("Load: reading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("Load: unmarshaling config: %w", err)
	}
	cfg.applyDefaults()

	switch cfg.Backend {
	case BackendMemory, BackendFile:
	case BackendGCS:
		if cfg.GCSBucket == "" {
			return Config{}, fmt.Errorf("Load: SPENDLOG_GCS_BUCKET is required for the gcs backend")
		}
	default:
		return Config{}, fmt.Errorf("Load: unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.BQDataset == "" {
		c.BQDataset = "spendlog"
	}
	if c.BQTable == "" {
		c.BQTable = "archive"
	}
	if c.Locale == "" {
		c.Locale = "de"
	}
}
