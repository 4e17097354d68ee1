package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.DataDir != "data" || cfg.Locale != "de" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadBackendSelection(t *testing.T) {
	t.Setenv("SPENDLOG_BACKEND", "memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q", cfg.Backend)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SPENDLOG_BACKEND", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadGCSRequiresBucket(t *testing.T) {
	t.Setenv("SPENDLOG_BACKEND", "gcs")
	t.Setenv("SPENDLOG_GCS_BUCKET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for gcs backend without bucket")
	}

	t.Setenv("SPENDLOG_GCS_BUCKET", "spendlog-prod")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if cfg.GCSBucket != "spendlog-prod" {
		t.Errorf("GCSBucket = %q", cfg.GCSBucket)
	}
}
