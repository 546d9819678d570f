package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load([]string{"request.hurl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FilePath != "request.hurl" {
		t.Errorf("expected filepath request.hurl, got %q", cfg.FilePath)
	}
	if cfg.Duration != 10*time.Second {
		t.Errorf("expected default duration 10s, got %s", cfg.Duration)
	}
	if cfg.Parallelism != 1 {
		t.Errorf("expected default parallelism 1, got %d", cfg.Parallelism)
	}
	if cfg.Estimator != EstimatorExact {
		t.Errorf("expected default estimator exact, got %q", cfg.Estimator)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.Timeout)
	}
}

func TestLoadFlags(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load([]string{"-d", "500m", "-p", "8", "--estimator", "hdr", "req.hurl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Duration != 500*time.Millisecond {
		t.Errorf("expected duration 500ms, got %s", cfg.Duration)
	}
	if cfg.Parallelism != 8 {
		t.Errorf("expected parallelism 8, got %d", cfg.Parallelism)
	}
	if cfg.Estimator != EstimatorHDR {
		t.Errorf("expected estimator hdr, got %q", cfg.Estimator)
	}
}

func TestLoadMissingFilepathIsUsageError(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load([]string{"-p", "4"})
	if err == nil {
		t.Fatal("expected error for missing filepath")
	}
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Errorf("expected UsageError, got %T: %v", err, err)
	}
}

func TestLoadBadWindowIsUsageError(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load([]string{"-d", "10x", "req.hurl"})
	if err == nil {
		t.Fatal("expected error for bad duration suffix")
	}
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Errorf("expected UsageError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrWindowUnknownSuffix) {
		t.Errorf("expected ErrWindowUnknownSuffix, got %v", err)
	}
}

func TestLoadHelp(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Errorf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadConfigFileAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := `
duration: 5s
parallelism: 16
estimator: hdr
tracing:
  endpoint: localhost:4317
  propagate: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "-p", "2", "req.hurl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Duration != 5*time.Second {
		t.Errorf("expected duration 5s from file, got %s", cfg.Duration)
	}
	// Flag beats file.
	if cfg.Parallelism != 2 {
		t.Errorf("expected parallelism 2 from flag, got %d", cfg.Parallelism)
	}
	if cfg.Estimator != EstimatorHDR {
		t.Errorf("expected estimator hdr from file, got %q", cfg.Estimator)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("expected tracing endpoint from file, got %q", cfg.Tracing.Endpoint)
	}
	if !cfg.Tracing.ShouldPropagate() {
		t.Error("expected tracing propagate from file")
	}
}
