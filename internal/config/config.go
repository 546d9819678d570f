package config

import (
	"fmt"
	"strings"
	"time"
)

// Estimator selects the latency aggregation backend.
type Estimator string

const (
	// EstimatorExact stores every sample and answers percentile queries by
	// sorting a snapshot. Exact, unbounded memory.
	EstimatorExact Estimator = "exact"
	// EstimatorHDR records into an HDR histogram. Approximate, constant memory.
	EstimatorHDR Estimator = "hdr"
)

// Config holds a fully resolved benchmark run configuration.
type Config struct {
	FilePath    string
	Duration    time.Duration
	Parallelism int
	Timeout     time.Duration
	Estimator   Estimator
	JSONOutput  bool
	Dashboard   bool
	ConfigFile  string
	Tracing     TracingConfig
}

// TracingConfig controls the optional OpenTelemetry export of per-request spans.
type TracingConfig struct {
	Endpoint    string
	Protocol    string // "grpc" or "http"
	ServiceName string
	SampleRate  float64
	Insecure    bool
	// Propagate overrides header injection; nil defers to Enabled().
	Propagate *bool
}

// Enabled reports whether an exporter endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
// Defaults to on whenever tracing is enabled.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// ValidationError aggregates configuration issues.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.FilePath) == "" {
		issues = append(issues, "path to a request file is required")
	}
	if c.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Parallelism < 1 {
		issues = append(issues, "parallelism must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	switch c.Estimator {
	case EstimatorExact, EstimatorHDR:
	default:
		issues = append(issues, fmt.Sprintf("estimator must be %q or %q, got %q", EstimatorExact, EstimatorHDR, c.Estimator))
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// String renders the run parameters the way the binary echoes them on startup.
func (c Config) String() string {
	return fmt.Sprintf(
		"filepath: %s, duration_s: %.1f, parallelism: %d",
		c.FilePath,
		c.Duration.Seconds(),
		c.Parallelism,
	)
}
