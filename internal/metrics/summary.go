// Package metrics aggregates per-request latency samples in a thread-safe
// manner and computes order statistics over them.
package metrics

import (
	"fmt"
	"time"
)

// Aggregator accepts latency samples from concurrent writers and produces
// point-in-time summaries. Implementations must be safe for concurrent use.
type Aggregator interface {
	// Track records one sample.
	Track(latency time.Duration)
	// Count returns the number of samples recorded so far.
	Count() int64
	// Summary computes a consistent snapshot of the current statistics.
	Summary() Summary
}

// Summary is a point-in-time view of the aggregated statistics. All latency
// fields are zero when Count is zero.
type Summary struct {
	Count int64         `json:"count"`
	Min   time.Duration `json:"-"`
	Max   time.Duration `json:"-"`
	P50   time.Duration `json:"-"`
	P95   time.Duration `json:"-"`
	P99   time.Duration `json:"-"`
	P999  time.Duration `json:"-"`

	// JSON-friendly second fields.
	MinSeconds  float64 `json:"min_s"`
	MaxSeconds  float64 `json:"max_s"`
	P50Seconds  float64 `json:"p50_s"`
	P95Seconds  float64 `json:"p95_s"`
	P99Seconds  float64 `json:"p99_s"`
	P999Seconds float64 `json:"p999_s"`
}

func (s Summary) String() string {
	return fmt.Sprintf("max: %.4fs, min: %.4fs, p99.9: %.4fs, p99: %.4fs, p95: %.4fs, p50: %.4fs",
		s.Max.Seconds(), s.Min.Seconds(), s.P999.Seconds(), s.P99.Seconds(), s.P95.Seconds(), s.P50.Seconds())
}

func (s *Summary) fillSeconds() {
	s.MinSeconds = s.Min.Seconds()
	s.MaxSeconds = s.Max.Seconds()
	s.P50Seconds = s.P50.Seconds()
	s.P95Seconds = s.P95.Seconds()
	s.P99Seconds = s.P99.Seconds()
	s.P999Seconds = s.P999.Seconds()
}
