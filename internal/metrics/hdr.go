package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Estimator is the streaming aggregator: it records samples into an HDR
// histogram at microsecond resolution instead of retaining them, trading
// exactness for constant memory. Percentiles are accurate to 3 significant
// figures.
type Estimator struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
	min  time.Duration
	max  time.Duration
}

// NewEstimator creates a streaming aggregator tracking latencies from 1µs
// up to 60s.
func NewEstimator() *Estimator {
	return &Estimator{
		hist: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Track records a single latency sample.
func (e *Estimator) Track(latency time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hist.TotalCount() == 0 || latency < e.min {
		e.min = latency
	}
	if latency > e.max {
		e.max = latency
	}

	us := latency.Microseconds()
	if us < e.hist.LowestTrackableValue() {
		us = e.hist.LowestTrackableValue()
	}
	if us > e.hist.HighestTrackableValue() {
		us = e.hist.HighestTrackableValue()
	}
	_ = e.hist.RecordValue(us)
}

// Count returns the number of samples recorded so far.
func (e *Estimator) Count() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.TotalCount()
}

// Summary computes a consistent snapshot. Min and Max are exact; the
// percentiles come from the histogram.
func (e *Estimator) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Summary{Count: e.hist.TotalCount()}
	if s.Count == 0 {
		return s
	}

	s.Min = e.min
	s.Max = e.max
	s.P50 = time.Duration(e.hist.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(e.hist.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(e.hist.ValueAtQuantile(99)) * time.Microsecond
	s.P999 = time.Duration(e.hist.ValueAtQuantile(99.9)) * time.Microsecond
	s.fillSeconds()
	return s
}
