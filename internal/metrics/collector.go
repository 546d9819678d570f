package metrics

import (
	"sort"
	"sync"
	"time"
)

// Collector is the exact aggregator: it retains every sample and computes
// percentiles as true order statistics. Memory grows linearly with the
// sample count, which is acceptable for bounded-duration runs.
type Collector struct {
	mu      sync.Mutex
	samples []time.Duration
	min     time.Duration
	max     time.Duration
}

// NewCollector creates an empty exact aggregator.
func NewCollector() *Collector {
	return &Collector{}
}

// Track records a single latency sample.
func (c *Collector) Track(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.samples) == 0 || latency < c.min {
		c.min = latency
	}
	if latency > c.max {
		c.max = latency
	}
	c.samples = append(c.samples, latency)
}

// Count returns the number of samples recorded so far.
func (c *Collector) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.samples))
}

// Min returns the smallest sample. ok is false when no samples exist.
func (c *Collector) Min() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.samples) == 0 {
		return 0, false
	}
	return c.min, true
}

// Max returns the largest sample. ok is false when no samples exist.
func (c *Collector) Max() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.samples) == 0 {
		return 0, false
	}
	return c.max, true
}

// Percentile returns the exact p-th percentile as an order statistic over
// all recorded samples. The index is clamped so any p in [0,100] maps to a
// real sample; ok is false only when no samples exist.
func (c *Collector) Percentile(p float64) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.samples) == 0 {
		return 0, false
	}
	sorted := c.sortedLocked()
	return percentileOf(sorted, p), true
}

// Summary computes all statistics from one consistent snapshot, so the
// percentiles within it are mutually coherent even while writers are active.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{Count: int64(len(c.samples))}
	if len(c.samples) == 0 {
		return s
	}

	sorted := c.sortedLocked()
	s.Min = c.min
	s.Max = c.max
	s.P50 = percentileOf(sorted, 50)
	s.P95 = percentileOf(sorted, 95)
	s.P99 = percentileOf(sorted, 99)
	s.P999 = percentileOf(sorted, 99.9)
	s.fillSeconds()
	return s
}

// sortedLocked returns an ascending copy of the samples. Callers must hold
// the mutex.
func (c *Collector) sortedLocked() []time.Duration {
	sorted := append([]time.Duration(nil), c.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// percentileOf selects the p-th percentile from an ascending slice by
// counting in from the top. The index is clamped to the slice bounds, so
// p=100 yields the maximum and p=0 the minimum even for tiny sample sets.
func percentileOf(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	fromTop := int(float64(n) * (1 - p/100))
	idx := n - fromTop - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
