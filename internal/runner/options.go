package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/hurlbench/hurlbench/internal/metrics"
	"github.com/hurlbench/hurlbench/internal/transport"
)

// Transport abstracts executing a single request exchange.
// Implementations should return an error only for transport-level failures.
type Transport interface {
	Perform(ctx context.Context, desc *transport.Descriptor) error
}

// Options configure the Runner.
type Options struct {
	// Parallelism is the number of worker goroutines.
	Parallelism int

	// Duration is the measurement window. Required.
	Duration time.Duration

	// Descriptor is the request every worker repeats. Required.
	Descriptor *transport.Descriptor

	// NewTransport builds one transport per worker. Required.
	NewTransport func() Transport

	// Aggregator receives every latency sample. Required.
	Aggregator metrics.Aggregator

	// ResultBuffer is the result channel capacity. Zero picks a default.
	ResultBuffer int
}

// Each worker has at most one result in flight, but a generous buffer keeps
// senders off the scheduler when the collector briefly falls behind.
const defaultBufferPerWorker = 64

func (o *Options) normalize() {
	if o.Parallelism <= 0 {
		o.Parallelism = 1
	}
	if o.ResultBuffer <= 0 {
		o.ResultBuffer = o.Parallelism * defaultBufferPerWorker
	}
}

func (o *Options) validate() error {
	if o.Descriptor == nil {
		return fmt.Errorf("runner: descriptor is required")
	}
	if o.NewTransport == nil {
		return fmt.Errorf("runner: transport factory is required")
	}
	if o.Aggregator == nil {
		return fmt.Errorf("runner: aggregator is required")
	}
	if o.Duration <= 0 {
		return fmt.Errorf("runner: duration must be positive, got %v", o.Duration)
	}
	return nil
}
