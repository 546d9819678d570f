// Package runner drives a fixed-size worker pool against one request
// descriptor for a fixed time window and funnels latency samples into an
// aggregator.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hurlbench/hurlbench/internal/transport"
)

// Phase tracks the runner through its lifecycle. Phases only move forward.
type Phase int32

const (
	PhaseConfiguring Phase = iota
	PhaseStarting
	PhaseCollecting
	PhaseDraining
	PhaseReporting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseStarting:
		return "starting"
	case PhaseCollecting:
		return "collecting"
	case PhaseDraining:
		return "draining"
	case PhaseReporting:
		return "reporting"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Result captures the outcome of a run.
type Result struct {
	Samples int64
	Elapsed time.Duration
}

// sample is one worker-to-collector message.
type sample struct {
	latency time.Duration
	err     error
}

// Runner owns the worker pool and the collect/drain loop.
type Runner struct {
	opt   Options
	phase atomic.Int32
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Phase returns the runner's current lifecycle phase.
func (r *Runner) Phase() Phase {
	return Phase(r.phase.Load())
}

func (r *Runner) setPhase(p Phase) {
	r.phase.Store(int32(p))
}

// Run executes the measurement window: it spawns the workers, collects
// samples until the window elapses, then cancels the pool and drains it.
// The first transport failure aborts the run with that error; cancellation
// of ctx stops the run early with the context's error. Samples recorded
// before an abort stay in the aggregator.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.opt.validate(); err != nil {
		return Result{}, err
	}
	r.setPhase(PhaseStarting)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan sample, r.opt.ResultBuffer)
	trap := newPanicTrap()

	var wg sync.WaitGroup
	wg.Add(r.opt.Parallelism)
	for i := 0; i < r.opt.Parallelism; i++ {
		// Each worker gets its own descriptor copy and its own transport;
		// no connection state is shared across workers.
		desc := r.opt.Descriptor.Clone()
		t := r.opt.NewTransport()
		go func() {
			defer wg.Done()
			r.work(ctx, t, desc, results, trap)
		}()
	}

	start := time.Now()
	r.setPhase(PhaseCollecting)

	timer := time.NewTimer(r.opt.Duration)
	defer timer.Stop()

	var runErr error
collect:
	for {
		select {
		case <-timer.C:
			break collect
		case <-ctx.Done():
			runErr = ctx.Err()
			break collect
		case <-trap.sig:
			runErr = trap.err
			break collect
		case s := <-results:
			if s.err != nil {
				runErr = s.err
				break collect
			}
			r.opt.Aggregator.Track(s.latency)
		}
	}

	r.setPhase(PhaseDraining)
	cancel()

	// Keep draining the channel while waiting so no worker blocks on send.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-results:
			// Discarded: the window is over, late samples do not count.
		case <-done:
			// All workers have joined; a panic raised at any point, the
			// drain window included, is fatal.
			if perr := trap.error(); perr != nil && runErr == nil {
				runErr = perr
			}
			r.setPhase(PhaseReporting)
			return Result{
				Samples: r.opt.Aggregator.Count(),
				Elapsed: time.Since(start),
			}, runErr
		}
	}
}

// Finish marks the run fully reported. Callers invoke it after rendering the
// final summary.
func (r *Runner) Finish() {
	r.setPhase(PhaseDone)
}

// work is one worker's loop: perform, time, send, repeat until cancelled.
func (r *Runner) work(ctx context.Context, t Transport, desc *transport.Descriptor, results chan<- sample, trap *panicTrap) {
	defer func() {
		if rec := recover(); rec != nil {
			trap.record(fmt.Errorf("worker panic: %v", rec))
		}
	}()

	for ctx.Err() == nil {
		begin := time.Now()
		err := t.Perform(ctx, desc)
		s := sample{latency: time.Since(begin), err: err}

		if err != nil && ctx.Err() != nil {
			// The exchange failed because the run is shutting down.
			return
		}
		// A failed attempt is reported once and the loop moves on; aborting
		// the run is the collector's decision, signalled back via ctx.
		select {
		case results <- s:
		case <-ctx.Done():
			return
		}
	}
}

// panicTrap keeps the first worker panic. Panic samples must not travel the
// results channel, where the drain loop would discard them; the trap stays
// readable after every worker has joined.
type panicTrap struct {
	once sync.Once
	err  error
	sig  chan struct{}
}

func newPanicTrap() *panicTrap {
	return &panicTrap{sig: make(chan struct{})}
}

func (p *panicTrap) record(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.sig)
	})
}

// error returns the recorded panic, or nil if none was raised.
func (p *panicTrap) error() error {
	select {
	case <-p.sig:
		return p.err
	default:
		return nil
	}
}
