// Package output renders live progress lines and the end-of-run report.
package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/hurlbench/hurlbench/internal/metrics"
)

// ProgressReporter prints a live status line once per interval, overwriting
// the previous one with a carriage return.
type ProgressReporter struct {
	agg      metrics.Aggregator
	window   time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time

	// throughput over the previous tick
	prevCount int64
	prevTime  time.Time
}

// NewProgressReporter creates a reporter that samples the aggregator at the
// given interval. window is the configured run duration, used for the
// elapsed/total prefix.
func NewProgressReporter(agg metrics.Aggregator, window, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	now := time.Now()
	return &ProgressReporter{
		agg:      agg,
		window:   window,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    now,
		prevTime: now,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and waits for the last line to be written.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, "\r"+p.statusLine(time.Now()))
		case <-p.done:
			return
		}
	}
}

// statusLine renders one progress line: elapsed over total, throughput since
// the previous tick, then the latency summary.
func (p *ProgressReporter) statusLine(now time.Time) string {
	count := p.agg.Count()
	rps := 0.0
	if tick := now.Sub(p.prevTime).Seconds(); tick > 0 {
		rps = float64(count-p.prevCount) / tick
	}
	p.prevCount = count
	p.prevTime = now

	elapsed := now.Sub(p.start)
	if elapsed > p.window {
		elapsed = p.window
	}
	return fmt.Sprintf("(%.1f/%.1f) [%drps] %s",
		elapsed.Seconds(), p.window.Seconds(), int64(rps), p.agg.Summary())
}
