package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hurlbench/hurlbench/internal/metrics"
)

// Report is the end-of-run result set.
type Report struct {
	Summary        metrics.Summary `json:"summary"`
	Elapsed        time.Duration   `json:"-"`
	ElapsedSeconds float64         `json:"elapsed_s"`
	RequestsPerSec float64         `json:"requests_per_sec"`
}

// NewReport assembles a report from a final summary and the measured run
// length.
func NewReport(summary metrics.Summary, elapsed time.Duration) Report {
	r := Report{
		Summary:        summary,
		Elapsed:        elapsed,
		ElapsedSeconds: elapsed.Seconds(),
	}
	if elapsed > 0 {
		r.RequestsPerSec = float64(summary.Count) / elapsed.Seconds()
	}
	return r
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Requests:          %d\n", r.Summary.Count)
	fmt.Fprintf(w, "Duration:          %.1fs\n", r.Elapsed.Seconds())
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", r.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %.4fs\n", r.Summary.Min.Seconds())
	fmt.Fprintf(w, "  Max:             %.4fs\n", r.Summary.Max.Seconds())
	fmt.Fprintf(w, "  P50:             %.4fs\n", r.Summary.P50.Seconds())
	fmt.Fprintf(w, "  P95:             %.4fs\n", r.Summary.P95.Seconds())
	fmt.Fprintf(w, "  P99:             %.4fs\n", r.Summary.P99.Seconds())
	fmt.Fprintf(w, "  P99.9:           %.4fs\n", r.Summary.P999.Seconds())
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
