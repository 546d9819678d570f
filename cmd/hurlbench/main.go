package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hurlbench/hurlbench/internal/config"
	"github.com/hurlbench/hurlbench/internal/dashboard"
	"github.com/hurlbench/hurlbench/internal/hurl"
	"github.com/hurlbench/hurlbench/internal/metrics"
	"github.com/hurlbench/hurlbench/internal/output"
	"github.com/hurlbench/hurlbench/internal/runner"
	"github.com/hurlbench/hurlbench/internal/tracing"
	"github.com/hurlbench/hurlbench/internal/transport"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			config.DisplayUsage(os.Stderr)
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Run parameters and the live status line go to stderr; stdout stays
	// clean for the JSON report.
	fmt.Fprintf(os.Stderr, "%s\n", cfg)

	file, err := hurl.ParseFile(cfg.FilePath)
	if err != nil {
		return err
	}
	desc, err := transport.FromFile(file)
	if err != nil {
		if errors.Is(err, hurl.ErrNoEntries) {
			config.DisplayUsage(os.Stderr)
		}
		return err
	}
	if err := transport.ValidateMethod(desc.Method); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "endpoint: %s\n", desc)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	agg := newAggregator(cfg.Estimator)

	newTransport := func() runner.Transport {
		var opts []transport.Option
		if provider.Enabled() {
			opts = append(opts, transport.WithTracer(provider.Tracer(), provider.ShouldPropagate()))
		}
		return transport.New(cfg.Timeout, opts...)
	}

	r := runner.New(runner.Options{
		Parallelism:  cfg.Parallelism,
		Duration:     cfg.Duration,
		Descriptor:   desc,
		NewTransport: newTransport,
		Aggregator:   agg,
	})

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(agg, dashboard.RunConfig{
			TargetURL:   desc.URL,
			Method:      desc.Method,
			Parallelism: cfg.Parallelism,
			Window:      cfg.Duration,
			Timeout:     cfg.Timeout,
			ConfigFile:  cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(agg, cfg.Duration, progressInterval, os.Stderr)
		progress.Start()
	}

	result, err := r.Run(ctx)

	// The reporter must be silent before the final report is rendered so a
	// late tick cannot interleave a status line into it.
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	report := output.NewReport(agg.Summary(), result.Elapsed)
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stderr, report)
	}
	r.Finish()
	return nil
}

func newAggregator(estimator config.Estimator) metrics.Aggregator {
	if estimator == config.EstimatorHDR {
		return metrics.NewEstimator()
	}
	return metrics.NewCollector()
}
