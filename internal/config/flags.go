package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultWindow = "10s"

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hurlbench [flags] <FILEPATH>",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Run control flags. The window is a string because its suffix grammar
	// differs from Go's: "m" means milliseconds, not minutes.
	flags.StringP("duration", "d", defaultWindow, "How long to run (suffix s=seconds, m=milliseconds)")
	flags.IntP("parallelism", "p", 1, "Number of parallel workers")
	flags.Duration("timeout", defaultTimeout, "Per-request timeout (0 means none)")

	// Statistics flags
	flags.String("estimator", string(EstimatorExact), "Latency aggregation backend: 'exact' or 'hdr'")

	// Output flags
	flags.Bool("json-output", false, "Emit the final summary as JSON on stdout")
	flags.Bool("dashboard", false, "Show live terminal dashboard instead of the status line")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for per-request trace export")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("trace-service", "", "Service name reported on exported spans")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio in [0.0, 1.0]")
	flags.Bool("trace-insecure", false, "Skip TLS for the OTLP exporter")
	flags.Bool("trace-propagate", false, "Inject W3C traceparent headers into requests")
}

// DisplayUsage prints the usage banner. Shown for --help and for
// configuration errors, matching the original binary's behavior.
func DisplayUsage(out io.Writer) {
	cmd := newFlagCommand()
	cmd.SetOut(out)
	displayHelp(cmd)
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nArgs:\n  <FILEPATH>    Path to the request file\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("duration") {
		val, err := fs.GetString("duration")
		if err != nil {
			return err
		}
		window, err := ParseWindow(val)
		if err != nil {
			return err
		}
		cfg.Duration = window
	}
	if fs.Changed("parallelism") {
		val, err := fs.GetInt("parallelism")
		if err != nil {
			return err
		}
		cfg.Parallelism = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("estimator") {
		val, err := fs.GetString("estimator")
		if err != nil {
			return err
		}
		cfg.Estimator = Estimator(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service") {
		val, err := fs.GetString("trace-service")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &val
	}

	return nil
}
