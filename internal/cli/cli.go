package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `
BuildGrid - validates, queries and builds HCL build manifests.

Usage:
  buildgrid [options] COMMAND [ARGS]

Commands:
  validate            Check the workspace and report every problem.
  order [LABEL]       Print the build order, of LABEL's prerequisites if given.
  deps LABEL          Print the dependencies of LABEL.
  rdeps LABEL         Print the targets that depend on LABEL.
  path FROM TO        Print one dependency chain from FROM down to TO.
  export [PACKAGE]    Re-serialize a package in another format.
  graph               Print the dependency graph in Graphviz DOT.
  build [LABEL...]    Build LABELs and their prerequisites, or everything.

Every option can also be set through a BUILDGRID_* environment variable or a
.env file, e.g. BUILDGRID_WORKERS=8.

Options:
`

// Parse processes command-line arguments on top of the environment-derived
// defaults. It returns a populated Config, a boolean indicating if the
// program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	cfg, err := app.LoadEnvConfig()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("buildgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&cfg.WorkspacePath, "workspace", cfg.WorkspacePath, "Path to the workspace directory or a single manifest file.")
	flagSet.StringVar(&cfg.WorkspacePath, "w", cfg.WorkspacePath, "Path to the workspace (shorthand).")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "Number of concurrent build workers.")
	flagSet.StringVar(&cfg.ExportFormat, "format", cfg.ExportFormat, "Export format. Options: 'hcl', 'json', 'bazel'.")
	flagSet.BoolVar(&cfg.Levels, "levels", cfg.Levels, "Print the build order as parallel waves, one per line.")
	flagSet.BoolVar(&cfg.Transitive, "transitive", cfg.Transitive, "Follow dependencies transitively.")
	flagSet.StringVar(&cfg.EventsURL, "events-url", cfg.EventsURL, "socket.io server that receives build events. Empty disables.")
	flagSet.DurationVar(&cfg.EventsTimeout, "events-timeout", cfg.EventsTimeout, "How long to wait for the events server to accept the connection.")
	flagSet.IntVar(&cfg.HealthcheckPort, "healthcheck-port", cfg.HealthcheckPort, "Port for the HTTP health check server during builds. 0 is disabled.")
	flagSet.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP endpoint for build traces. Empty disables.")

	// Options may appear before, between and after the positional arguments.
	var positional []string
	rest := args
	for {
		if err := flagSet.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		rest = flagSet.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}
	slog.Debug("Arguments parsed successfully.", "positional", positional)

	if len(positional) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	cfg.Command = strings.ToLower(positional[0])
	cfg.Args = positional[1:]

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", config.Command)
	return config, false, nil
}
