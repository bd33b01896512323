package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/specialistvlad/buildgrid/internal/export"
)

// EnvPrefix prefixes every environment variable the application reads.
const EnvPrefix = "BUILDGRID_"

// Commands.
const (
	CommandValidate = "validate"
	CommandOrder    = "order"
	CommandDeps     = "deps"
	CommandRdeps    = "rdeps"
	CommandPath     = "path"
	CommandExport   = "export"
	CommandGraph    = "graph"
	CommandBuild    = "build"
)

// commandArgs bounds the positional arguments of each command. A max of -1
// means unbounded.
var commandArgs = map[string]struct{ min, max int }{
	CommandValidate: {0, 0},
	CommandOrder:    {0, 1},
	CommandDeps:     {1, 1},
	CommandRdeps:    {1, 1},
	CommandPath:     {2, 2},
	CommandExport:   {0, 1},
	CommandGraph:    {0, 0},
	CommandBuild:    {0, -1},
}

// Config holds all the necessary configuration for an App instance to run.
// Fields with an env tag can be set through BUILDGRID_* variables.
type Config struct {
	WorkspacePath string `env:"WORKSPACE" envDefault:"."`
	Command       string
	Args          []string

	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	HealthcheckPort int    `env:"HEALTHCHECK_PORT"`
	WorkerCount     int    `env:"WORKERS" envDefault:"4"`

	ExportFormat string `env:"EXPORT_FORMAT" envDefault:"hcl"`
	Levels       bool
	Transitive   bool

	EventsURL     string        `env:"EVENTS_URL"`
	EventsTimeout time.Duration `env:"EVENTS_TIMEOUT" envDefault:"5s"`
	HashCacheSize int           `env:"HASH_CACHE_SIZE" envDefault:"4096"`
	OTelEndpoint  string        `env:"OTEL_ENDPOINT"`
}

// LoadEnvConfig returns the defaults overlaid with the environment. The given
// dotenv files (".env" when none) are loaded first; missing files are
// ignored and variables already set win over file contents.
func LoadEnvConfig(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}

	bounds, ok := commandArgs[cfg.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	if n := len(cfg.Args); n < bounds.min || (bounds.max >= 0 && n > bounds.max) {
		return nil, fmt.Errorf("command %q takes %s, got %d", cfg.Command, describeArity(bounds.min, bounds.max), n)
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.WorkerCount)
	}
	if _, err := export.ParseFormat(cfg.ExportFormat); err != nil {
		return nil, err
	}
	if cfg.EventsURL != "" && cfg.EventsTimeout <= 0 {
		return nil, fmt.Errorf("events timeout must be positive, got %s", cfg.EventsTimeout)
	}

	return &cfg, nil
}

func describeArity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d argument(s)", lo)
	case lo == hi && lo == 0:
		return "no arguments"
	case lo == hi:
		return fmt.Sprintf("exactly %d argument(s)", lo)
	}
	return fmt.Sprintf("between %d and %d arguments", lo, hi)
}
