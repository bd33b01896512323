package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/export"
	"github.com/specialistvlad/buildgrid/internal/loader"
	"github.com/specialistvlad/buildgrid/internal/query"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/internal/validate"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	config     *Config
	ctx        context.Context
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW. The returned App has its own isolated logger and
// registry.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All rule modules registered.", "count", len(modules), "kinds", reg.Kinds())

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A broken rule module is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		ctx:      ctx,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run loads the workspace and executes the configured command.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command, "args", a.config.Args)

	ws, err := loader.Load(a.ctx, a.config.WorkspacePath, a.registry)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	// These commands work on workspaces that may not form a valid graph.
	switch a.config.Command {
	case CommandValidate:
		return a.runValidate(ws)
	case CommandExport:
		return a.runExport(ws)
	case CommandGraph:
		return export.WriteDOT(a.outW, ws)
	}

	a.logger.Debug("Building dependency graph...")
	graph, err := dag.Build(a.ctx, ws)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", graph.Len())

	if report := validate.Workspace(a.ctx, ws); !report.OK() {
		return fmt.Errorf("workspace failed validation: %w", report.Err())
	}
	q := query.New(graph, ws)

	switch a.config.Command {
	case CommandOrder:
		return a.runOrder(q)
	case CommandDeps:
		return a.runDeps(q, false)
	case CommandRdeps:
		return a.runDeps(q, true)
	case CommandPath:
		return a.runPath(q)
	case CommandBuild:
		return a.runBuild(ws, graph, q)
	}
	return fmt.Errorf("unknown command %q", a.config.Command)
}
