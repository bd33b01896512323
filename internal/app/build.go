package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/events"
	"github.com/specialistvlad/buildgrid/internal/executor"
	"github.com/specialistvlad/buildgrid/internal/filehash"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/query"
	"github.com/specialistvlad/buildgrid/internal/resultstore"
	"github.com/specialistvlad/buildgrid/internal/tracing"
)

const serviceName = "buildgrid"

func (a *App) runBuild(ws *model.Workspace, graph *dag.Graph, q *query.Query) error {
	var targets []model.Label
	for _, raw := range a.config.Args {
		l, err := q.Resolve(raw)
		if err != nil {
			return err
		}
		targets = append(targets, l)
	}

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	shutdown, err := tracing.Setup(a.ctx, serviceName, a.config.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(a.ctx)); err != nil {
			a.logger.Warn("Failed to flush traces.", "error", err)
		}
	}()

	hasher, err := filehash.New(a.config.HashCacheSize)
	if err != nil {
		return err
	}

	sink, err := a.eventSink()
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(context.WithoutCancel(a.ctx)); err != nil {
			a.logger.Warn("Failed to close event sink.", "error", err)
		}
	}()

	store := resultstore.New()
	exec := executor.New(graph, ws, a.registry, executor.Options{
		Workers: a.config.WorkerCount,
		Hasher:  hasher,
		Sink:    sink,
		Store:   store,
	})

	a.logger.Info("🚀 Starting build...", "runID", exec.RunID(), "workers", a.config.WorkerCount)
	summary, runErr := exec.Run(a.ctx, targets...)
	if summary != nil {
		a.printSummary(summary)
		hits, misses := hasher.Stats()
		a.logger.Info("🏁 Build finished.",
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
			"hashCacheHits", hits,
			"hashCacheMisses", misses,
		)
	}
	return runErr
}

// eventSink always logs events and also forwards them to the socket.io
// server when an events URL is configured.
func (a *App) eventSink() (events.Sink, error) {
	logSink := events.NewLogSink(a.logger)
	if a.config.EventsURL == "" {
		return logSink, nil
	}
	sio, err := events.NewSocketIOSink(a.ctx, a.config.EventsURL, a.config.EventsTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event sink: %w", err)
	}
	return events.Multi(logSink, sio), nil
}

// printSummary writes one line per planned target, in build order.
func (a *App) printSummary(summary *executor.Summary) {
	byLabel := make(map[model.Label]resultstore.Result, len(summary.Results))
	for _, r := range summary.Results {
		byLabel[r.Label] = r
	}
	for _, l := range summary.Plan {
		r := byLabel[l]
		if r.Status == resultstore.StatusSucceeded && r.Output != nil {
			fmt.Fprintf(a.outW, "%s %s\n", l, r.Output.Digest)
			continue
		}
		fmt.Fprintf(a.outW, "%s %s\n", l, r.Status)
	}
}
