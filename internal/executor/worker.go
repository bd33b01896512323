package executor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/events"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/internal/resultstore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *task, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range readyChan {
		workerLogger := logger.With("workerID", workerID, "target", t.id)

		if ctx.Err() != nil {
			e.skip(ctx, t, ctx.Err())
			continue
		}
		if !t.transition(resultstore.StatusPending, resultstore.StatusRunning) {
			continue
		}

		workerLogger.Debug("Worker picked up target for building.")
		e.record(ctx, t)
		e.emit(ctx, events.TargetStarted, t.id, "", nil)

		out, err := e.build(ctxlog.WithLogger(ctx, workerLogger), t)
		if err != nil {
			workerLogger.Error("Target build failed.", "error", err)
			t.err = err
			t.state.Store(int32(resultstore.StatusFailed))
			e.record(ctx, t)
			e.emit(context.WithoutCancel(ctx), events.TargetFailed, t.id, "", err)
			cancel()
			e.skipDependents(ctx, t)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Target build succeeded.", "digest", out.Digest)
		t.output = out
		t.state.Store(int32(resultstore.StatusSucceeded))
		e.record(ctx, t)
		e.emit(ctx, events.TargetSucceeded, t.id, out.Digest, nil)

		for _, dependent := range t.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent target.", "dependent", dependent.id)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// build runs the rule kind's BuildFunc for t inside a tracing span.
func (e *Executor) build(ctx context.Context, t *task) (out *registry.BuildOutput, err error) {
	kind, _ := e.reg.Kind(t.target.Kind)
	ctx, span := e.tracer.Start(ctx, "build "+t.target.Kind, trace.WithAttributes(
		attribute.String("target.label", t.id),
		attribute.String("target.kind", t.target.Kind),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	depDigests := make(map[model.Label]string, len(t.deps))
	for _, dep := range t.deps {
		depDigests[dep.label] = dep.output.Digest
	}
	in := &registry.BuildInput{
		Target:     t.target,
		Dir:        e.ws.Packages[t.label.Package].Dir,
		DepDigests: depDigests,
		Hasher:     e.hasher,
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule kind '%s' panicked building %s: %v", kind.Name, t.id, r)
		}
	}()
	out, err = kind.Build(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", t.id, err)
	}
	if out == nil {
		return nil, fmt.Errorf("rule kind '%s' returned no output for %s", kind.Name, t.id)
	}
	span.SetAttributes(attribute.String("target.digest", out.Digest))
	return out, nil
}
