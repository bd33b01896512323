package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/dag"
	"github.com/specialistvlad/buildgrid/internal/events"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/internal/resultstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/specialistvlad/buildgrid/internal/executor"

// Options tunes an Executor. Zero values select the defaults.
type Options struct {
	// Workers is the number of concurrent builds. Defaults to 1.
	Workers int
	// Hasher digests source files. Files are read directly when nil.
	Hasher registry.FileHasher
	// Sink receives build events. Events are dropped when nil.
	Sink events.Sink
	// RunID stamps every event. A fresh ID is generated when empty.
	RunID string
	// Store records per-target results. An in-memory store is used when nil.
	Store resultstore.Store
	// Tracer wraps every target build in a span. Defaults to the global
	// tracer provider.
	Tracer trace.Tracer
}

// Executor orchestrates build runs over a validated graph. Runs must not
// overlap.
type Executor struct {
	graph      *dag.Graph
	ws         *model.Workspace
	reg        *registry.Registry
	numWorkers int
	hasher     registry.FileHasher
	store      resultstore.Store
	emitter    *events.Emitter
	tracer     trace.Tracer
	wg         sync.WaitGroup
}

// Summary describes a finished run.
type Summary struct {
	RunID string
	// Plan is the build order of every target the run covered.
	Plan      []model.Label
	Results   []resultstore.Result
	Succeeded int
	Failed    int
	Skipped   int
}

// task is the per-run state of one target.
type task struct {
	id         string
	label      model.Label
	target     *model.Target
	deps       []*task
	dependents []*task
	depCount   atomic.Int32
	state      atomic.Int32
	output     *registry.BuildOutput
	err        error
}

func (t *task) status() resultstore.Status {
	return resultstore.Status(t.state.Load())
}

func (t *task) transition(from, to resultstore.Status) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

// New creates an executor for graph g, whose nodes are the labels of the
// targets in ws.
func New(g *dag.Graph, ws *model.Workspace, reg *registry.Registry, opts Options) *Executor {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	store := opts.Store
	if store == nil {
		store = resultstore.New()
	}
	runID := opts.RunID
	if runID == "" {
		runID = events.NewRunID()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &Executor{
		graph:      g,
		ws:         ws,
		reg:        reg,
		numWorkers: workers,
		hasher:     opts.Hasher,
		store:      store,
		emitter:    events.NewEmitter(opts.Sink, runID),
		tracer:     tracer,
	}
}

// RunID returns the identifier stamped on this executor's events.
func (e *Executor) RunID() string {
	return e.emitter.RunID()
}

// Run builds the requested targets together with everything they depend on.
// With no targets the whole graph is built. The returned summary is non-nil
// whenever the plan could be made, even if the build failed.
func (e *Executor) Run(ctx context.Context, targets ...model.Label) (*Summary, error) {
	logger := ctxlog.FromContext(ctx).With("runID", e.RunID())
	ctx = ctxlog.WithLogger(ctx, logger)

	order, err := e.plan(targets)
	if err != nil {
		return nil, err
	}
	tasks, err := e.prepare(ctx, order)
	if err != nil {
		return nil, err
	}

	e.emit(ctx, events.RunStarted, "", "", nil)

	readyChan := make(chan *task, len(tasks))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root targets...")
	rootCount := 0
	for _, t := range tasks {
		if t.depCount.Load() == 0 {
			logger.Debug("Found root target.", "target", t.id)
			readyChan <- t
			rootCount++
		}
	}
	logger.Debug("Found all root targets.", "count", rootCount)

	e.wg.Add(len(tasks))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	logger.Info("Waiting for all targets to complete...", "targets", len(tasks))
	e.wg.Wait()
	close(readyChan)
	logger.Info("All targets completed.")

	summary := &Summary{RunID: e.RunID()}
	var failed []string
	var rootCause error
	for _, t := range tasks {
		summary.Plan = append(summary.Plan, t.label)
		switch t.status() {
		case resultstore.StatusSucceeded:
			summary.Succeeded++
		case resultstore.StatusSkipped:
			summary.Skipped++
		case resultstore.StatusFailed:
			summary.Failed++
			logger.Error("Target failed.", "target", t.id, "error", t.err)
			if !errors.Is(t.err, context.Canceled) {
				failed = append(failed, t.id)
				if rootCause == nil {
					rootCause = t.err
				}
			}
		}
	}
	if summary.Results, err = e.store.Snapshot(ctx); err != nil {
		return summary, fmt.Errorf("failed to read build results: %w", err)
	}

	var runErr error
	switch {
	case rootCause != nil:
		runErr = fmt.Errorf("build failed for %s: %w", strings.Join(failed, ", "), rootCause)
	case ctx.Err() != nil:
		runErr = fmt.Errorf("build interrupted: %w", ctx.Err())
	}
	e.emit(ctx, events.RunFinished, "", "", runErr)
	return summary, runErr
}

// plan returns the graph nodes a run covers, in build order.
func (e *Executor) plan(targets []model.Label) ([]string, error) {
	order, err := e.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return order, nil
	}

	wanted := make(map[string]struct{})
	for _, l := range targets {
		id := l.String()
		if !e.graph.HasNode(id) {
			return nil, fmt.Errorf("%w: %s", dag.ErrUnknownTarget, id)
		}
		ancestors, err := e.graph.Ancestors(id)
		if err != nil {
			return nil, err
		}
		wanted[id] = struct{}{}
		for _, a := range ancestors {
			wanted[a] = struct{}{}
		}
	}

	plan := make([]string, 0, len(wanted))
	for _, id := range order {
		if _, ok := wanted[id]; ok {
			plan = append(plan, id)
		}
	}
	return plan, nil
}

// prepare creates one task per planned node and links them.
func (e *Executor) prepare(ctx context.Context, order []string) ([]*task, error) {
	byID := make(map[string]*task, len(order))
	tasks := make([]*task, 0, len(order))
	for _, id := range order {
		l, err := model.ParseLabel(id, "")
		if err != nil {
			return nil, fmt.Errorf("graph node %q is not a target label: %w", id, err)
		}
		target, ok := e.ws.Target(l)
		if !ok {
			return nil, fmt.Errorf("%w: %s", dag.ErrUnknownTarget, id)
		}
		if _, ok := e.reg.Kind(target.Kind); !ok {
			return nil, fmt.Errorf("no rule kind registered for '%s' (target %s)", target.Kind, id)
		}
		t := &task{id: id, label: l, target: target}
		t.state.Store(int32(resultstore.StatusPending))
		byID[id] = t
		tasks = append(tasks, t)
	}

	for _, t := range tasks {
		deps, err := e.graph.Dependencies(t.id)
		if err != nil {
			return nil, err
		}
		for _, depID := range deps {
			dep, ok := byID[depID]
			if !ok {
				// Plans are closed under dependencies.
				return nil, fmt.Errorf("dependency %s of %s is not part of the build plan", depID, t.id)
			}
			t.deps = append(t.deps, dep)
			dep.dependents = append(dep.dependents, t)
		}
		t.depCount.Store(int32(len(t.deps)))
		if err := e.store.SetStatus(ctx, t.label, resultstore.StatusPending); err != nil {
			return nil, fmt.Errorf("failed to record status of %s: %w", t.id, err)
		}
	}
	for _, t := range tasks {
		sort.Slice(t.dependents, func(i, j int) bool { return t.dependents[i].id < t.dependents[j].id })
	}
	return tasks, nil
}

// emit publishes an event. Sink failures are logged and never fail the build.
func (e *Executor) emit(ctx context.Context, typ events.Type, target, digest string, cause error) {
	if err := e.emitter.Emit(ctx, typ, target, digest, cause); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish build event.", "type", typ, "error", err)
	}
}

// record stores the terminal state of t, logging store failures.
func (e *Executor) record(ctx context.Context, t *task) {
	logger := ctxlog.FromContext(ctx)
	// The run context may already be canceled. Results are still recorded.
	ctx = context.WithoutCancel(ctx)
	if err := e.store.SetStatus(ctx, t.label, t.status()); err != nil {
		logger.Warn("Failed to record target status.", "target", t.id, "error", err)
	}
	if t.err != nil {
		if err := e.store.SetError(ctx, t.label, t.err); err != nil {
			logger.Warn("Failed to record target error.", "target", t.id, "error", err)
		}
	}
	if t.output != nil {
		out := &resultstore.Output{Digest: t.output.Digest, Files: t.output.Outputs}
		if err := e.store.SetOutput(ctx, t.label, out); err != nil {
			logger.Warn("Failed to record target output.", "target", t.id, "error", err)
		}
	}
}

// skip marks t as skipped if it has not started, then does the same for
// everything downstream of it.
func (e *Executor) skip(ctx context.Context, t *task, cause error) {
	logger := ctxlog.FromContext(ctx)
	if !t.transition(resultstore.StatusPending, resultstore.StatusSkipped) {
		return
	}
	logger.Warn("Skipping target.", "target", t.id, "reason", cause)
	t.err = cause
	e.record(ctx, t)
	e.emit(context.WithoutCancel(ctx), events.TargetSkipped, t.id, "", cause)
	e.wg.Done()
	e.skipDependents(ctx, t)
}

// skipDependents recursively skips every target downstream of t.
func (e *Executor) skipDependents(ctx context.Context, t *task) {
	for _, dependent := range t.dependents {
		e.skip(ctx, dependent, fmt.Errorf("skipped due to upstream failure of '%s'", t.id))
	}
}
