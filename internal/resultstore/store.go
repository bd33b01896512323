package resultstore

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Status is the execution state of a target within a run.
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Output is what a successful build leaves behind.
type Output struct {
	Digest string
	Files  []string
}

// Result is a point-in-time view of one target.
type Result struct {
	Label  model.Label
	Status Status
	Output *Output
	Err    error
}

// Store manages the per-target state of a build run.
type Store interface {
	SetStatus(ctx context.Context, l model.Label, status Status) error
	GetStatus(ctx context.Context, l model.Label) (Status, error)
	SetOutput(ctx context.Context, l model.Label, out *Output) error
	GetOutput(ctx context.Context, l model.Label) (*Output, error)
	SetError(ctx context.Context, l model.Label, err error) error
	GetError(ctx context.Context, l model.Label) (error, error)
	// Snapshot returns every target with a recorded status, sorted by label.
	Snapshot(ctx context.Context) ([]Result, error)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	states  sync.Map // Key: model.Label, Value: Status
	outputs sync.Map // Key: model.Label, Value: *Output
	errors  sync.Map // Key: model.Label, Value: error
}

// New creates a new, empty in-memory result store.
func New() *MemoryStore {
	return &MemoryStore{}
}

// SetStatus updates the execution status of a target.
func (s *MemoryStore) SetStatus(ctx context.Context, l model.Label, status Status) error {
	s.states.Store(l, status)
	return nil
}

// GetStatus returns the status of a target, StatusPending if none was set.
func (s *MemoryStore) GetStatus(ctx context.Context, l model.Label) (Status, error) {
	status, ok := s.states.Load(l)
	if !ok {
		return StatusPending, nil
	}
	return status.(Status), nil
}

// SetOutput records the output of a successful build.
func (s *MemoryStore) SetOutput(ctx context.Context, l model.Label, out *Output) error {
	s.outputs.Store(l, out)
	return nil
}

// GetOutput returns the recorded output, nil if there is none.
func (s *MemoryStore) GetOutput(ctx context.Context, l model.Label) (*Output, error) {
	out, ok := s.outputs.Load(l)
	if !ok {
		return nil, nil
	}
	return out.(*Output), nil
}

// SetError records why a target failed or was skipped.
func (s *MemoryStore) SetError(ctx context.Context, l model.Label, targetErr error) error {
	s.errors.Store(l, targetErr)
	return nil
}

// GetError returns the recorded error, nil if there is none.
func (s *MemoryStore) GetError(ctx context.Context, l model.Label) (error, error) {
	err, ok := s.errors.Load(l)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]Result, error) {
	var results []Result
	s.states.Range(func(k, v any) bool {
		l := k.(model.Label)
		r := Result{Label: l, Status: v.(Status)}
		if out, ok := s.outputs.Load(l); ok {
			r.Output = out.(*Output)
		}
		if err, ok := s.errors.Load(l); ok {
			r.Err = err.(error)
		}
		results = append(results, r)
		return true
	})
	sort.Slice(results, func(i, j int) bool { return results[i].Label.Compare(results[j].Label) < 0 })
	return results, nil
}
