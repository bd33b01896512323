// Package events publishes the progress of a build run to pluggable sinks.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type names a build event.
type Type string

const (
	RunStarted      Type = "run_started"
	TargetStarted   Type = "target_started"
	TargetSucceeded Type = "target_succeeded"
	TargetFailed    Type = "target_failed"
	TargetSkipped   Type = "target_skipped"
	RunFinished     Type = "run_finished"
)

// Event is one step of a build run.
type Event struct {
	RunID  string    `json:"run_id"`
	Type   Type      `json:"type"`
	Target string    `json:"target,omitempty"`
	Digest string    `json:"digest,omitempty"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// Sink receives build events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
	Close(ctx context.Context) error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Emitter stamps events with a run ID and time before handing them to a sink.
type Emitter struct {
	sink  Sink
	runID string
	now   func() time.Time
}

// NewEmitter creates a new event emitter. A nil sink discards events.
func NewEmitter(sink Sink, runID string) *Emitter {
	return &Emitter{
		sink:  sink,
		runID: runID,
		now:   time.Now,
	}
}

// RunID returns the run the emitter stamps events with.
func (e *Emitter) RunID() string {
	return e.runID
}

// Emit sends one event. Only a non-nil cause fills the Error field.
func (e *Emitter) Emit(ctx context.Context, typ Type, target, digest string, cause error) error {
	if e.sink == nil {
		return nil
	}
	ev := Event{
		RunID:  e.runID,
		Type:   typ,
		Target: target,
		Digest: digest,
		Time:   e.now().UTC(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	return e.sink.Emit(ctx, ev)
}

// multi fans events out to several sinks.
type multi []Sink

// Multi returns a sink that forwards to every given sink. Nil sinks are
// dropped. Errors from individual sinks are joined.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
