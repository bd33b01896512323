// Package eventstest provides an in-memory event sink for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/specialistvlad/buildgrid/internal/events"
)

// Recorder keeps every event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	closed bool
}

var _ events.Sink = (*Recorder)(nil)

// Emit appends ev to the recorded events.
func (r *Recorder) Emit(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Close marks the recorder closed. Events emitted afterwards are still kept.
func (r *Recorder) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
