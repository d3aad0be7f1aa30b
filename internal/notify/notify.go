// Package notify carries lifecycle events from the services to whoever is listening.
package notify

import (
	"context"
	"sync"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Publisher receives events after the state change they describe is committed.
// Implementations must not block the caller for long.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) {}

// Multi fans an event out to several publishers in order
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event model.Event) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// Recorder keeps every published event, for tests and the CLI
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Publish(_ context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// Reset forgets recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
