// Package memory provides an in-memory event sink for development and tests.
package memory

import (
	"context"
	"sync"

	"verdict/internal/events"
)

// Sink records published events in order.
type Sink struct {
	mu     sync.Mutex
	events []events.Event
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Publish(ctx context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (s *Sink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByKind filters recorded events by kind.
func (s *Sink) ByKind(kind events.Kind) []events.Event {
	var out []events.Event
	for _, e := range s.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
