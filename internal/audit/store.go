package audit

import (
	"context"
	"sync"

	id "ensemble/pkg/domain"
)

// Store is an append-only audit sink with per-registration lookup.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRegistration(ctx context.Context, regID id.RegistrationID) ([]Event, error)
}

// InMemory keeps audit events in order of arrival.
type InMemory struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemory) ListByRegistration(_ context.Context, regID id.RegistrationID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.RegistrationID == regID {
			out = append(out, e)
		}
	}
	return out, nil
}
