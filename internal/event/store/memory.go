// Package store provides the event stores: an in-memory implementation for
// tests and development, and a PostgreSQL implementation for production.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ensemble/internal/event/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/sentinel"
)

// InMemory keeps events in a map.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.EventID]*models.Event)}
}

// Create persists a new event.
func (s *InMemory) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[event.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *event
	s.records[event.ID] = &clone
	return nil
}

// FindByID returns a copy of the event.
func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// List returns events whose name contains the search term (case-insensitive),
// soonest start first. An empty search matches everything.
func (s *InMemory) List(_ context.Context, search string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.Event
	for _, rec := range s.records {
		if needle != "" && !strings.Contains(strings.ToLower(rec.Name), needle) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}
