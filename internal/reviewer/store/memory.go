// Package store provides the reviewer account stores: an in-memory
// implementation for tests and development, and a PostgreSQL implementation
// for production.
package store

import (
	"context"
	"strings"
	"sync"

	"ensemble/internal/reviewer/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/sentinel"
)

// InMemory keeps reviewer accounts in maps keyed by ID and email.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.ReviewerID]*models.Reviewer
	byEmail map[string]*models.Reviewer
}

// NewInMemory creates an empty in-memory reviewer store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.ReviewerID]*models.Reviewer),
		byEmail: make(map[string]*models.Reviewer),
	}
}

// Create persists a new reviewer. Emails are unique.
func (s *InMemory) Create(_ context.Context, reviewer *models.Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(reviewer.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	clone := *reviewer
	s.byID[reviewer.ID] = &clone
	s.byEmail[email] = &clone
	return nil
}

// FindByID returns a copy of the reviewer.
func (s *InMemory) FindByID(_ context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[reviewerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// FindByEmail returns a copy of the reviewer with the given email.
func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}
