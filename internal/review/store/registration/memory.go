// Package registration provides the registration stores: an in-memory
// implementation for tests and development, and a PostgreSQL implementation
// for production.
package registration

import (
	"context"
	"sort"
	"sync"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
)

// errDuplicateRegNum reports a second registration reusing a registration
// number within the same event. It carries the problem as a field error so
// the intake pipeline can map it back onto the offending draft field.
func errDuplicateRegNum() error {
	return dErrors.WithFields(dErrors.CodeValidation, "registration rejected",
		dErrors.Fields{"reg_num": {"is already registered for this event"}})
}

// InMemory keeps registrations in a map. It intentionally favors clarity
// over performance.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.RegistrationID]*models.Registration
}

// NewInMemory creates an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.RegistrationID]*models.Registration)}
}

// Create persists a new registration. A registration number may appear at
// most once per event; an empty number is exempt.
func (s *InMemory) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[reg.ID]; exists {
		return sentinel.ErrConflict
	}
	if reg.Applicant.RegNum != "" {
		for _, rec := range s.records {
			if rec.EventID == reg.EventID && rec.Applicant.RegNum == reg.Applicant.RegNum {
				return errDuplicateRegNum()
			}
		}
	}
	clone := reg.Clone()
	s.records[reg.ID] = &clone
	return nil
}

// FindByID returns a copy of the registration.
func (s *InMemory) FindByID(_ context.Context, regID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := rec.Clone()
	return &clone, nil
}

// ListByEvent returns copies of every registration for the event, oldest first.
func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Registration
	for _, rec := range s.records {
		if rec.EventID == eventID {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Execute runs the validate-then-mutate pair under the store lock so a
// concurrent decision cannot interleave between the status check and the
// status write. Returns a copy of the updated registration.
func (s *InMemory) Execute(
	_ context.Context,
	regID id.RegistrationID,
	validate func(*models.Registration) error,
	mutate func(*models.Registration),
) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(rec); err != nil {
		return nil, err
	}
	mutate(rec)
	clone := rec.Clone()
	return &clone, nil
}
