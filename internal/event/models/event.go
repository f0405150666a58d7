package models

import (
	"time"

	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

// Event is a club event that accepts registrations, e.g. an audition round or
// an orientation workshop.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - Registrations are only accepted while Open is true
//   - CreatedAt is immutable after construction
type Event struct {
	ID          id.EventID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartsAt    time.Time  `json:"starts_at"`
	Open        bool       `json:"open"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewEvent(eventID id.EventID, name, description, venue string, startsAt, now time.Time) (*Event, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name cannot be empty")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name must be 200 characters or less")
	}
	return &Event{
		ID:          eventID,
		Name:        name,
		Description: description,
		Venue:       venue,
		StartsAt:    startsAt,
		Open:        true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanAcceptApplications reports whether a new application draft may be
// started against this event.
func (e *Event) CanAcceptApplications() error {
	if !e.Open {
		return dErrors.New(dErrors.CodeInvariantViolation, "event is not accepting registrations")
	}
	return nil
}
