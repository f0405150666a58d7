// Package domain holds shared value types used across modules.
//
// IDs are distinct uuid-backed types so the compiler rejects mixing, say, an
// EventID where a RegistrationID is expected. Construct them from external
// input via the Parse helpers, which enforce the invariant that IDs are valid,
// non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "ensemble/pkg/domain-errors"
)

type (
	// EventID identifies a club event open for registration.
	EventID uuid.UUID
	// RegistrationID identifies a durable registration record.
	RegistrationID uuid.UUID
	// ApplicantID identifies the applicant sub-record of a registration.
	ApplicantID uuid.UUID
	// ReviewerID identifies an executive body member account.
	ReviewerID uuid.UUID
	// DraftID identifies an in-progress intake draft.
	DraftID uuid.UUID
)

func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id ApplicantID) String() string    { return uuid.UUID(id).String() }
func (id ReviewerID) String() string     { return uuid.UUID(id).String() }
func (id DraftID) String() string        { return uuid.UUID(id).String() }

// The ID types marshal as canonical uuid strings in JSON and text contexts.
// Defined types do not inherit uuid.UUID's methods, so these are explicit.

func (id EventID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ApplicantID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ReviewerID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id DraftID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }

func (id *EventID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}

func (id *RegistrationID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = RegistrationID(u)
	return nil
}

func (id *ApplicantID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ApplicantID(u)
	return nil
}

func (id *ReviewerID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ReviewerID(u)
	return nil
}

func (id *DraftID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = DraftID(u)
	return nil
}

func (id EventID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReviewerID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DraftID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }

// NewEventID allocates a fresh event ID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewRegistrationID allocates a fresh registration ID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewApplicantID allocates a fresh applicant ID.
func NewApplicantID() ApplicantID { return ApplicantID(uuid.New()) }

// NewReviewerID allocates a fresh reviewer ID.
func NewReviewerID() ReviewerID { return ReviewerID(uuid.New()) }

// NewDraftID allocates a fresh draft ID.
func NewDraftID() DraftID { return DraftID(uuid.New()) }

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

// ParseRegistrationID constructs a RegistrationID from external input.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RegistrationID{}, err
	}
	return RegistrationID(u), nil
}

// ParseReviewerID constructs a ReviewerID from external input.
func ParseReviewerID(s string) (ReviewerID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ReviewerID{}, err
	}
	return ReviewerID(u), nil
}

// ParseDraftID constructs a DraftID from external input.
func ParseDraftID(s string) (DraftID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DraftID{}, err
	}
	return DraftID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}
