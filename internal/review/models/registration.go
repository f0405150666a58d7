// Package models defines the durable registration record under review and
// its status lifecycles.
package models

import (
	"time"

	"ensemble/internal/intake/schema"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

// PaymentStatus tracks the fee lifecycle of a registration.
type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "not_paid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var validPaymentStatuses = map[PaymentStatus]bool{
	PaymentNotPaid: true,
	PaymentPending: true,
	PaymentPaid:    true,
	PaymentFailed:  true,
}

// IsValid checks the payment status against the supported enum values.
func (s PaymentStatus) IsValid() bool { return validPaymentStatuses[s] }

// RegistrationStatus tracks the review lifecycle of a registration.
//
// pending is the only non-terminal status: once a registration reaches
// confirmed, cancelled, or rejected, no further transition is permitted.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusCancelled RegistrationStatus = "cancelled"
	StatusRejected  RegistrationStatus = "rejected"
)

var validRegistrationStatuses = map[RegistrationStatus]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusRejected:  true,
}

// ParseRegistrationStatus constructs a RegistrationStatus from external input.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration status cannot be empty")
	}
	st := RegistrationStatus(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid registration status %q", s)
	}
	return st, nil
}

// IsValid checks the status against the supported enum values.
func (s RegistrationStatus) IsValid() bool { return validRegistrationStatuses[s] }

// Terminal reports whether the status admits no further transitions.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled || s == StatusRejected
}

// CanTransitionTo reports whether the lifecycle permits moving to target.
// Only pending registrations transition, and only into a terminal status.
func (s RegistrationStatus) CanTransitionTo(target RegistrationStatus) bool {
	return s == StatusPending && target.Terminal()
}

func (s RegistrationStatus) String() string { return string(s) }

// Applicant is the sub-record captured by the intake form.
type Applicant struct {
	ID                id.ApplicantID `json:"id"`
	FullName          string         `json:"full_name"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	YearOfStudy       string         `json:"year_of_study"`
	LateralEntry      string         `json:"lateral_entry,omitempty"`
	RegNum            string         `json:"reg_num"`
	Department        string         `json:"department"`
	InstrumentAvail   string         `json:"instrument_avail"`
	InstrumentDetails string         `json:"instrument_details,omitempty"`
	ExperienceYears   string         `json:"experience_years,omitempty"`
	PreferredRole     string         `json:"preferred_role"`
}

// ApplicantFromForm maps a validated draft value snapshot onto an applicant
// record. The snapshot is trusted: the intake pipeline only calls this after
// full validation has passed.
func ApplicantFromForm(values map[string]string) Applicant {
	return Applicant{
		ID:                id.NewApplicantID(),
		FullName:          values[schema.FieldFullName],
		Email:             values[schema.FieldEmail],
		Phone:             values[schema.FieldPhone],
		YearOfStudy:       values[schema.FieldYearOfStudy],
		LateralEntry:      values[schema.FieldLateralEntry],
		RegNum:            values[schema.FieldRegNum],
		Department:        values[schema.FieldDepartment],
		InstrumentAvail:   values[schema.FieldInstrumentAvail],
		InstrumentDetails: values[schema.FieldInstrumentDetails],
		ExperienceYears:   values[schema.FieldExperienceYears],
		PreferredRole:     values[schema.FieldPreferredRole],
	}
}

// Registration is the durable unit under review, created at submission time
// and mutated only through the review decision path.
//
// Invariants:
//   - RegistrationStatus transitions only via CanTransitionTo
//   - a terminal registration is immutable from this module
//   - CreatedAt is immutable after construction
type Registration struct {
	ID                 id.RegistrationID  `json:"id"`
	EventID            id.EventID         `json:"event_id"`
	Applicant          Applicant          `json:"applicant"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	PaymentReference   string             `json:"payment_reference,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewRegistration creates a pending, unpaid registration for an applicant.
func NewRegistration(eventID id.EventID, applicant Applicant, now time.Time) *Registration {
	return &Registration{
		ID:                 id.NewRegistrationID(),
		EventID:            eventID,
		Applicant:          applicant,
		PaymentStatus:      PaymentNotPaid,
		RegistrationStatus: StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// DisplayName is the name the review console searches and renders.
func (r *Registration) DisplayName() string { return r.Applicant.FullName }

// CanReview checks that the registration still accepts a review decision.
// Terminal registrations open read-only.
func (r *Registration) CanReview() error {
	if r.RegistrationStatus.Terminal() {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"registration is already %s", r.RegistrationStatus)
	}
	return nil
}

// CanDecide checks a specific proposed decision against the lifecycle.
func (r *Registration) CanDecide(target RegistrationStatus) error {
	if !target.Terminal() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a decision status", target)
	}
	if !r.RegistrationStatus.CanTransitionTo(target) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"cannot move registration from %s to %s", r.RegistrationStatus, target)
	}
	return nil
}

// ApplyDecision transitions the registration. Call CanDecide first; this is
// the mutation half of the validate-then-mutate pair used by store Execute
// callbacks.
func (r *Registration) ApplyDecision(target RegistrationStatus, now time.Time) {
	r.RegistrationStatus = target
	r.UpdatedAt = now
}

// Clone returns a deep copy so derived views never alias store-owned records.
func (r *Registration) Clone() Registration {
	out := *r
	return out
}
