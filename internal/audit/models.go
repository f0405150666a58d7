package audit

import (
	"time"

	id "ensemble/pkg/domain"
)

// Actions recorded in the audit trail.
const (
	ActionSubmitted = "application.submitted"
	ActionDecided   = "registration.decided"
	ActionExported  = "registrations.exported"
	ActionLogin     = "reviewer.login"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time         `json:"timestamp"`
	Action         string            `json:"action"`
	ReviewerID     id.ReviewerID     `json:"reviewer_id,omitempty"`
	EventID        id.EventID        `json:"event_id,omitempty"`
	RegistrationID id.RegistrationID `json:"registration_id,omitempty"`
	Decision       string            `json:"decision,omitempty"`
	ClientIP       string            `json:"client_ip,omitempty"`
	UserAgent      string            `json:"user_agent,omitempty"`
	Device         string            `json:"device,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`
}
