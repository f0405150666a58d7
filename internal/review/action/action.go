// Package action models the two-phase confirm-before-mutate review workflow
// as an explicit tagged state machine:
//
//	closed → choosing → confirming → (mutating → closed | mutating → confirming)
//
// A boolean "isConfirming" flag cannot distinguish "nothing chosen yet" from
// "chose approve" vs "chose reject"; the explicit phase plus recorded
// proposal keeps illegal states unrepresentable. All transient state is keyed
// by registration ID, never by list position, so it stays correct when the
// underlying list reorders between fetches.
package action

import (
	"sync"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

// Phase is the current position in the review workflow.
type Phase string

const (
	PhaseChoosing   Phase = "choosing"
	PhaseConfirming Phase = "confirming"
	PhaseMutating   Phase = "mutating"
)

// Action is the transient per-registration review state. It is created when
// a reviewer opens a pending record and destroyed on close or successful
// mutation.
type Action struct {
	Registration id.RegistrationID
	Proposed     models.RegistrationStatus
	Phase        Phase
	InFlight     bool
}

// Manager tracks at most one action per registration and enforces the
// transition rules. Transitions for one registration are totally ordered;
// different registrations proceed independently.
type Manager struct {
	mu      sync.Mutex
	actions map[id.RegistrationID]*Action
}

// NewManager creates an empty action manager.
func NewManager() *Manager {
	return &Manager{actions: make(map[id.RegistrationID]*Action)}
}

// Open enters the choosing phase for a pending registration. Terminal
// registrations never enter the workflow; they open read-only. If an action
// already exists for the registration it is resumed unchanged, except that a
// mutation in flight rejects the caller outright.
func (m *Manager) Open(reg *models.Registration) (*Action, error) {
	if err := reg.CanReview(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[reg.ID]; ok {
		if a.InFlight {
			return nil, dErrors.New(dErrors.CodeConflict, "a decision for this registration is already in flight")
		}
		return a, nil
	}
	a := &Action{Registration: reg.ID, Phase: PhaseChoosing}
	m.actions[reg.ID] = a
	return a, nil
}

// Choose records the proposed status and moves to confirming. Nothing is
// sent yet. Re-choosing from confirming replaces the proposal.
func (m *Manager) Choose(regID id.RegistrationID, proposed models.RegistrationStatus) error {
	if proposed != models.StatusConfirmed && proposed != models.StatusCancelled {
		return dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a reviewable decision", proposed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actions[regID]
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "no open review action for registration")
	}
	if a.InFlight {
		return dErrors.New(dErrors.CodeConflict, "a decision for this registration is already in flight")
	}
	a.Proposed = proposed
	a.Phase = PhaseConfirming
	return nil
}

// Back discards the proposal and returns to choosing.
func (m *Manager) Back(regID id.RegistrationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actions[regID]
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "no open review action for registration")
	}
	if a.Phase != PhaseConfirming || a.InFlight {
		return dErrors.New(dErrors.CodeInvariantViolation, "nothing to back out of")
	}
	a.Proposed = ""
	a.Phase = PhaseChoosing
	return nil
}

// Begin moves confirming → mutating and raises the in-flight guard. A second
// Begin while one mutation is pending returns conflict, which is what makes
// a double-click issue exactly one network call.
func (m *Manager) Begin(regID id.RegistrationID) (models.RegistrationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actions[regID]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "no open review action for registration")
	}
	if a.InFlight {
		return "", dErrors.New(dErrors.CodeConflict, "a decision for this registration is already in flight")
	}
	if a.Phase != PhaseConfirming {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "no decision has been confirmed")
	}
	a.Phase = PhaseMutating
	a.InFlight = true
	return a.Proposed, nil
}

// Complete ends a successful mutation and destroys the action.
func (m *Manager) Complete(regID id.RegistrationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.actions, regID)
}

// Fail returns a failed mutation to confirming (not closed) so the reviewer
// can retry or back out, and clears the in-flight guard.
func (m *Manager) Fail(regID id.RegistrationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[regID]; ok {
		a.Phase = PhaseConfirming
		a.InFlight = false
	}
}

// Close discards the action regardless of phase, except while a mutation is
// in flight.
func (m *Manager) Close(regID id.RegistrationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[regID]; ok && a.InFlight {
		return dErrors.New(dErrors.CodeConflict, "a decision for this registration is already in flight")
	}
	delete(m.actions, regID)
	return nil
}

// Get returns a snapshot of the action for a registration, if any.
func (m *Manager) Get(regID id.RegistrationID) (Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[regID]; ok {
		return *a, true
	}
	return Action{}, false
}
