// Package store holds in-progress application drafts server-side, keyed by
// draft ID. Drafts are transient: they live in memory with a TTL and are
// destroyed on successful submission, explicit abandonment, or expiry.
package store

import (
	"context"
	"sync"
	"time"

	"ensemble/internal/intake/schema"
	"ensemble/internal/intake/wizard"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
)

// Session is one applicant's draft-in-progress. The mutex serializes all
// wizard access; the wizard and draft themselves are not concurrency-safe.
type Session struct {
	ID      id.DraftID
	EventID id.EventID

	mu         sync.Mutex
	wizard     *wizard.Wizard
	submitting bool
	expiresAt  time.Time
}

// With runs fn while holding the session lock, giving it exclusive access to
// the wizard.
func (s *Session) With(fn func(w *wizard.Wizard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.wizard)
}

// BeginSubmit raises the single-flight submission guard. A second submission
// attempt while one is running reports conflict, so a double-click can never
// produce two registrations.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return dErrors.New(dErrors.CodeConflict, "a submission for this draft is already in flight")
	}
	s.submitting = true
	return nil
}

// EndSubmit lowers the guard.
func (s *Session) EndSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// InMemory is the draft session store. Sessions expire ttl after their last
// touch; Run sweeps them out.
type InMemory struct {
	sch *schema.Schema
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[id.DraftID]*Session

	// onExpire is invoked outside the lock for each reaped session.
	onExpire func(*Session)
}

// NewInMemory creates an empty session store over the given schema.
func NewInMemory(sch *schema.Schema, ttl time.Duration) *InMemory {
	return &InMemory{
		sch:      sch,
		ttl:      ttl,
		sessions: make(map[id.DraftID]*Session),
	}
}

// OnExpire registers a callback for reaped sessions. Call before Run.
func (s *InMemory) OnExpire(fn func(*Session)) { s.onExpire = fn }

// Create starts a fresh draft session for an event.
func (s *InMemory) Create(_ context.Context, eventID id.EventID) (*Session, error) {
	session := &Session{
		ID:        id.NewDraftID(),
		EventID:   eventID,
		wizard:    wizard.New(s.sch),
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session, nil
}

// Get returns the live session and extends its TTL.
func (s *InMemory) Get(_ context.Context, draftID id.DraftID) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	session.mu.Lock()
	if !session.expiresAt.After(time.Now()) {
		session.mu.Unlock()
		s.remove(draftID)
		return nil, sentinel.ErrExpired
	}
	session.expiresAt = time.Now().Add(s.ttl)
	session.mu.Unlock()
	return session, nil
}

// Delete destroys a session. Deleting an unknown session is a no-op.
func (s *InMemory) Delete(_ context.Context, draftID id.DraftID) error {
	s.remove(draftID)
	return nil
}

func (s *InMemory) remove(draftID id.DraftID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, draftID)
}

// Len reports the number of live sessions.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run sweeps expired sessions until the context is cancelled.
func (s *InMemory) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, expired := range s.sweep(now) {
				if s.onExpire != nil {
					s.onExpire(expired)
				}
			}
		}
	}
}

func (s *InMemory) sweep(now time.Time) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*Session
	for draftID, session := range s.sessions {
		session.mu.Lock()
		gone := !session.expiresAt.After(now) && !session.submitting
		session.mu.Unlock()
		if gone {
			expired = append(expired, session)
			delete(s.sessions, draftID)
		}
	}
	return expired
}
