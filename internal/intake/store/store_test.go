package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ensemble/internal/intake/schema"
	"ensemble/internal/intake/wizard"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemory(schema.Application(), time.Hour)
	s.ctx = context.Background()
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) TestCreateAndGet() {
	eventID := id.NewEventID()
	session, err := s.store.Create(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(eventID, session.EventID)
	s.False(session.ID.IsZero())

	got, err := s.store.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)

	_, err = s.store.Get(s.ctx, id.NewDraftID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestSessionsAreIndependent() {
	first, err := s.store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	s.Require().NoError(first.With(func(w *wizard.Wizard) error {
		return w.Set(schema.FieldFullName, "Asha Iyer")
	}))

	s.Require().NoError(second.With(func(w *wizard.Wizard) error {
		s.Empty(w.Draft().Value(schema.FieldFullName))
		return nil
	}))
}

func (s *SessionStoreSuite) TestExpiredSessionIsGone() {
	store := NewInMemory(schema.Application(), time.Millisecond)
	session, err := store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)
	_, err = store.Get(s.ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrExpired)
	s.Equal(0, store.Len())
}

func (s *SessionStoreSuite) TestGetExtendsTTL() {
	store := NewInMemory(schema.Application(), 50*time.Millisecond)
	session, err := store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		_, err = store.Get(s.ctx, session.ID)
		s.Require().NoError(err, "an active draft must not expire under the applicant")
	}
}

func (s *SessionStoreSuite) TestSubmitGuardSingleFlight() {
	session, err := s.store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	s.Require().NoError(session.BeginSubmit())

	err = session.BeginSubmit()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	session.EndSubmit()
	s.Require().NoError(session.BeginSubmit())
}

func (s *SessionStoreSuite) TestSweepReapsOnlyExpired() {
	store := NewInMemory(schema.Application(), 10*time.Millisecond)
	old, err := store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	time.Sleep(15 * time.Millisecond)
	fresh, err := store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)

	var reaped []*Session
	store.OnExpire(func(sess *Session) { reaped = append(reaped, sess) })
	for _, expired := range store.sweep(time.Now()) {
		store.onExpire(expired)
	}

	s.Require().Len(reaped, 1)
	s.Equal(old.ID, reaped[0].ID)
	s.Equal(1, store.Len())
	_, err = store.Get(s.ctx, fresh.ID)
	s.Require().NoError(err)
}

func (s *SessionStoreSuite) TestSweepSparesInFlightSubmission() {
	store := NewInMemory(schema.Application(), time.Millisecond)
	session, err := store.Create(s.ctx, id.NewEventID())
	s.Require().NoError(err)
	s.Require().NoError(session.BeginSubmit())

	time.Sleep(5 * time.Millisecond)
	s.Empty(store.sweep(time.Now()), "a submitting draft is never reaped")
	s.Equal(1, store.Len())
}
