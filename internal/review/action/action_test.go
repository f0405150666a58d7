package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

func pendingRegistration(t *testing.T) *models.Registration {
	t.Helper()
	return models.NewRegistration(id.NewEventID(), models.Applicant{
		ID:       id.NewApplicantID(),
		FullName: "Asha Iyer",
	}, time.Now())
}

func TestOpenStartsChoosing(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)

	a, err := m.Open(reg)
	require.NoError(t, err)
	assert.Equal(t, PhaseChoosing, a.Phase)
	assert.False(t, a.InFlight)
}

func TestOpenTerminalRegistrationRejected(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	reg.ApplyDecision(models.StatusConfirmed, time.Now())

	_, err := m.Open(reg)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestChooseThenBack(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)

	require.NoError(t, m.Choose(reg.ID, models.StatusConfirmed))
	a, ok := m.Get(reg.ID)
	require.True(t, ok)
	assert.Equal(t, PhaseConfirming, a.Phase)
	assert.Equal(t, models.StatusConfirmed, a.Proposed)

	// Re-choosing replaces the proposal without leaving confirming.
	require.NoError(t, m.Choose(reg.ID, models.StatusCancelled))
	a, _ = m.Get(reg.ID)
	assert.Equal(t, models.StatusCancelled, a.Proposed)

	require.NoError(t, m.Back(reg.ID))
	a, _ = m.Get(reg.ID)
	assert.Equal(t, PhaseChoosing, a.Phase)
	assert.Empty(t, a.Proposed)
}

func TestChooseRejectsNonDecisionStatus(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)

	err = m.Choose(reg.ID, models.StatusPending)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	// Rejected is reserved for the intake pipeline, not the review console.
	err = m.Choose(reg.ID, models.StatusRejected)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestBeginRequiresConfirmation(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)

	_, err = m.Begin(reg.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestDoubleBeginConflicts(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)
	require.NoError(t, m.Choose(reg.ID, models.StatusConfirmed))

	proposed, err := m.Begin(reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, proposed)

	// A second begin while the first is in flight must not produce a
	// second mutation.
	_, err = m.Begin(reg.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestFailReturnsToConfirming(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)
	require.NoError(t, m.Choose(reg.ID, models.StatusCancelled))
	_, err = m.Begin(reg.ID)
	require.NoError(t, err)

	m.Fail(reg.ID)
	a, ok := m.Get(reg.ID)
	require.True(t, ok)
	assert.Equal(t, PhaseConfirming, a.Phase)
	assert.False(t, a.InFlight)
	assert.Equal(t, models.StatusCancelled, a.Proposed)

	// Retry proceeds without re-choosing.
	_, err = m.Begin(reg.ID)
	require.NoError(t, err)
}

func TestCompleteDestroysAction(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)
	require.NoError(t, m.Choose(reg.ID, models.StatusConfirmed))
	_, err = m.Begin(reg.ID)
	require.NoError(t, err)

	m.Complete(reg.ID)
	_, ok := m.Get(reg.ID)
	assert.False(t, ok)
}

func TestCloseBlockedWhileInFlight(t *testing.T) {
	m := NewManager()
	reg := pendingRegistration(t)
	_, err := m.Open(reg)
	require.NoError(t, err)
	require.NoError(t, m.Choose(reg.ID, models.StatusConfirmed))
	_, err = m.Begin(reg.ID)
	require.NoError(t, err)

	err = m.Close(reg.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	m.Fail(reg.ID)
	require.NoError(t, m.Close(reg.ID))
	_, ok := m.Get(reg.ID)
	assert.False(t, ok)
}

func TestActionsAreIndependentPerRegistration(t *testing.T) {
	m := NewManager()
	first := pendingRegistration(t)
	second := pendingRegistration(t)

	_, err := m.Open(first)
	require.NoError(t, err)
	_, err = m.Open(second)
	require.NoError(t, err)

	require.NoError(t, m.Choose(first.ID, models.StatusConfirmed))
	_, err = m.Begin(first.ID)
	require.NoError(t, err)

	// The in-flight guard on one registration never blocks another.
	require.NoError(t, m.Choose(second.ID, models.StatusCancelled))
	_, err = m.Begin(second.ID)
	require.NoError(t, err)
}
