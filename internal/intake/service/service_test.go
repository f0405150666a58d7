package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	eventmodels "ensemble/internal/event/models"
	"ensemble/internal/intake/metrics"
	"ensemble/internal/intake/schema"
	"ensemble/internal/intake/service/mocks"
	"ensemble/internal/intake/store"
	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
)

type IntakeSuite struct {
	suite.Suite
	ctrl               *gomock.Controller
	drafts             *store.InMemory
	mockEvents         *mocks.MockEventStore
	mockRegistrations  *mocks.MockRegistrationStore
	mockAuditPublisher *mocks.MockAuditPublisher
	service            *Service

	eventID id.EventID
	event   *eventmodels.Event
}

func TestIntakeSuite(t *testing.T) {
	suite.Run(t, new(IntakeSuite))
}

func (s *IntakeSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.drafts = store.NewInMemory(schema.Application(), time.Hour)
	s.mockEvents = mocks.NewMockEventStore(s.ctrl)
	s.mockRegistrations = mocks.NewMockRegistrationStore(s.ctrl)
	s.mockAuditPublisher = mocks.NewMockAuditPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.drafts, s.mockEvents, s.mockRegistrations, schema.Application(),
		WithLogger(logger),
		WithAuditPublisher(s.mockAuditPublisher),
	)

	s.eventID = id.NewEventID()
	s.event = &eventmodels.Event{ID: s.eventID, Name: "Autumn Auditions", Open: true}
}

func (s *IntakeSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *IntakeSuite) startDraft() *DraftView {
	s.mockEvents.EXPECT().FindByID(gomock.Any(), s.eventID).Return(s.event, nil)
	view, err := s.service.StartDraft(context.Background(), s.eventID)
	s.Require().NoError(err)
	return view
}

func (s *IntakeSuite) set(draftID id.DraftID, values map[string]string) *DraftView {
	view, err := s.service.SetFields(context.Background(), draftID, values)
	s.Require().NoError(err)
	return view
}

func (s *IntakeSuite) advance(draftID id.DraftID) *DraftView {
	view, err := s.service.Next(context.Background(), draftID)
	s.Require().NoError(err)
	return view
}

// completeDraft walks a draft through all three steps to the final step.
func (s *IntakeSuite) completeDraft() id.DraftID {
	view := s.startDraft()
	draftID := view.DraftID

	s.set(draftID, map[string]string{
		schema.FieldFullName:    "Asha Iyer",
		schema.FieldEmail:       "asha@example.edu",
		schema.FieldPhone:       "9876543210",
		schema.FieldYearOfStudy: schema.YearFirst,
	})
	view = s.advance(draftID)
	s.Require().Equal(2, view.Step)

	s.set(draftID, map[string]string{
		schema.FieldRegNum:     "MU2024001",
		schema.FieldDepartment: "Physics",
	})
	view = s.advance(draftID)
	s.Require().Equal(3, view.Step)

	s.set(draftID, map[string]string{
		schema.FieldInstrumentAvail: "no",
		schema.FieldPreferredRole:   "vocalist",
	})
	return draftID
}

func fieldView(view *DraftView, name string) FieldView {
	for _, f := range view.Fields {
		if f.Name == name {
			return f
		}
	}
	return FieldView{}
}

func (s *IntakeSuite) TestStartDraft() {
	view := s.startDraft()
	s.Equal(1, view.Step)
	s.Equal(3, view.TotalSteps)
	s.False(view.DraftID.IsZero())
	s.Len(view.Fields, 11)

	// Dependent fields start hidden.
	s.False(fieldView(view, schema.FieldInstrumentDetails).Visible)
	s.False(fieldView(view, schema.FieldLateralEntry).Visible)
}

func (s *IntakeSuite) TestStartDraftClosedEvent() {
	closed := &eventmodels.Event{ID: s.eventID, Name: "Past Event", Open: false}
	s.mockEvents.EXPECT().FindByID(gomock.Any(), s.eventID).Return(closed, nil)

	_, err := s.service.StartDraft(context.Background(), s.eventID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *IntakeSuite) TestSetFieldsRejectsUnknownField() {
	view := s.startDraft()
	_, err := s.service.SetFields(context.Background(), view.DraftID,
		map[string]string{"shoe_size": "42"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *IntakeSuite) TestHiddenFieldClearedOnControllerChange() {
	view := s.startDraft()
	draftID := view.DraftID

	s.set(draftID, map[string]string{schema.FieldInstrumentAvail: schema.InstrumentAvailable})
	view = s.set(draftID, map[string]string{schema.FieldInstrumentDetails: "Guitar"})
	s.Equal("Guitar", fieldView(view, schema.FieldInstrumentDetails).Value)

	view = s.set(draftID, map[string]string{schema.FieldInstrumentAvail: "no"})
	details := fieldView(view, schema.FieldInstrumentDetails)
	s.False(details.Visible)
	s.Empty(details.Value)
}

func (s *IntakeSuite) TestNextBlockedReportsFieldErrors() {
	view := s.startDraft()

	view = s.advance(view.DraftID)
	s.Equal(1, view.Step, "invalid step 1 must not advance")
	s.NotEmpty(fieldView(view, schema.FieldFullName).Errors)
}

func (s *IntakeSuite) TestUnknownDraft() {
	_, err := s.service.GetDraft(context.Background(), id.NewDraftID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IntakeSuite) TestSubmitBeforeFinalStep() {
	view := s.startDraft()

	_, err := s.service.Submit(context.Background(), view.DraftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *IntakeSuite) TestSubmitAcceptedDestroysDraft() {
	draftID := s.completeDraft()

	var created *models.Registration
	s.mockRegistrations.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, reg *models.Registration) error {
			created = reg
			return nil
		})
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	receipt, err := s.service.Submit(context.Background(), draftID)
	s.Require().NoError(err)
	s.Require().NotNil(created)
	s.Equal(created.ID, receipt.RegistrationID)
	s.Equal(s.eventID, receipt.EventID)
	s.Equal("Asha Iyer", created.DisplayName())
	s.Equal(models.StatusPending, created.RegistrationStatus)
	s.Equal(models.PaymentNotPaid, created.PaymentStatus)

	// The accepted draft is gone.
	_, err = s.service.GetDraft(context.Background(), draftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IntakeSuite) TestSubmitValidationFailureKeepsDraft() {
	draftID := s.completeDraft()
	// Hide-and-reveal: owning an instrument makes details required again,
	// and they are empty.
	s.set(draftID, map[string]string{schema.FieldInstrumentAvail: schema.InstrumentAvailable})

	_, err := s.service.Submit(context.Background(), draftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.FieldsOf(err), schema.FieldInstrumentDetails)

	// The draft survives with the errors attached to the right field.
	view, err := s.service.GetDraft(context.Background(), draftID)
	s.Require().NoError(err)
	s.NotEmpty(fieldView(view, schema.FieldInstrumentDetails).Errors)
}

func (s *IntakeSuite) TestSubmitRevalidatesEarlierSteps() {
	draftID := s.completeDraft()
	// Rewrite a step 1 answer while sitting on the final step. No Create
	// expectation: persistence must never be reached.
	s.set(draftID, map[string]string{schema.FieldEmail: "not-an-email"})

	_, err := s.service.Submit(context.Background(), draftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.FieldsOf(err), schema.FieldEmail)

	// The draft survives with the error on the rewritten field.
	view, err := s.service.GetDraft(context.Background(), draftID)
	s.Require().NoError(err)
	s.NotEmpty(fieldView(view, schema.FieldEmail).Errors)
}

func (s *IntakeSuite) TestSubmitStoreFieldErrorsMapOntoDraft() {
	draftID := s.completeDraft()

	s.mockRegistrations.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(dErrors.WithFields(dErrors.CodeValidation, "registration rejected",
			dErrors.Fields{schema.FieldRegNum: {"is already registered for this event"}}))

	_, err := s.service.Submit(context.Background(), draftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	view, err := s.service.GetDraft(context.Background(), draftID)
	s.Require().NoError(err)
	s.Equal([]string{"is already registered for this event"},
		fieldView(view, schema.FieldRegNum).Errors)
}

func (s *IntakeSuite) TestSubmitTransportFailureKeepsDraftClean() {
	draftID := s.completeDraft()

	s.mockRegistrations.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(sentinel.ErrUnavailable)

	_, err := s.service.Submit(context.Background(), draftID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// No field errors: the failure was not the applicant's fault, and the
	// answers are intact for a retry.
	view, err := s.service.GetDraft(context.Background(), draftID)
	s.Require().NoError(err)
	for _, f := range view.Fields {
		s.Empty(f.Errors)
	}
	s.Equal("Asha Iyer", fieldView(view, schema.FieldFullName).Value)
}

func (s *IntakeSuite) TestResetClearsDraft() {
	draftID := s.completeDraft()

	view, err := s.service.Reset(context.Background(), draftID)
	s.Require().NoError(err)
	s.Equal(1, view.Step)
	s.Empty(fieldView(view, schema.FieldFullName).Value)
}

// Blocked advances are counted on every step, including the last one, where
// Next also returns false for a fully valid draft.
func TestStepRejectionCountedOnFinalStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mocks.NewMockEventStore(ctrl)
	drafts := store.NewInMemory(schema.Application(), time.Hour)
	m := metrics.New()
	svc := New(drafts, events, mocks.NewMockRegistrationStore(ctrl), schema.Application(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(m),
	)

	ctx := context.Background()
	eventID := id.NewEventID()
	events.EXPECT().FindByID(gomock.Any(), eventID).
		Return(&eventmodels.Event{ID: eventID, Name: "Autumn Auditions", Open: true}, nil)

	view, err := svc.StartDraft(ctx, eventID)
	require.NoError(t, err)
	draftID := view.DraftID

	_, err = svc.SetFields(ctx, draftID, map[string]string{
		schema.FieldFullName:    "Asha Iyer",
		schema.FieldEmail:       "asha@example.edu",
		schema.FieldPhone:       "9876543210",
		schema.FieldYearOfStudy: schema.YearFirst,
	})
	require.NoError(t, err)
	view, err = svc.Next(ctx, draftID)
	require.NoError(t, err)
	require.Equal(t, 2, view.Step)

	_, err = svc.SetFields(ctx, draftID, map[string]string{
		schema.FieldRegNum:     "MU2024001",
		schema.FieldDepartment: "Physics",
	})
	require.NoError(t, err)
	view, err = svc.Next(ctx, draftID)
	require.NoError(t, err)
	require.Equal(t, 3, view.Step)

	// The final step is still empty, so this advance is a rejection.
	view, err = svc.Next(ctx, draftID)
	require.NoError(t, err)
	require.Equal(t, 3, view.Step)
	require.Equal(t, float64(1), promtestutil.ToFloat64(m.StepRejections))
}
