// Package service orchestrates application intake: draft lifecycle, field
// updates, step navigation, and the submission pipeline that turns a
// completed draft into a durable registration.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ensemble/internal/audit"
	eventmodels "ensemble/internal/event/models"
	"ensemble/internal/intake/metrics"
	"ensemble/internal/intake/schema"
	"ensemble/internal/intake/store"
	"ensemble/internal/intake/wizard"
	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
	"ensemble/pkg/requestcontext"
)

type DraftStore interface {
	Create(ctx context.Context, eventID id.EventID) (*store.Session, error)
	Get(ctx context.Context, draftID id.DraftID) (*store.Session, error)
	Delete(ctx context.Context, draftID id.DraftID) error
}

type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service drives the intake wizard server-side.
type Service struct {
	drafts         DraftStore
	events         EventStore
	registrations  RegistrationStore
	sch            *schema.Schema
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(drafts DraftStore, events EventStore, registrations RegistrationStore, sch *schema.Schema, opts ...Option) *Service {
	s := &Service{
		drafts:        drafts,
		events:        events,
		registrations: registrations,
		sch:           sch,
		logger:        slog.Default(),
		tracer:        otel.Tracer("ensemble/intake"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FieldView is one field of the draft as the applicant currently sees it.
type FieldView struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Step     int      `json:"step"`
	Options  []string `json:"options,omitempty"`
	Value    string   `json:"value"`
	Visible  bool     `json:"visible"`
	Required bool     `json:"required"`
	Errors   []string `json:"errors,omitempty"`
}

// DraftView is the full state of a draft: enough for a client to render the
// current step without further requests.
type DraftView struct {
	DraftID     id.DraftID  `json:"draft_id"`
	EventID     id.EventID  `json:"event_id"`
	Step        int         `json:"step"`
	TotalSteps  int         `json:"total_steps"`
	OnFinalStep bool        `json:"on_final_step"`
	Fields      []FieldView `json:"fields"`
}

// Receipt confirms an accepted submission.
type Receipt struct {
	RegistrationID id.RegistrationID `json:"registration_id"`
	EventID        id.EventID        `json:"event_id"`
	SubmittedAt    time.Time         `json:"submitted_at"`
}

// StartDraft opens a fresh draft against an event that is accepting
// applications.
func (s *Service) StartDraft(ctx context.Context, eventID id.EventID) (*DraftView, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	if err := event.CanAcceptApplications(); err != nil {
		return nil, err
	}

	session, err := s.drafts.Create(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create draft")
	}
	s.incrementDraftsStarted()
	return s.viewOf(session)
}

// GetDraft returns the current state of a draft.
func (s *Service) GetDraft(ctx context.Context, draftID id.DraftID) (*DraftView, error) {
	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(session)
}

// SetFields applies a batch of field updates. Updates are applied in schema
// declaration order so dependent-field clearing is deterministic regardless
// of request map ordering. Unknown fields reject the whole batch.
func (s *Service) SetFields(ctx context.Context, draftID id.DraftID, values map[string]string) (*DraftView, error) {
	for name := range values {
		if !s.sch.Has(name) {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown field %q", name)
		}
	}

	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	err = session.With(func(w *wizard.Wizard) error {
		for _, f := range s.sch.Fields() {
			if v, ok := values[f.Name]; ok {
				if err := w.Set(f.Name, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.viewOf(session)
}

// Next validates the current step and advances on success. Validation
// failures are not an error return: they surface as field errors in the view.
func (s *Service) Next(ctx context.Context, draftID id.DraftID) (*DraftView, error) {
	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	_ = session.With(func(w *wizard.Wizard) error {
		// Next returns false on the final step whether or not the step is
		// valid, so count rejections off the validation result itself.
		if len(w.ValidateCurrent()) > 0 {
			s.incrementStepRejection()
		}
		w.Next()
		return nil
	})
	return s.viewOf(session)
}

// Previous steps back without validating.
func (s *Service) Previous(ctx context.Context, draftID id.DraftID) (*DraftView, error) {
	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	_ = session.With(func(w *wizard.Wizard) error {
		w.Previous()
		return nil
	})
	return s.viewOf(session)
}

// Reset clears the draft to an empty step 1.
func (s *Service) Reset(ctx context.Context, draftID id.DraftID) (*DraftView, error) {
	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	_ = session.With(func(w *wizard.Wizard) error {
		w.Reset()
		return nil
	})
	return s.viewOf(session)
}

// Abandon discards the draft entirely.
func (s *Service) Abandon(ctx context.Context, draftID id.DraftID) error {
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete draft")
	}
	return nil
}

// Submit runs the submission pipeline: single-flight guard, final-step
// precondition, full-form validation, persistence. The whole visible form is
// re-validated even though every step was gated on the way in, because
// SetFields can rewrite an earlier step's answer at any time. Validation
// failures map onto the draft's field errors and the draft survives; only an
// accepted submission destroys it.
func (s *Service) Submit(ctx context.Context, draftID id.DraftID) (*Receipt, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "intake.Submit",
		trace.WithAttributes(attribute.String("draft.id", draftID.String())))
	defer span.End()

	session, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := session.BeginSubmit(); err != nil {
		return nil, err
	}
	defer session.EndSubmit()

	var reg *models.Registration
	err = session.With(func(w *wizard.Wizard) error {
		if !w.OnFinalStep() {
			return dErrors.New(dErrors.CodeInvariantViolation, "draft has not reached the final step")
		}
		if fieldErrs := w.ValidateAll(); len(fieldErrs) > 0 {
			w.Draft().SetErrors(fieldErrs)
			return dErrors.WithFields(dErrors.CodeValidation,
				"application has invalid fields", fieldErrs)
		}
		applicant := models.ApplicantFromForm(w.Draft().Values())
		reg = models.NewRegistration(session.EventID, applicant, requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		s.incrementSubmission("rejected")
		return nil, err
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		// Field-level rejections from the store map back onto the draft,
		// exactly as local validation failures do. Anything else leaves
		// the draft untouched for a retry.
		if fields := dErrors.FieldsOf(err); len(fields) > 0 {
			_ = session.With(func(w *wizard.Wizard) error {
				w.Draft().SetErrors(fields)
				return nil
			})
			s.incrementSubmission("rejected")
			return nil, err
		}
		s.incrementSubmission("failed")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save registration")
	}

	_ = s.drafts.Delete(ctx, draftID)
	s.logAudit(ctx, audit.Event{
		Action:         audit.ActionSubmitted,
		EventID:        session.EventID,
		RegistrationID: reg.ID,
	})
	s.incrementSubmission("accepted")
	s.observeSubmit(start)

	return &Receipt{
		RegistrationID: reg.ID,
		EventID:        session.EventID,
		SubmittedAt:    reg.CreatedAt,
	}, nil
}

func (s *Service) session(ctx context.Context, draftID id.DraftID) (*store.Session, error) {
	session, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "draft not found")
		case errors.Is(err, sentinel.ErrExpired):
			return nil, dErrors.New(dErrors.CodeNotFound, "draft has expired")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load draft")
		}
	}
	return session, nil
}

func (s *Service) viewOf(session *store.Session) (*DraftView, error) {
	view := &DraftView{
		DraftID: session.ID,
		EventID: session.EventID,
	}
	err := session.With(func(w *wizard.Wizard) error {
		view.Step = w.CurrentStep()
		view.TotalSteps = w.TotalSteps()
		view.OnFinalStep = w.OnFinalStep()

		d := w.Draft()
		vis := d.Visibility()
		errs := d.Errors()
		for _, f := range s.sch.Fields() {
			state := vis[f.Name]
			view.Fields = append(view.Fields, FieldView{
				Name:     f.Name,
				Label:    f.Label,
				Step:     f.Step,
				Options:  f.Options,
				Value:    d.Value(f.Name),
				Visible:  state.Visible,
				Required: state.Required,
				Errors:   errs[f.Name],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) logAudit(ctx context.Context, base audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	base.ClientIP = requestcontext.ClientIP(ctx)
	base.UserAgent = requestcontext.UserAgent(ctx)
	base.Device = requestcontext.Device(ctx)
	base.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, base); err != nil {
		s.logger.Warn("audit emit failed", "action", base.Action, "error", err)
	}
}

func (s *Service) incrementDraftsStarted() {
	if s.metrics != nil {
		s.metrics.IncrementDraftsStarted()
	}
}

func (s *Service) incrementStepRejection() {
	if s.metrics != nil {
		s.metrics.IncrementStepRejection()
	}
}

func (s *Service) incrementSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementSubmission(outcome)
	}
}

func (s *Service) observeSubmit(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSubmit(start)
	}
}
