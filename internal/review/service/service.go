// Package service orchestrates the registration review console: opening a
// per-event console session, deriving table views, running the two-phase
// decision workflow, and producing export rows.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ensemble/internal/audit"
	eventmodels "ensemble/internal/event/models"
	"ensemble/internal/review/action"
	"ensemble/internal/review/console"
	"ensemble/internal/review/metrics"
	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
	"ensemble/pkg/requestcontext"
)

type RegistrationStore interface {
	FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]models.Registration, error)
	Execute(ctx context.Context, regID id.RegistrationID,
		validate func(*models.Registration) error,
		mutate func(*models.Registration)) (*models.Registration, error)
}

type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

// Cache is the optional registration list read cache. Implementations must
// treat failures as misses.
type Cache interface {
	Get(ctx context.Context, eventID id.EventID) ([]models.Registration, bool)
	Set(ctx context.Context, eventID id.EventID, regs []models.Registration) error
	Invalidate(ctx context.Context, eventID id.EventID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service owns one console session per event plus the per-registration action
// manager. Registration state is only ever updated from store reads: after a
// decision succeeds the list is refetched, never patched in place.
type Service struct {
	registrations  RegistrationStore
	events         EventStore
	cache          Cache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	mu       sync.Mutex
	consoles map[id.EventID]*console.Console
	actions  *action.Manager
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

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New constructs a Service.
func New(registrations RegistrationStore, events EventStore, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		events:        events,
		logger:        slog.Default(),
		tracer:        otel.Tracer("ensemble/review"),
		consoles:      make(map[id.EventID]*console.Console),
		actions:       action.NewManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConsoleView couples the event header with one derived page of its
// registration table.
type ConsoleView struct {
	Event *eventmodels.Event
	Query console.Query
	View  console.View
}

// OpenConsole fetches the event and its registration list concurrently and
// starts (or restarts) the console session with default query state.
func (s *Service) OpenConsole(ctx context.Context, eventID id.EventID) (*ConsoleView, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "review.OpenConsole",
		trace.WithAttributes(attribute.String("event.id", eventID.String())))
	defer span.End()

	var event *eventmodels.Event
	var regs []models.Registration

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.events.FindByID(gctx, eventID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "event not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		regs, err = s.fetchRegistrations(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := console.New(eventID, regs)
	s.mu.Lock()
	s.consoles[eventID] = c
	s.mu.Unlock()

	s.incrementConsoleOpened()
	s.observeOpenConsole(start)
	return &ConsoleView{Event: event, Query: c.Query(), View: c.View()}, nil
}

// Query applies filter/sort/page state to the event's console and returns the
// derived page. A console is opened on demand so the read path has no
// ordering requirement on OpenConsole.
func (s *Service) Query(ctx context.Context, eventID id.EventID, q console.Query) (*ConsoleView, error) {
	c, event, err := s.consoleFor(ctx, eventID)
	if err != nil {
		return nil, err
	}
	applied, err := c.SetQuery(q)
	if err != nil {
		return nil, err
	}
	return &ConsoleView{Event: event, Query: applied, View: c.View()}, nil
}

// Detail returns the authoritative registration record plus any open review
// action for it.
func (s *Service) Detail(ctx context.Context, regID id.RegistrationID) (*models.Registration, *action.Action, error) {
	reg, err := s.findRegistration(ctx, regID)
	if err != nil {
		return nil, nil, err
	}
	if a, ok := s.actions.Get(regID); ok {
		return reg, &a, nil
	}
	return reg, nil, nil
}

// OpenReview begins the decision workflow for a pending registration.
func (s *Service) OpenReview(ctx context.Context, regID id.RegistrationID) (*action.Action, error) {
	reg, err := s.findRegistration(ctx, regID)
	if err != nil {
		return nil, err
	}
	return s.actions.Open(reg)
}

// ChooseDecision records a proposed status and moves the action to the
// confirming phase.
func (s *Service) ChooseDecision(_ context.Context, regID id.RegistrationID, proposed models.RegistrationStatus) error {
	return s.actions.Choose(regID, proposed)
}

// BackToChoosing discards the confirmed proposal.
func (s *Service) BackToChoosing(_ context.Context, regID id.RegistrationID) error {
	return s.actions.Back(regID)
}

// CloseReview abandons the workflow without mutating anything.
func (s *Service) CloseReview(_ context.Context, regID id.RegistrationID) error {
	return s.actions.Close(regID)
}

// Decide commits the confirmed decision. The sequence is: raise the in-flight
// guard, run the guarded status transition in the store, then refetch the
// event's list so the console only ever shows store state. A failed mutation
// returns the action to confirming so the reviewer can retry.
func (s *Service) Decide(ctx context.Context, eventID id.EventID, regID id.RegistrationID) (*models.Registration, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "review.Decide",
		trace.WithAttributes(
			attribute.String("event.id", eventID.String()),
			attribute.String("registration.id", regID.String()),
		))
	defer span.End()

	proposed, err := s.actions.Begin(regID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	updated, err := s.registrations.Execute(ctx, regID,
		func(reg *models.Registration) error {
			return reg.CanDecide(proposed)
		},
		func(reg *models.Registration) {
			reg.ApplyDecision(proposed, now)
		},
	)
	if err != nil {
		s.actions.Fail(regID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply decision")
	}
	s.actions.Complete(regID)

	s.refreshConsole(ctx, eventID)
	s.logAudit(ctx, audit.Event{
		Action:         audit.ActionDecided,
		EventID:        eventID,
		RegistrationID: regID,
		Decision:       string(updated.RegistrationStatus),
	})
	s.incrementDecision(string(updated.RegistrationStatus))
	s.observeDecide(start)
	return updated, nil
}

// Export returns the event header and every registration matching the
// console's current search and status filters, ignoring pagination.
func (s *Service) Export(ctx context.Context, eventID id.EventID) (*eventmodels.Event, []models.Registration, error) {
	c, event, err := s.consoleFor(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	rows := c.Filtered()
	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionExported,
		EventID: eventID,
	})
	return event, rows, nil
}

// consoleFor returns the open console for the event, opening one with default
// state if needed.
func (s *Service) consoleFor(ctx context.Context, eventID id.EventID) (*console.Console, *eventmodels.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}

	s.mu.Lock()
	c, ok := s.consoles[eventID]
	s.mu.Unlock()
	if ok {
		return c, event, nil
	}

	regs, err := s.fetchRegistrations(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	c = console.New(eventID, regs)
	s.mu.Lock()
	s.consoles[eventID] = c
	s.mu.Unlock()
	return c, event, nil
}

// refreshConsole performs the authoritative refetch after a mutation. The
// cached list is invalidated first so the fetch cannot serve the stale copy.
func (s *Service) refreshConsole(ctx context.Context, eventID id.EventID) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			s.logger.Warn("registration cache invalidation failed",
				"event_id", eventID, "error", err)
		}
	}
	regs, err := s.fetchRegistrations(ctx, eventID)
	if err != nil {
		s.logger.Warn("post-decision refetch failed, console keeps previous list",
			"event_id", eventID, "error", err)
		return
	}
	s.mu.Lock()
	c, ok := s.consoles[eventID]
	s.mu.Unlock()
	if ok {
		c.Replace(regs)
	}
}

func (s *Service) fetchRegistrations(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	if s.cache != nil {
		if regs, ok := s.cache.Get(ctx, eventID); ok {
			s.incrementCacheHit()
			return regs, nil
		}
		s.incrementCacheMiss()
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, eventID, regs); err != nil {
			s.logger.Warn("registration cache write failed",
				"event_id", eventID, "error", err)
		}
	}
	return regs, nil
}

func (s *Service) findRegistration(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return reg, nil
}

func (s *Service) logAudit(ctx context.Context, base audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	base.ReviewerID = requestcontext.ReviewerID(ctx)
	base.ClientIP = requestcontext.ClientIP(ctx)
	base.UserAgent = requestcontext.UserAgent(ctx)
	base.Device = requestcontext.Device(ctx)
	base.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, base); err != nil {
		s.logger.Warn("audit emit failed", "action", base.Action, "error", err)
	}
}

func (s *Service) incrementConsoleOpened() {
	if s.metrics != nil {
		s.metrics.IncrementConsoleOpened()
	}
}

func (s *Service) incrementDecision(status string) {
	if s.metrics != nil {
		s.metrics.IncrementDecision(status)
	}
}

func (s *Service) incrementCacheHit() {
	if s.metrics != nil {
		s.metrics.IncrementCacheHit()
	}
}

func (s *Service) incrementCacheMiss() {
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss()
	}
}

func (s *Service) observeOpenConsole(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOpenConsole(start)
	}
}

func (s *Service) observeDecide(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDecide(start)
	}
}
