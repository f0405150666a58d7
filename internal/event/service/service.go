// Package service exposes the event catalog applicants pick from.
package service

import (
	"context"
	"errors"
	"log/slog"

	"ensemble/internal/event/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
)

type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context, search string) ([]models.Event, error)
}

// Service reads the event catalog.
type Service struct {
	events EventStore
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(events EventStore, opts ...Option) *Service {
	s := &Service{events: events, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// List returns one page of events whose name matches the search, soonest
// first, plus the total match count. Pages are zero-based; out-of-range
// paging values are clamped rather than rejected.
func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]models.Event, int, error) {
	events, err := s.events.List(ctx, search)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}

	if page < 0 {
		page = 0
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total := len(events)
	start := page * perPage
	if start >= total {
		return []models.Event{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return events[start:end], total, nil
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return event, nil
}
