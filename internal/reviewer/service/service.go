// Package service handles reviewer account management and console login.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"

	"ensemble/internal/audit"
	"ensemble/internal/reviewer/models"
	"ensemble/internal/reviewer/secrets"
	"ensemble/internal/reviewer/token"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/sentinel"
	"ensemble/pkg/requestcontext"
)

type ReviewerStore interface {
	Create(ctx context.Context, reviewer *models.Reviewer) error
	FindByEmail(ctx context.Context, email string) (*models.Reviewer, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service issues reviewer sessions against stored accounts.
type Service struct {
	reviewers      ReviewerStore
	tokens         *token.Service
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

// New constructs a Service.
func New(reviewers ReviewerStore, tokens *token.Service, opts ...Option) *Service {
	s := &Service{
		reviewers: reviewers,
		tokens:    tokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is a successful login result.
type Session struct {
	Token    string           `json:"token"`
	Reviewer *models.Reviewer `json:"reviewer"`
}

// Register creates a reviewer account from a plaintext password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*models.Reviewer, error) {
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, err
	}
	reviewer, err := models.NewReviewer(email, name, hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.reviewers.Create(ctx, reviewer); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reviewer")
	}
	return reviewer, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords return the same unauthorized error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	reviewer, err := s.reviewers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reviewer")
	}
	if err := secrets.Verify(password, reviewer.PasswordHash); err != nil {
		return nil, err
	}

	tok, err := s.tokens.Generate(reviewer.ID, reviewer.Email, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.logAudit(ctx, reviewer)
	return &Session{Token: tok, Reviewer: reviewer}, nil
}

func (s *Service) logAudit(ctx context.Context, reviewer *models.Reviewer) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Action:     audit.ActionLogin,
		ReviewerID: reviewer.ID,
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		Device:     requestcontext.Device(ctx),
		RequestID:  requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
