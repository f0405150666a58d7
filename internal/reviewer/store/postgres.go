package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ensemble/internal/reviewer/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/sentinel"
)

// Postgres persists reviewer accounts in PostgreSQL.
//
//	CREATE TABLE reviewers (
//	    id            UUID PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    name          TEXT NOT NULL,
//	    password_hash TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const reviewerColumns = `id, email, name, password_hash, created_at`

func (s *Postgres) Create(ctx context.Context, reviewer *models.Reviewer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviewers (`+reviewerColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(reviewer.ID), strings.ToLower(reviewer.Email), reviewer.Name,
		reviewer.PasswordHash, reviewer.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create reviewer: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewerColumns+` FROM reviewers WHERE id = $1`, uuid.UUID(reviewerID))
	return scanReviewer(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Reviewer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewerColumns+` FROM reviewers WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanReviewer(row)
}

func scanReviewer(row *sql.Row) (*models.Reviewer, error) {
	var reviewer models.Reviewer
	var reviewerID uuid.UUID
	err := row.Scan(&reviewerID, &reviewer.Email, &reviewer.Name,
		&reviewer.PasswordHash, &reviewer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find reviewer: %w", err)
	}
	reviewer.ID = id.ReviewerID(reviewerID)
	return &reviewer, nil
}
