package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ensemble/internal/event/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/sentinel"
)

// Postgres persists events in PostgreSQL.
//
//	CREATE TABLE events (
//	    id          UUID PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    description TEXT NOT NULL DEFAULT '',
//	    venue       TEXT NOT NULL DEFAULT '',
//	    starts_at   TIMESTAMPTZ NOT NULL,
//	    open        BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, name, description, venue, starts_at, open, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(event.ID), event.Name, event.Description, event.Venue,
		event.StartsAt, event.Open, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, uuid.UUID(eventID))
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

func (s *Postgres) List(ctx context.Context, search string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY starts_at, id
	`, search)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var eventID uuid.UUID
	err := row.Scan(&eventID, &event.Name, &event.Description, &event.Venue,
		&event.StartsAt, &event.Open, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	event.ID = id.EventID(eventID)
	return &event, nil
}
