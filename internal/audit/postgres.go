package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "ensemble/pkg/domain"
)

// Postgres persists audit events.
//
//	CREATE TABLE audit_events (
//	    ts              TIMESTAMPTZ NOT NULL,
//	    action          TEXT NOT NULL,
//	    reviewer_id     UUID,
//	    event_id        UUID,
//	    registration_id UUID,
//	    decision        TEXT NOT NULL DEFAULT '',
//	    client_ip       TEXT NOT NULL DEFAULT '',
//	    user_agent      TEXT NOT NULL DEFAULT '',
//	    device          TEXT NOT NULL DEFAULT '',
//	    request_id      TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_events_registration_idx ON audit_events (registration_id, ts);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			ts, action, reviewer_id, event_id, registration_id,
			decision, client_ip, user_agent, device, request_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		event.Timestamp, event.Action,
		nullableUUID(uuid.UUID(event.ReviewerID)),
		nullableUUID(uuid.UUID(event.EventID)),
		nullableUUID(uuid.UUID(event.RegistrationID)),
		event.Decision, event.ClientIP, event.UserAgent, event.Device, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Postgres) ListByRegistration(ctx context.Context, regID id.RegistrationID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, action, COALESCE(reviewer_id, $2), COALESCE(event_id, $2),
		       COALESCE(registration_id, $2), decision, client_ip, user_agent,
		       device, request_id
		FROM audit_events WHERE registration_id = $1 ORDER BY ts
	`, uuid.UUID(regID), uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var reviewerID, eventID, registrationID uuid.UUID
		if err := rows.Scan(
			&e.Timestamp, &e.Action, &reviewerID, &eventID, &registrationID,
			&e.Decision, &e.ClientIP, &e.UserAgent, &e.Device, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ReviewerID = id.ReviewerID(reviewerID)
		e.EventID = id.EventID(eventID)
		e.RegistrationID = id.RegistrationID(registrationID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}

func nullableUUID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}
