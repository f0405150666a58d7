package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/sentinel"
)

// Postgres persists registrations in PostgreSQL.
//
// Schema (migrations live alongside deployment tooling):
//
//	CREATE TABLE registrations (
//	    id                  UUID PRIMARY KEY,
//	    event_id            UUID NOT NULL,
//	    applicant_id        UUID NOT NULL,
//	    full_name           TEXT NOT NULL,
//	    email               TEXT NOT NULL,
//	    phone               TEXT NOT NULL,
//	    year_of_study       TEXT NOT NULL,
//	    lateral_entry       TEXT NOT NULL DEFAULT '',
//	    reg_num             TEXT NOT NULL,
//	    department          TEXT NOT NULL,
//	    instrument_avail    TEXT NOT NULL,
//	    instrument_details  TEXT NOT NULL DEFAULT '',
//	    experience_years    TEXT NOT NULL DEFAULT '',
//	    preferred_role      TEXT NOT NULL,
//	    payment_status      TEXT NOT NULL,
//	    registration_status TEXT NOT NULL,
//	    payment_reference   TEXT NOT NULL DEFAULT '',
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    updated_at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX registrations_event_idx ON registrations (event_id, created_at);
//	CREATE UNIQUE INDEX registrations_event_reg_num_idx
//	    ON registrations (event_id, reg_num) WHERE reg_num <> '';
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const registrationColumns = `
	id, event_id, applicant_id, full_name, email, phone, year_of_study,
	lateral_entry, reg_num, department, instrument_avail, instrument_details,
	experience_years, preferred_role, payment_status, registration_status,
	payment_reference, created_at, updated_at`

// Create persists a new registration. A registration number may appear at
// most once per event; an empty number is exempt.
func (s *Postgres) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(reg.ID), uuid.UUID(reg.EventID), uuid.UUID(reg.Applicant.ID),
		reg.Applicant.FullName, reg.Applicant.Email, reg.Applicant.Phone,
		reg.Applicant.YearOfStudy, reg.Applicant.LateralEntry, reg.Applicant.RegNum,
		reg.Applicant.Department, reg.Applicant.InstrumentAvail, reg.Applicant.InstrumentDetails,
		reg.Applicant.ExperienceYears, reg.Applicant.PreferredRole,
		string(reg.PaymentStatus), string(reg.RegistrationStatus), reg.PaymentReference,
		reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "registrations_event_reg_num_idx" {
				return errDuplicateRegNum()
			}
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID fetches a single registration.
func (s *Postgres) FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(s.db.QueryRowContext(ctx, query, uuid.UUID(regID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

// ListByEvent fetches the full registration list for an event, oldest first.
func (s *Postgres) ListByEvent(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations WHERE event_id = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(eventID))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

// Execute runs the validate-then-mutate pair inside a transaction holding a
// row lock (SELECT ... FOR UPDATE), so a concurrent decision cannot
// interleave between the status check and the status write.
func (s *Postgres) Execute(
	ctx context.Context,
	regID id.RegistrationID,
	validate func(*models.Registration) error,
	mutate func(*models.Registration),
) (*models.Registration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin decision tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1 FOR UPDATE`
	reg, err := scanRegistration(tx.QueryRowContext(ctx, query, uuid.UUID(regID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	if err := validate(reg); err != nil {
		return nil, err
	}
	mutate(reg)

	_, err = tx.ExecContext(ctx, `
		UPDATE registrations
		SET registration_status = $2, payment_status = $3, updated_at = $4
		WHERE id = $1
	`, uuid.UUID(reg.ID), string(reg.RegistrationStatus), string(reg.PaymentStatus), reg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decision: %w", err)
	}
	return reg, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var regID, eventID, applicantID uuid.UUID
	var paymentStatus, regStatus string
	err := row.Scan(
		&regID, &eventID, &applicantID,
		&reg.Applicant.FullName, &reg.Applicant.Email, &reg.Applicant.Phone,
		&reg.Applicant.YearOfStudy, &reg.Applicant.LateralEntry, &reg.Applicant.RegNum,
		&reg.Applicant.Department, &reg.Applicant.InstrumentAvail, &reg.Applicant.InstrumentDetails,
		&reg.Applicant.ExperienceYears, &reg.Applicant.PreferredRole,
		&paymentStatus, &regStatus, &reg.PaymentReference,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.ID = id.RegistrationID(regID)
	reg.EventID = id.EventID(eventID)
	reg.Applicant.ID = id.ApplicantID(applicantID)
	reg.PaymentStatus = models.PaymentStatus(paymentStatus)
	reg.RegistrationStatus = models.RegistrationStatus(regStatus)
	return &reg, nil
}
