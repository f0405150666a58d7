// Package export projects registration lists into tabular form and renders
// spreadsheet downloads for the review console.
package export

import (
	"time"

	"ensemble/internal/review/models"
	dErrors "ensemble/pkg/domain-errors"
)

// Columns is the fixed header row. The column set never varies with filters
// or field visibility: a hidden intake field exports as an empty cell, so
// every export of the same event lines up.
var Columns = []string{
	"Full Name",
	"Email",
	"Phone",
	"Year of Study",
	"Lateral Entry",
	"Registration Number",
	"Department",
	"Instrument Available",
	"Instrument Details",
	"Experience (Years)",
	"Preferred Role",
	"Payment Status",
	"Payment Reference",
	"Registration Status",
	"Submitted At",
}

// Project maps registrations onto rows in Columns order. The input order is
// preserved; callers pass the filtered list they want exported.
func Project(regs []models.Registration) ([][]string, error) {
	if len(regs) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "nothing to export")
	}
	rows := make([][]string, 0, len(regs))
	for i := range regs {
		rows = append(rows, projectRow(&regs[i]))
	}
	return rows, nil
}

func projectRow(r *models.Registration) []string {
	a := r.Applicant
	return []string{
		a.FullName,
		a.Email,
		a.Phone,
		a.YearOfStudy,
		a.LateralEntry,
		a.RegNum,
		a.Department,
		a.InstrumentAvail,
		a.InstrumentDetails,
		a.ExperienceYears,
		a.PreferredRole,
		string(r.PaymentStatus),
		r.PaymentReference,
		string(r.RegistrationStatus),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
