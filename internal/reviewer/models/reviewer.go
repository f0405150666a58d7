// Package models defines the reviewer account record.
package models

import (
	"strings"
	"time"

	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

// Reviewer is a club member allowed into the review console. The password is
// only ever stored as a bcrypt hash.
type Reviewer struct {
	ID           id.ReviewerID `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewReviewer creates a reviewer account with an already-hashed password.
func NewReviewer(email, name, passwordHash string, now time.Time) (*Reviewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password hash cannot be empty")
	}
	return &Reviewer{
		ID:           id.NewReviewerID(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}
