package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", time.Hour)
	reviewerID := id.NewReviewerID()

	tok, err := svc.Generate(reviewerID, "reviewer@example.edu", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, reviewerID.String(), claims.ReviewerID)
	assert.Equal(t, "reviewer@example.edu", claims.Email)
	assert.Equal(t, "ensemble", claims.Issuer)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", time.Minute)

	tok, err := svc.Generate(id.NewReviewerID(), "reviewer@example.edu",
		time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewService("key-one", time.Hour)
	verifier := NewService("key-two", time.Hour)

	tok, err := issuer.Generate(id.NewReviewerID(), "reviewer@example.edu", time.Now())
	require.NoError(t, err)

	_, err = verifier.Validate(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := NewService("test-signing-key", time.Hour)
	reviewerID := id.NewReviewerID()

	tok, err := svc.Generate(reviewerID, "reviewer@example.edu", time.Now())
	require.NoError(t, err)

	claims, err := NewMiddlewareAdapter(svc).ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, reviewerID, claims.ReviewerID)
	assert.Equal(t, "reviewer@example.edu", claims.Email)

	_, err = NewMiddlewareAdapter(svc).ValidateToken("garbage")
	require.Error(t, err)
}
