package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ensemble/pkg/domain-errors"
)

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a uuid", "not-a-uuid"},
		{"nil uuid", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEventID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw := uuid.NewString()

	eventID, err := ParseEventID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, eventID.String())
	assert.False(t, eventID.IsZero())

	regID, err := ParseRegistrationID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, regID.String())

	draftID, err := ParseDraftID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, draftID.String())
}

func TestNewIDsAreDistinct(t *testing.T) {
	assert.NotEqual(t, NewEventID(), NewEventID())
	assert.False(t, NewRegistrationID().IsZero())
}

func TestJSONMarshalsAsUUIDString(t *testing.T) {
	eventID := NewEventID()

	raw, err := json.Marshal(eventID)
	require.NoError(t, err)
	assert.Equal(t, `"`+eventID.String()+`"`, string(raw))

	var decoded EventID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, eventID, decoded)
}
