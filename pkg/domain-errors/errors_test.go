package derrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "registration not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped cause keeps its code reachable", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "registration is terminal")
		outer := Wrap(inner, CodeConflict, "cannot review registration")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeInvariantViolation))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(fmt.Errorf("query registrations: %w", cause), CodeInternal, "store failure")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestFieldsOf(t *testing.T) {
	t.Run("carries field messages", func(t *testing.T) {
		err := WithFields(CodeValidation, "application has errors", Fields{
			"email":   {"must be a valid email"},
			"reg_num": {"is required"},
		})
		fields := FieldsOf(err)
		require.Len(t, fields, 2)
		assert.Equal(t, []string{"is required"}, fields["reg_num"])
	})

	t.Run("reaches through wrapping", func(t *testing.T) {
		inner := WithFields(CodeValidation, "bad fields", Fields{"phone": {"too short"}})
		outer := Wrap(inner, CodeBadRequest, "submission rejected")
		assert.Equal(t, []string{"too short"}, FieldsOf(outer)["phone"])
	})

	t.Run("nil for non-field errors", func(t *testing.T) {
		assert.Nil(t, FieldsOf(New(CodeInternal, "db down")))
		assert.Nil(t, FieldsOf(errors.New("plain")))
	})
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")))
}
