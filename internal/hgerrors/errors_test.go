package hgerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHgError_Unwrap_PreservesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(CodeCacheInconsistency, cause)

	require.NotNil(t, wrapped)
	assert.Equal(t, cause, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}

func TestHgError_Is_MatchesByCode(t *testing.T) {
	err := New(CodeNoMatch, "first atom of 'xyz' not in graph")
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.False(t, errors.Is(err, ErrInvalidEndBound))
}

func TestHgError_Error_FormatsCodeAndMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"empty pattern", CodeEmptyPattern, "pattern is empty", "[ERR_EMPTY_PATTERN] pattern is empty"},
		{"width mismatch", CodeWidthMismatch, "2 != 3", "[ERR_WIDTH_MISMATCH] 2 != 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestHgError_WithDetail_Chains(t *testing.T) {
	err := New(CodeInvalidEndBound, "checkpoint is 0").WithDetail("root", "42")
	assert.Equal(t, "42", err.Details["root"])
}

func TestAssert_PanicsOnFalse(t *testing.T) {
	assert.Panics(t, func() {
		Assert(false, "width %d must be positive", -1)
	})
}

func TestAssert_NoPanicOnTrue(t *testing.T) {
	assert.NotPanics(t, func() {
		Assert(true, "unreachable")
	})
}
