package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "not found", err: WrapLoanNotFound(7), expected: KindNotFound},
		{name: "forbidden", err: WrapForbidden(7), expected: KindForbidden},
		{name: "elevated role", err: WrapElevatedRoleRequired("create loans"), expected: KindForbidden},
		{name: "not active", err: WrapLoanNotActive(7), expected: KindInvalidState},
		{name: "paid off", err: WrapLoanPaidOff(7), expected: KindInvalidState},
		{name: "already confirmed", err: WrapAlreadyConfirmed(7, "2026-10-15"), expected: KindInvalidState},
		{name: "daily exceeds total", err: WrapDailyExceedsTotal("200", "100"), expected: KindInvalidState},
		{name: "validation", err: WrapValidation(errors.New("bad field")), expected: KindInvalidState},
		{name: "database", err: WrapDatabaseError(errors.New("conn refused")), expected: KindInternal},
		{name: "inconsistent loan", err: WrapInvalidLoanState(7, "daily amount is zero"), expected: KindInternal},
		{name: "wrapped business error", err: fmt.Errorf("outer: %w", WrapLoanNotFound(1)), expected: KindNotFound},
		{name: "plain error", err: errors.New("boom"), expected: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestBusinessError_UnwrapsSentinel(t *testing.T) {
	err := WrapLoanPaidOff(42)

	assert.ErrorIs(t, err, ErrLoanPaidOff)
	assert.Contains(t, err.Error(), ErrCodeLoanPaidOff)
	assert.Contains(t, err.Error(), "42")
}

func TestWrapValidation_KeepsCause(t *testing.T) {
	cause := errors.New("total_amount is required")
	err := WrapValidation(cause)

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
}
