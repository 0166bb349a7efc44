package application

import (
	"errors"
	"testing"
)

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "unauthenticated", err: ErrUnauthenticated, expected: "unauthenticated"},
		{name: "unauthorized", err: ErrUnauthorized, expected: "unauthorized"},
		{name: "not found", err: ErrNotFound, expected: "not_found"},
		{name: "insufficient balance", err: ErrInsufficientBalance, expected: "insufficient_balance"},
		{name: "no copies", err: ErrNoCopiesAvailable, expected: "capacity_exceeded"},
		{name: "invalid state sentinel", err: ErrAlreadyReturned, expected: "invalid_state"},
		{name: "session expired", err: ErrSessionExpired, expected: "session_expired"},
		{name: "wrapped sentinel", err: errors.Join(errors.New("borrow failed"), ErrNotFound), expected: "not_found"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"email": "bad"}}, expected: "validation"},
		{name: "unexpected", err: errors.New("database gone"), expected: "unexpected"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ErrorKind(tc.err); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
