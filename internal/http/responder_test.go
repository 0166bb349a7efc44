package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
)

func TestResponder_HandleServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		err               error
		expectedStatus    int
		expectedErrorCode string
	}{
		{
			name:              "invalid credentials",
			err:               application.ErrInvalidCredentials,
			expectedStatus:    http.StatusUnauthorized,
			expectedErrorCode: "AUTH_INVALID_CREDENTIALS",
		},
		{
			name:              "expired session",
			err:               application.ErrSessionExpired,
			expectedStatus:    http.StatusUnauthorized,
			expectedErrorCode: "AUTH_SESSION_EXPIRED",
		},
		{
			name:              "disabled account",
			err:               application.ErrAccountDisabled,
			expectedStatus:    http.StatusForbidden,
			expectedErrorCode: "AUTH_ACCOUNT_DISABLED",
		},
		{
			name:              "missing permission",
			err:               application.ErrUnauthorized,
			expectedStatus:    http.StatusForbidden,
			expectedErrorCode: "AUTH_FORBIDDEN",
		},
		{
			name:           "unknown resource",
			err:            application.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:              "insufficient balance",
			err:               application.ErrInsufficientBalance,
			expectedStatus:    http.StatusPaymentRequired,
			expectedErrorCode: "WALLET_INSUFFICIENT_BALANCE",
		},
		{
			name:           "no copies available",
			err:            application.ErrNoCopiesAvailable,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid state",
			err:            application.ErrAlreadyReturned,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "wrapped invalid state",
			err:            errors.Join(errors.New("return failed"), application.ErrAlreadyReturned),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unexpected error",
			err:            errors.New("database gone"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recorder := httptest.NewRecorder()
			responder := newResponder(nil)
			responder.handleServiceError(context.Background(), recorder, tc.err)

			if recorder.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
			}

			var body errorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.ErrorCode != tc.expectedErrorCode {
				t.Fatalf("expected error code %q, got %q", tc.expectedErrorCode, body.ErrorCode)
			}
			if body.Message == "" {
				t.Fatal("expected a human readable message")
			}
		})
	}
}

func TestResponder_HandleServiceErrorValidation(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{"email": "email is invalid"}}

	recorder := httptest.NewRecorder()
	responder := newResponder(nil)
	responder.handleServiceError(context.Background(), recorder, vErr)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Errors["email"] != "email is invalid" {
		t.Fatalf("expected field errors to survive serialization, got %+v", body.Errors)
	}
}

func TestResponder_WriteJSONNoContent(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	responder := newResponder(nil)
	responder.writeJSON(context.Background(), recorder, http.StatusNoContent, map[string]string{"ignored": "yes"})

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
	if recorder.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", recorder.Body.String())
	}
}
