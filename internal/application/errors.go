package application

import "errors"

var (
	// ErrUnauthenticated is returned when no valid caller identity is present.
	ErrUnauthenticated = errors.New("application: authentication required")
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidState is the base error for operations attempted against an
	// entity whose current state forbids them. The specialised sentinels below
	// wrap it so callers can match either the broad class or the exact cause.
	ErrInvalidState = errors.New("application: invalid state")

	// ErrAlreadyExists is returned when a unique resource would be duplicated.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for failed authentication attempts.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled account attempts to authenticate.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when a session token has passed its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// Wallet errors.
var (
	// ErrInsufficientBalance is returned when a debit exceeds the wallet balance.
	ErrInsufficientBalance = errors.New("application: insufficient balance")
	// ErrWalletFrozen is returned when a credit or debit targets a frozen wallet.
	ErrWalletFrozen = invalidState("wallet frozen")
)

// Library errors.
var (
	// ErrNoCopiesAvailable is returned when a book has no available copies.
	ErrNoCopiesAvailable = errors.New("application: no copies available")
	// ErrAlreadyBorrowed is returned when the user already holds an
	// un-returned borrow of the same book.
	ErrAlreadyBorrowed = invalidState("book already borrowed")
	// ErrAlreadyReturned is returned when a borrow has already been settled.
	ErrAlreadyReturned = invalidState("borrow already returned")
	// ErrNoFineDue is returned when fine payment is attempted with no fine owed.
	ErrNoFineDue = invalidState("no fine due")
	// ErrFineAlreadyPaid is returned when a fine has already been settled.
	ErrFineAlreadyPaid = invalidState("fine already paid")
)

// Event errors.
var (
	// ErrEventUnavailable is returned when registering for an inactive event.
	ErrEventUnavailable = invalidState("event unavailable")
	// ErrDeadlinePassed is returned when registering after the deadline.
	ErrDeadlinePassed = invalidState("registration deadline passed")
	// ErrAlreadyRegistered is returned when a non-cancelled registration
	// already exists for the (event, user) pair.
	ErrAlreadyRegistered = invalidState("already registered")
	// ErrAlreadyCancelled is returned when a registration or booking has
	// already been cancelled.
	ErrAlreadyCancelled = invalidState("already cancelled")
)

// SOS errors.
var (
	// ErrActiveAlertExists is returned when the caller already has an alert in
	// flight. Duplicate prevention is enforced at the mutation layer.
	ErrActiveAlertExists = invalidState("active alert exists")
	// ErrAlreadyResolved is returned for operations on a resolved alert.
	ErrAlreadyResolved = invalidState("alert already resolved")
	// ErrNotActive is returned when cancelling an alert that is no longer in
	// the active state.
	ErrNotActive = invalidState("alert not active")
)

// Room booking errors.
var (
	// ErrRoomConflict is returned when a booking overlaps an existing one.
	ErrRoomConflict = invalidState("room booking conflict")
)

// invalidStateError wraps ErrInvalidState with a specific cause so that
// errors.Is matches both the exact sentinel and the broad class.
type invalidStateError struct {
	cause string
}

func invalidState(cause string) error {
	return &invalidStateError{cause: cause}
}

func (e *invalidStateError) Error() string {
	return "application: " + e.cause
}

func (e *invalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
