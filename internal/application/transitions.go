package application

// The status fields on borrows, registrations, alerts, and bookings are small
// state machines. Each has exactly one transition predicate here; services
// never re-derive legality at call sites.

// CanTransitionBorrow reports whether a loan record may move between states.
// Overdue is an advisory state assigned by the batch sweep; return remains
// legal from it.
func CanTransitionBorrow(from, to BorrowStatus) bool {
	switch from {
	case BorrowBorrowed:
		return to == BorrowOverdue || to == BorrowReturned
	case BorrowOverdue:
		return to == BorrowReturned
	}
	return false
}

// CanTransitionRegistration reports whether an event registration may move
// between states. Cancelled is terminal; attended may be reverted by staff.
func CanTransitionRegistration(from, to RegistrationStatus) bool {
	switch from {
	case RegistrationRegistered, RegistrationWaitlisted:
		return to == RegistrationAttended || to == RegistrationCancelled || to == RegistrationRegistered
	case RegistrationAttended:
		return to == RegistrationRegistered || to == RegistrationCancelled
	}
	return false
}

// CanTransitionSOS reports whether an alert may move between states. Resolved
// is terminal; a creator-cancelled alert resolves rather than taking a state
// of its own.
func CanTransitionSOS(from, to SOSStatus) bool {
	switch from {
	case SOSActive:
		return to == SOSResponding || to == SOSResolved
	case SOSResponding:
		return to == SOSResolved
	}
	return false
}
