package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users and their credentials.
type UserRepository interface {
	// CreateUserWithWallet inserts the user row and an empty wallet row in
	// one transaction.
	CreateUserWithWallet(ctx context.Context, user User, wallet Wallet) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, collegeID, id string) (User, error)
	// GetUserByID resolves a user without a college scope, for session
	// validation.
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SetUserDisabled(ctx context.Context, collegeID, id string, disabled bool) error
	ListUsers(ctx context.Context, collegeID string) ([]User, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// WalletRepository stores wallet balances and their append-only ledger.
type WalletRepository interface {
	GetWalletByUser(ctx context.Context, collegeID, userID string) (Wallet, error)
	// ApplyTransaction updates the wallet balance and inserts the ledger row
	// in one transaction.
	ApplyTransaction(ctx context.Context, wallet Wallet, entry WalletTransaction) error
	UpdateWalletStatus(ctx context.Context, collegeID, walletID, status string, updatedAt time.Time) error
	ListTransactions(ctx context.Context, collegeID, walletID string, limit int) ([]WalletTransaction, error)
}

// LibraryRepository stores the book catalog and loan records.
type LibraryRepository interface {
	CreateBook(ctx context.Context, book Book) error
	GetBook(ctx context.Context, collegeID, id string) (Book, error)
	ListBooks(ctx context.Context, collegeID string) ([]Book, error)
	SearchBooks(ctx context.Context, collegeID, query string) ([]Book, error)
	GetBorrow(ctx context.Context, collegeID, id string) (BookBorrow, error)
	// FindOpenBorrow returns the user's borrowed or overdue loan of the book,
	// or ErrNotFound.
	FindOpenBorrow(ctx context.Context, collegeID, bookID, userID string) (BookBorrow, error)
	// CreateBorrow inserts the loan and decrements the book's available
	// counter in one transaction. A counter at zero fails the insert.
	CreateBorrow(ctx context.Context, borrow BookBorrow) error
	// SettleBorrow updates the loan and increments the book's available
	// counter in one transaction.
	SettleBorrow(ctx context.Context, borrow BookBorrow) error
	UpdateBorrow(ctx context.Context, borrow BookBorrow) error
	ListUserBorrows(ctx context.Context, collegeID, userID string) ([]BookBorrow, error)
	// MarkOverdue flips borrowed loans past their due date to overdue and
	// reports how many rows changed.
	MarkOverdue(ctx context.Context, collegeID string, reference time.Time) (int, error)
}

// EventRepository stores events and their registrations.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, collegeID, id string) (Event, error)
	ListEvents(ctx context.Context, collegeID string) ([]Event, error)
	FindRegistration(ctx context.Context, collegeID, eventID, userID string) (EventRegistration, error)
	// CreateRegistration inserts the registration and increments the event's
	// registration count in one transaction.
	CreateRegistration(ctx context.Context, registration EventRegistration) error
	// CancelRegistration marks the registration cancelled, decrements the
	// count flooring at zero, and promotes the earliest waitlisted
	// registration when promote is true, all in one transaction.
	CancelRegistration(ctx context.Context, registration EventRegistration, promote bool) error
	UpdateRegistrationStatus(ctx context.Context, registration EventRegistration) error
	ListRegistrations(ctx context.Context, collegeID, eventID string) ([]EventRegistration, error)
}

// SOSRepository stores emergency alerts and their responders.
type SOSRepository interface {
	FindActiveAlert(ctx context.Context, collegeID, userID string) (SOSAlert, error)
	CreateAlert(ctx context.Context, alert SOSAlert) error
	GetAlert(ctx context.Context, collegeID, id string) (SOSAlert, error)
	UpdateAlert(ctx context.Context, alert SOSAlert) error
	ListAlerts(ctx context.Context, collegeID string, openOnly bool) ([]SOSAlert, error)
	ListUsersByRoles(ctx context.Context, collegeID string, roles []string) ([]string, error)
}

// SkillRepository stores per-skill best scores.
type SkillRepository interface {
	FindEntry(ctx context.Context, collegeID, userID, skillName string) (SkillEntry, error)
	CreateEntry(ctx context.Context, entry SkillEntry) error
	UpdateEntry(ctx context.Context, entry SkillEntry) error
	ListBySkill(ctx context.Context, collegeID, skillName string) ([]SkillEntry, error)
	ListAll(ctx context.Context, collegeID string) ([]SkillEntry, error)
	ListUserEntries(ctx context.Context, collegeID, userID string) ([]SkillEntry, error)
	SetAnonymous(ctx context.Context, collegeID, userID string, anonymous bool) error
}

// RoomRepository stores classrooms and their reservations.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, collegeID, id string) (Room, error)
	ListRooms(ctx context.Context, collegeID string) ([]Room, error)
	ListActiveBookings(ctx context.Context, collegeID, roomID string, from, until time.Time) ([]RoomBooking, error)
	CreateBooking(ctx context.Context, booking RoomBooking) error
	GetBooking(ctx context.Context, collegeID, id string) (RoomBooking, error)
	UpdateBooking(ctx context.Context, booking RoomBooking) error
	ListUserBookings(ctx context.Context, collegeID, userID string) ([]RoomBooking, error)
}

// CanteenRepository stores the menu and orders.
type CanteenRepository interface {
	CreateMenuItem(ctx context.Context, item MenuItem) error
	GetMenuItem(ctx context.Context, collegeID, id string) (MenuItem, error)
	UpdateMenuItem(ctx context.Context, item MenuItem) error
	ListMenu(ctx context.Context, collegeID string, availableOnly bool) ([]MenuItem, error)
	// CreateOrder inserts the order and its lines in one transaction.
	CreateOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, collegeID, id string) (Order, error)
	UpdateOrderStatus(ctx context.Context, collegeID, orderID, status string) error
	ListUserOrders(ctx context.Context, collegeID, userID string) ([]Order, error)
}

// NotificationRepository stores inbox messages.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListUserNotifications(ctx context.Context, collegeID, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, collegeID, userID, id string) error
}
