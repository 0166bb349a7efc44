package application

import (
	"strings"
	"time"
)

// Role identifies the campus role attached to a user account.
type Role string

const (
	RoleStudent   Role = "student"
	RoleFaculty   Role = "faculty"
	RoleLibrarian Role = "librarian"
	RoleSecurity  Role = "security"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleFaculty:
		return RoleFaculty, true
	case RoleLibrarian:
		return RoleLibrarian, true
	case RoleSecurity:
		return RoleSecurity, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Principal represents the authenticated user invoking a service method.
// Every entity it touches is scoped to its college.
type Principal struct {
	UserID    string
	CollegeID string
	Role      Role
}

// IsAuthenticated reports whether the principal carries a resolved identity.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != "" && p.CollegeID != ""
}

// HasAnyRole reports whether the principal holds one of the given roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User represents a campus account exposed by the application services.
type User struct {
	ID          string
	CollegeID   string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Role        Role
	Password    string
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// --- Wallet ---

// WalletStatus is the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletActive WalletStatus = "active"
	WalletFrozen WalletStatus = "frozen"
)

// Wallet holds a user's stored-value balance. Balance is an integer number of
// currency units and must never go negative.
type Wallet struct {
	ID        string
	CollegeID string
	UserID    string
	Balance   int64
	Status    WalletStatus
	UpdatedAt time.Time
}

// TransactionDirection distinguishes credits from debits.
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "credit"
	DirectionDebit  TransactionDirection = "debit"
)

// TransactionCategory classifies a wallet transaction.
type TransactionCategory string

const (
	CategoryTopup       TransactionCategory = "topup"
	CategoryCanteen     TransactionCategory = "canteen"
	CategoryPrint       TransactionCategory = "print"
	CategoryLibraryFine TransactionCategory = "library_fine"
	CategoryRefund      TransactionCategory = "refund"
	CategoryReward      TransactionCategory = "reward"
	CategoryOther       TransactionCategory = "other"
)

// ParseTransactionCategory validates a raw category string.
func ParseTransactionCategory(raw string) (TransactionCategory, bool) {
	switch TransactionCategory(strings.TrimSpace(strings.ToLower(raw))) {
	case CategoryTopup:
		return CategoryTopup, true
	case CategoryCanteen:
		return CategoryCanteen, true
	case CategoryPrint:
		return CategoryPrint, true
	case CategoryLibraryFine:
		return CategoryLibraryFine, true
	case CategoryRefund:
		return CategoryRefund, true
	case CategoryReward:
		return CategoryReward, true
	case CategoryOther:
		return CategoryOther, true
	}
	return "", false
}

// WalletTransaction is one immutable row of the append-only wallet log.
// BalanceAfter snapshots the wallet balance immediately after the row applied
// and is never recomputed.
type WalletTransaction struct {
	ID           string
	CollegeID    string
	WalletID     string
	UserID       string
	Direction    TransactionDirection
	Amount       int64
	Category     TransactionCategory
	Description  string
	ReferenceID  *string
	BalanceAfter int64
	CreatedAt    time.Time
}

// WalletEntryParams wraps the data required to credit or debit a wallet.
type WalletEntryParams struct {
	Principal   Principal
	UserID      string
	Amount      int64
	Category    TransactionCategory
	Description string
	ReferenceID *string
}

// --- Library ---

// Book is a library catalog entry with copy counters.
type Book struct {
	ID              string
	CollegeID       string
	Title           string
	Author          string
	TotalCopies     int
	AvailableCopies int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookInput captures caller provided book fields.
type BookInput struct {
	Title       string
	Author      string
	TotalCopies int
}

// BorrowStatus is the lifecycle state of a loan record.
type BorrowStatus string

const (
	BorrowBorrowed BorrowStatus = "borrowed"
	BorrowOverdue  BorrowStatus = "overdue"
	BorrowReturned BorrowStatus = "returned"
)

// BookBorrow links a user to one borrowed copy of a book.
type BookBorrow struct {
	ID         string
	CollegeID  string
	BookID     string
	UserID     string
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     BorrowStatus
	FineAmount int64
	FinePaid   bool
}

// --- Events ---

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventInactive EventStatus = "inactive"
)

// Event holds capacity and the running registration count. RegistrationCount
// includes waitlisted entries; the waitlist trigger compares against it.
type Event struct {
	ID                   string
	CollegeID            string
	CreatorID            string
	Title                string
	Description          string
	Status               EventStatus
	StartsAt             time.Time
	RegistrationDeadline *time.Time
	MaxAttendees         *int
	RegistrationCount    int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title                string
	Description          string
	StartsAt             time.Time
	RegistrationDeadline *time.Time
	MaxAttendees         *int
}

// RegistrationStatus is the lifecycle state of an event registration.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationAttended   RegistrationStatus = "attended"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// EventRegistration ties a user to an event.
type EventRegistration struct {
	ID           string
	CollegeID    string
	EventID      string
	UserID       string
	Status       RegistrationStatus
	RegisteredAt time.Time
	CancelledAt  *time.Time
}

// --- SOS ---

// SOSType classifies an alert.
type SOSType string

const (
	SOSEmergency SOSType = "emergency"
	SOSMedical   SOSType = "medical"
	SOSSecurity  SOSType = "security"
	SOSOther     SOSType = "other"
)

// ParseSOSType validates a raw alert type string.
func ParseSOSType(raw string) (SOSType, bool) {
	switch SOSType(strings.TrimSpace(strings.ToLower(raw))) {
	case SOSEmergency:
		return SOSEmergency, true
	case SOSMedical:
		return SOSMedical, true
	case SOSSecurity:
		return SOSSecurity, true
	case SOSOther:
		return SOSOther, true
	}
	return "", false
}

// SOSStatus is the lifecycle state of an alert.
type SOSStatus string

const (
	SOSActive     SOSStatus = "active"
	SOSResponding SOSStatus = "responding"
	SOSResolved   SOSStatus = "resolved"
)

// GeoPoint is an optional latitude/longitude pair attached to an alert.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// SOSAlert is a user-raised emergency notification with a response workflow.
type SOSAlert struct {
	ID           string
	CollegeID    string
	UserID       string
	Type         SOSType
	Location     *GeoPoint
	Description  string
	Status       SOSStatus
	ResponderIDs []string
	ResolvedAt   *time.Time
	ResolvedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateSOSParams wraps the data required to raise an alert.
type CreateSOSParams struct {
	Principal   Principal
	Type        SOSType
	Location    *GeoPoint
	Description string
}

// --- Leaderboard ---

// SkillEntry is a user's best recorded score for one skill.
type SkillEntry struct {
	ID          string
	CollegeID   string
	UserID      string
	SkillName   string
	Score       int
	Category    *string
	IsAnonymous bool
	Badges      []string
	VerifiedAt  *time.Time
	UpdatedAt   time.Time
}

// SubmitScoreParams wraps the data required to record a score.
type SubmitScoreParams struct {
	Principal Principal
	SkillName string
	Score     int
	Category  *string
}

// SubmitScoreResult reports whether the submission became the stored best.
type SubmitScoreResult struct {
	Entry     SkillEntry
	IsNewBest bool
}

// RankedEntry is one row of a computed leaderboard.
type RankedEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	SkillName   string
	Score       int
}

// --- Rooms ---

// Room is a bookable classroom.
type Room struct {
	ID        string
	CollegeID string
	Name      string
	Building  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Building string
	Capacity int
}

// BookingStatus is the lifecycle state of a room booking.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
)

// RoomBooking reserves a classroom for a time interval.
type RoomBooking struct {
	ID        string
	CollegeID string
	RoomID    string
	UserID    string
	Purpose   string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    BookingStatus
	CreatedAt time.Time
}

// BookRoomParams wraps the data required to book a classroom.
type BookRoomParams struct {
	Principal Principal
	RoomID    string
	Purpose   string
	StartsAt  time.Time
	EndsAt    time.Time
}

// --- Canteen ---

// MenuItem is a purchasable canteen item.
type MenuItem struct {
	ID        string
	CollegeID string
	Name      string
	Price     int64
	Available bool
	UpdatedAt time.Time
}

// MenuItemInput captures caller provided menu item fields.
type MenuItemInput struct {
	Name      string
	Price     int64
	Available bool
}

// OrderStatus is the lifecycle state of a canteen order.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderLine is one item of a canteen order. UnitPrice snapshots the menu
// price at order time.
type OrderLine struct {
	ItemID    string
	Quantity  int
	UnitPrice int64
}

// Order is a placed canteen order settled through the wallet.
type Order struct {
	ID        string
	CollegeID string
	UserID    string
	Lines     []OrderLine
	Total     int64
	Status    OrderStatus
	CreatedAt time.Time
}

// OrderLineInput captures one requested item and quantity.
type OrderLineInput struct {
	ItemID   string
	Quantity int
}

// --- Notifications ---

// Notification is a best-effort message delivered to a user's inbox.
type Notification struct {
	ID        string
	CollegeID string
	UserID    string
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
