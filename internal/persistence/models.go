package persistence

import "time"

// User represents a campus account row. Disabled users keep their data but
// cannot authenticate.
type User struct {
	ID           string
	CollegeID    string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// Wallet represents a user's stored-value balance row.
type Wallet struct {
	ID        string
	CollegeID string
	UserID    string
	Balance   int64
	Status    string
	UpdatedAt time.Time
}

// WalletTransaction represents one immutable wallet ledger row.
type WalletTransaction struct {
	ID           string
	CollegeID    string
	WalletID     string
	UserID       string
	Direction    string
	Category     string
	Amount       int64
	BalanceAfter int64
	Description  string
	ReferenceID  *string
	CreatedAt    time.Time
}

// Book represents a library catalog row with a live availability counter.
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

// BookBorrow represents one loan of one copy.
type BookBorrow struct {
	ID         string
	CollegeID  string
	BookID     string
	UserID     string
	Status     string
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	FineAmount int64
	FinePaid   bool
}

// Event represents an event row with its running registration count.
type Event struct {
	ID                   string
	CollegeID            string
	CreatorID            string
	Title                string
	Description          string
	Status               string
	StartsAt             time.Time
	RegistrationDeadline *time.Time
	MaxAttendees         *int
	RegistrationCount    int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EventRegistration ties a user to an event.
type EventRegistration struct {
	ID           string
	CollegeID    string
	EventID      string
	UserID       string
	Status       string
	RegisteredAt time.Time
	CancelledAt  *time.Time
}

// SOSAlert represents an emergency alert row. Responder IDs live in a
// separate table keyed by alert ID.
type SOSAlert struct {
	ID           string
	CollegeID    string
	UserID       string
	Type         string
	Status       string
	Description  string
	Latitude     *float64
	Longitude    *float64
	ResponderIDs []string
	ResolvedBy   *string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SkillEntry represents a user's best score for one skill.
type SkillEntry struct {
	ID          string
	CollegeID   string
	UserID      string
	SkillName   string
	Score       int
	Category    *string
	IsAnonymous bool
	UpdatedAt   time.Time
}

// Room represents a bookable classroom row.
type Room struct {
	ID        string
	CollegeID string
	Name      string
	Building  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomBooking represents a classroom reservation row.
type RoomBooking struct {
	ID        string
	CollegeID string
	RoomID    string
	UserID    string
	Purpose   string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    string
	CreatedAt time.Time
}

// MenuItem represents a canteen catalog row.
type MenuItem struct {
	ID        string
	CollegeID string
	Name      string
	Price     int64
	Available bool
	UpdatedAt time.Time
}

// OrderLine represents one item of a canteen order with the price captured at
// order time.
type OrderLine struct {
	ItemID    string
	Quantity  int
	UnitPrice int64
}

// Order represents a canteen order row with its lines.
type Order struct {
	ID        string
	CollegeID string
	UserID    string
	Lines     []OrderLine
	Total     int64
	Status    string
	CreatedAt time.Time
}

// Notification represents one inbox message row.
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
