package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

var (
	userCounter   uint64
	walletCounter uint64
	bookCounter   uint64
	eventCounter  uint64
)

// DefaultCollegeID is the tenant every fixture belongs to unless overridden.
const DefaultCollegeID = "college-001"

var referenceTime = time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic campus account that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           string
	CollegeID    string
	Email        string
	DisplayName  string
	Role         application.Role
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		CollegeID:    DefaultCollegeID,
		Email:        fmt.Sprintf("%s@campus.example", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		Role:         application.RoleStudent,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserCollege overrides the tenant the user belongs to.
func WithUserCollege(collegeID string) UserOption {
	return func(f *UserFixture) {
		f.CollegeID = collegeID
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserDisabled flags the account as unable to authenticate.
func WithUserDisabled(disabled bool) UserOption {
	return func(f *UserFixture) {
		f.Disabled = disabled
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		CollegeID:   f.CollegeID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, CollegeID: f.CollegeID, Role: f.Role}
}

// Persistence returns the fixture as a persistence.User row.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		CollegeID:    f.CollegeID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		Role:         string(f.Role),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Wallet fixtures ----------------------------

// WalletFixture represents a deterministic stored-value wallet.
type WalletFixture struct {
	ID        string
	CollegeID string
	UserID    string
	Balance   int64
	Status    application.WalletStatus
	UpdatedAt time.Time
}

// WalletOption configures the generated wallet fixture.
type WalletOption func(*WalletFixture)

// NewWalletFixture returns a deterministic wallet fixture with optional overrides.
func NewWalletFixture(opts ...WalletOption) WalletFixture {
	idx := atomic.AddUint64(&walletCounter, 1)
	fixture := WalletFixture{
		ID:        fmt.Sprintf("wallet-%03d", idx),
		CollegeID: DefaultCollegeID,
		UserID:    fmt.Sprintf("user-%03d", idx),
		Balance:   0,
		Status:    application.WalletActive,
		UpdatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWalletOwner ties the wallet to a specific user.
func WithWalletOwner(userID string) WalletOption {
	return func(f *WalletFixture) {
		f.UserID = userID
	}
}

// WithWalletBalance sets the stored balance.
func WithWalletBalance(balance int64) WalletOption {
	return func(f *WalletFixture) {
		f.Balance = balance
	}
}

// WithWalletStatus sets the wallet status.
func WithWalletStatus(status application.WalletStatus) WalletOption {
	return func(f *WalletFixture) {
		f.Status = status
	}
}

// Application returns the fixture as an application.Wallet value.
func (f WalletFixture) Application() application.Wallet {
	return application.Wallet{
		ID:        f.ID,
		CollegeID: f.CollegeID,
		UserID:    f.UserID,
		Balance:   f.Balance,
		Status:    f.Status,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Wallet row.
func (f WalletFixture) Persistence() persistence.Wallet {
	return persistence.Wallet{
		ID:        f.ID,
		CollegeID: f.CollegeID,
		UserID:    f.UserID,
		Balance:   f.Balance,
		Status:    string(f.Status),
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Book fixtures -----------------------------

// BookFixture represents a deterministic library catalog entry.
type BookFixture struct {
	ID              string
	CollegeID       string
	Title           string
	Author          string
	TotalCopies     int
	AvailableCopies int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookOption configures the generated book fixture.
type BookOption func(*BookFixture)

// NewBookFixture returns a deterministic book fixture with optional overrides.
func NewBookFixture(opts ...BookOption) BookFixture {
	idx := atomic.AddUint64(&bookCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := BookFixture{
		ID:              fmt.Sprintf("book-%03d", idx),
		CollegeID:       DefaultCollegeID,
		Title:           fmt.Sprintf("Book %03d", idx),
		Author:          fmt.Sprintf("Author %03d", idx),
		TotalCopies:     3,
		AvailableCopies: 3,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookTitle overrides the generated title.
func WithBookTitle(title string) BookOption {
	return func(f *BookFixture) {
		f.Title = title
	}
}

// WithBookCopies sets both copy counters.
func WithBookCopies(total, available int) BookOption {
	return func(f *BookFixture) {
		f.TotalCopies = total
		f.AvailableCopies = available
	}
}

// Application returns the fixture as an application.Book value.
func (f BookFixture) Application() application.Book {
	return application.Book{
		ID:              f.ID,
		CollegeID:       f.CollegeID,
		Title:           f.Title,
		Author:          f.Author,
		TotalCopies:     f.TotalCopies,
		AvailableCopies: f.AvailableCopies,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Book row.
func (f BookFixture) Persistence() persistence.Book {
	return persistence.Book{
		ID:              f.ID,
		CollegeID:       f.CollegeID,
		Title:           f.Title,
		Author:          f.Author,
		TotalCopies:     f.TotalCopies,
		AvailableCopies: f.AvailableCopies,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BookInput.
func (f BookFixture) Input() application.BookInput {
	return application.BookInput{
		Title:       f.Title,
		Author:      f.Author,
		TotalCopies: f.TotalCopies,
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic campus event.
type EventFixture struct {
	ID                   string
	CollegeID            string
	CreatorID            string
	Title                string
	Description          string
	Status               application.EventStatus
	StartsAt             time.Time
	RegistrationDeadline *time.Time
	MaxAttendees         *int
	RegistrationCount    int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EventFixture{
		ID:        fmt.Sprintf("event-%03d", idx),
		CollegeID: DefaultCollegeID,
		CreatorID: fmt.Sprintf("user-%03d", idx),
		Title:     fmt.Sprintf("Event %03d", idx),
		Status:    application.EventActive,
		StartsAt:  referenceTime.Add(7 * 24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventCreator sets the creating user.
func WithEventCreator(userID string) EventOption {
	return func(f *EventFixture) {
		f.CreatorID = userID
	}
}

// WithEventCapacity caps attendance at the given count.
func WithEventCapacity(capacity int) EventOption {
	return func(f *EventFixture) {
		f.MaxAttendees = &capacity
	}
}

// WithEventRegistrations sets the running registration count.
func WithEventRegistrations(count int) EventOption {
	return func(f *EventFixture) {
		f.RegistrationCount = count
	}
}

// WithEventDeadline sets the registration deadline.
func WithEventDeadline(deadline time.Time) EventOption {
	return func(f *EventFixture) {
		f.RegistrationDeadline = &deadline
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:                   f.ID,
		CollegeID:            f.CollegeID,
		CreatorID:            f.CreatorID,
		Title:                f.Title,
		Description:          f.Description,
		Status:               f.Status,
		StartsAt:             f.StartsAt,
		RegistrationDeadline: f.RegistrationDeadline,
		MaxAttendees:         f.MaxAttendees,
		RegistrationCount:    f.RegistrationCount,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Event row.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:                   f.ID,
		CollegeID:            f.CollegeID,
		CreatorID:            f.CreatorID,
		Title:                f.Title,
		Description:          f.Description,
		Status:               string(f.Status),
		StartsAt:             f.StartsAt,
		RegistrationDeadline: f.RegistrationDeadline,
		MaxAttendees:         f.MaxAttendees,
		RegistrationCount:    f.RegistrationCount,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
}
