package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// LoanPeriod is the fixed borrow duration.
	LoanPeriod = 14 * 24 * time.Hour
	// FinePerDay is the flat overdue fine per full elapsed day.
	FinePerDay int64 = 5
)

// BookRepository captures catalog persistence needed by the library service.
type BookRepository interface {
	CreateBook(ctx context.Context, book Book) (Book, error)
	GetBook(ctx context.Context, collegeID, id string) (Book, error)
	ListBooks(ctx context.Context, collegeID string) ([]Book, error)
	SearchBooks(ctx context.Context, collegeID, query string) ([]Book, error)
}

// BorrowRepository captures loan persistence needed by the library service.
type BorrowRepository interface {
	GetBorrow(ctx context.Context, collegeID, id string) (BookBorrow, error)
	// FindOpenBorrow returns the user's un-returned borrow of the book, or
	// persistence.ErrNotFound.
	FindOpenBorrow(ctx context.Context, collegeID, bookID, userID string) (BookBorrow, error)
	// CreateBorrow inserts the loan and decrements the book's available copies
	// in one store transaction.
	CreateBorrow(ctx context.Context, borrow BookBorrow) (BookBorrow, error)
	// SettleBorrow marks the loan returned and increments the book's available
	// copies in one store transaction.
	SettleBorrow(ctx context.Context, borrow BookBorrow) (BookBorrow, error)
	UpdateBorrow(ctx context.Context, borrow BookBorrow) (BookBorrow, error)
	ListUserBorrows(ctx context.Context, collegeID, userID string) ([]BookBorrow, error)
	// MarkOverdue flips every borrowed record past due to overdue and reports
	// how many rows changed.
	MarkOverdue(ctx context.Context, collegeID string, reference time.Time) (int, error)
}

// FineSettler is the ledger debit path used for fine settlement. Implemented
// by WalletService; the library never writes balances itself.
type FineSettler interface {
	Spend(ctx context.Context, params WalletEntryParams) (Wallet, WalletTransaction, error)
}

// LibraryService enforces circulation rules: copy counters moving in lockstep
// with loan records, the fixed loan period, and lazy overdue fine computation.
type LibraryService struct {
	books       BookRepository
	borrows     BorrowRepository
	ledger      FineSettler
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLibraryService constructs a library service with the provided dependencies.
func NewLibraryService(books BookRepository, borrows BorrowRepository, ledger FineSettler, notifier Notifier, idGenerator func() string, now func() time.Time) *LibraryService {
	return NewLibraryServiceWithLogger(books, borrows, ledger, notifier, idGenerator, now, nil)
}

// NewLibraryServiceWithLogger constructs a library service with a specified logger.
func NewLibraryServiceWithLogger(books BookRepository, borrows BorrowRepository, ledger FineSettler, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LibraryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LibraryService{
		books:       books,
		borrows:     borrows,
		ledger:      ledger,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *LibraryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LibraryService", operation, attrs...)
}

// AddBook registers a new catalog entry. Librarians and administrators only.
func (s *LibraryService) AddBook(ctx context.Context, principal Principal, input BookInput) (book Book, err error) {
	if s == nil || s.books == nil {
		err = fmt.Errorf("library service not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddBook", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add book", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("book_id", book.ID).InfoContext(ctx, "book added")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleLibrarian, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.TotalCopies <= 0 {
		vErr.add("total_copies", "total copies must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	book = Book{
		ID:              s.idGenerator(),
		CollegeID:       principal.CollegeID,
		Title:           strings.TrimSpace(input.Title),
		Author:          strings.TrimSpace(input.Author),
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	book, err = s.books.CreateBook(ctx, book)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// Borrow lends one copy of a book to the calling user for the fixed loan
// period. The loan insert and the copy-counter decrement are one transaction.
func (s *LibraryService) Borrow(ctx context.Context, principal Principal, bookID string) (borrow BookBorrow, err error) {
	if s == nil || s.books == nil || s.borrows == nil {
		err = fmt.Errorf("library service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Borrow",
		"principal_id", principal.UserID,
		"book_id", bookID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to borrow book", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("borrow_id", borrow.ID, "due_at", borrow.DueAt).InfoContext(ctx, "book borrowed")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var book Book
	book, err = s.books.GetBook(ctx, principal.CollegeID, bookID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if book.AvailableCopies <= 0 {
		err = ErrNoCopiesAvailable
		return
	}

	if _, findErr := s.borrows.FindOpenBorrow(ctx, principal.CollegeID, bookID, principal.UserID); findErr == nil {
		err = ErrAlreadyBorrowed
		return
	} else if mapped := mapRepoError(findErr); !errors.Is(mapped, ErrNotFound) {
		err = mapped
		return
	}

	now := s.now()
	borrow = BookBorrow{
		ID:         s.idGenerator(),
		CollegeID:  principal.CollegeID,
		BookID:     bookID,
		UserID:     principal.UserID,
		BorrowedAt: now,
		DueAt:      now.Add(LoanPeriod),
		Status:     BorrowBorrowed,
	}

	borrow, err = s.borrows.CreateBorrow(ctx, borrow)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	notify(ctx, s.notifier, logger, principal.CollegeID, principal.UserID, "library",
		"Book borrowed",
		fmt.Sprintf("%q is due back on %s.", book.Title, borrow.DueAt.Format("2 Jan 2006")))
	return
}

// Return settles a loan. The fine is computed lazily here from elapsed full
// days past due, never accrued incrementally.
func (s *LibraryService) Return(ctx context.Context, principal Principal, borrowID string) (borrow BookBorrow, err error) {
	if s == nil || s.borrows == nil {
		err = fmt.Errorf("library service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Return",
		"principal_id", principal.UserID,
		"borrow_id", borrowID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to return book", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("fine_amount", borrow.FineAmount).InfoContext(ctx, "book returned")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var existing BookBorrow
	existing, err = s.borrows.GetBorrow(ctx, principal.CollegeID, borrowID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.UserID != principal.UserID && !principal.HasAnyRole(RoleLibrarian, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	if existing.Status == BorrowReturned {
		err = ErrAlreadyReturned
		return
	}
	if !CanTransitionBorrow(existing.Status, BorrowReturned) {
		err = ErrInvalidState
		return
	}

	now := s.now()
	existing.Status = BorrowReturned
	existing.ReturnedAt = &now
	existing.FineAmount = OverdueFine(existing.DueAt, now)
	existing.FinePaid = existing.FineAmount == 0

	borrow, err = s.borrows.SettleBorrow(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	message := "Thanks for returning your book."
	if borrow.FineAmount > 0 {
		message = fmt.Sprintf("Returned with an overdue fine of %d.", borrow.FineAmount)
	}
	notify(ctx, s.notifier, logger, borrow.CollegeID, borrow.UserID, "library", "Book returned", message)
	return
}

// PayFine settles an outstanding fine through the ledger's debit path with
// category library_fine, referencing the borrow record.
func (s *LibraryService) PayFine(ctx context.Context, principal Principal, borrowID string) (borrow BookBorrow, err error) {
	if s == nil || s.borrows == nil || s.ledger == nil {
		err = fmt.Errorf("library service not configured")
		return
	}

	logger := s.loggerWith(ctx, "PayFine",
		"principal_id", principal.UserID,
		"borrow_id", borrowID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to pay fine", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("fine_amount", borrow.FineAmount).InfoContext(ctx, "fine paid")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var existing BookBorrow
	existing, err = s.borrows.GetBorrow(ctx, principal.CollegeID, borrowID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}
	if existing.FineAmount <= 0 {
		err = ErrNoFineDue
		return
	}
	if existing.FinePaid {
		err = ErrFineAlreadyPaid
		return
	}

	ref := existing.ID
	if _, _, err = s.ledger.Spend(ctx, WalletEntryParams{
		Principal:   principal,
		UserID:      principal.UserID,
		Amount:      existing.FineAmount,
		Category:    CategoryLibraryFine,
		Description: "Library overdue fine",
		ReferenceID: &ref,
	}); err != nil {
		return
	}

	existing.FinePaid = true
	borrow, err = s.borrows.UpdateBorrow(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// MarkOverdueBooks is the advisory batch sweep: any borrowed record past due
// becomes overdue. It assigns no fines; those stay lazily computed at return.
func (s *LibraryService) MarkOverdueBooks(ctx context.Context, principal Principal) (updated int, err error) {
	if s == nil || s.borrows == nil {
		err = fmt.Errorf("library service not configured")
		return
	}

	logger := s.loggerWith(ctx, "MarkOverdueBooks", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "overdue sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("updated", updated).InfoContext(ctx, "overdue sweep completed")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleLibrarian, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	updated, err = s.borrows.MarkOverdue(ctx, principal.CollegeID, s.now())
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetBorrow returns one loan, readable by the borrower or library staff.
func (s *LibraryService) GetBorrow(ctx context.Context, principal Principal, borrowID string) (BookBorrow, error) {
	if s == nil || s.borrows == nil {
		return BookBorrow{}, fmt.Errorf("library service not configured")
	}
	if !principal.IsAuthenticated() {
		return BookBorrow{}, ErrUnauthenticated
	}

	borrow, err := s.borrows.GetBorrow(ctx, principal.CollegeID, borrowID)
	if err != nil {
		return BookBorrow{}, mapRepoError(err)
	}
	if borrow.UserID != principal.UserID && !principal.HasAnyRole(RoleLibrarian, RoleAdmin) {
		return BookBorrow{}, ErrUnauthorized
	}
	return borrow, nil
}

// ListUserBorrows returns the caller's loans, or any user's for library staff.
func (s *LibraryService) ListUserBorrows(ctx context.Context, principal Principal, userID string) ([]BookBorrow, error) {
	if s == nil || s.borrows == nil {
		return nil, fmt.Errorf("library service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if userID != principal.UserID && !principal.HasAnyRole(RoleLibrarian, RoleAdmin) {
		return nil, ErrUnauthorized
	}

	borrows, err := s.borrows.ListUserBorrows(ctx, principal.CollegeID, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return borrows, nil
}

// ListBooks returns the catalog for any authenticated user.
func (s *LibraryService) ListBooks(ctx context.Context, principal Principal) ([]Book, error) {
	if s == nil || s.books == nil {
		return nil, fmt.Errorf("library service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	books, err := s.books.ListBooks(ctx, principal.CollegeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return books, nil
}

// SearchBooks returns catalog entries whose title or author matches the query.
func (s *LibraryService) SearchBooks(ctx context.Context, principal Principal, query string) ([]Book, error) {
	if s == nil || s.books == nil {
		return nil, fmt.Errorf("library service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	books, err := s.books.SearchBooks(ctx, principal.CollegeID, trimmed)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return books, nil
}

// OverdueFine computes the fine owed when a loan due at dueAt is settled at
// returnedAt: the flat per-day rate times full elapsed days past due. Hour
// fractions do not count; on-time returns owe nothing.
func OverdueFine(dueAt, returnedAt time.Time) int64 {
	if !returnedAt.After(dueAt) {
		return 0
	}
	overdueDays := int64(returnedAt.Sub(dueAt) / (24 * time.Hour))
	return overdueDays * FinePerDay
}
