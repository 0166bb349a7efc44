package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// LibraryRepository implements persistence.LibraryRepository using SQLite.
type LibraryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLibraryRepository creates a new SQLite library repository.
func NewLibraryRepository(pool *ConnectionPool) *LibraryRepository {
	return &LibraryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const bookColumns = `id, college_id, title, author, total_copies, available_copies, created_at, updated_at`
const borrowColumns = `id, college_id, book_id, user_id, status, borrowed_at, due_at, returned_at, fine_amount, fine_paid`

// CreateBook inserts a catalog entry.
func (r *LibraryRepository) CreateBook(ctx context.Context, book persistence.Book) error {
	if book.ID == "" || book.CollegeID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		book.ID,
		book.CollegeID,
		book.Title,
		book.Author,
		book.TotalCopies,
		book.AvailableCopies,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetBook retrieves a book by ID within a college.
func (r *LibraryRepository) GetBook(ctx context.Context, collegeID, id string) (persistence.Book, error) {
	if id == "" {
		return persistence.Book{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanBook(row)
}

// ListBooks returns a college's catalog ordered by title.
func (r *LibraryRepository) ListBooks(ctx context.Context, collegeID string) ([]persistence.Book, error) {
	return r.queryBooks(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE college_id = ?
		ORDER BY title ASC, id ASC
	`, collegeID)
}

// SearchBooks returns catalog entries whose title or author matches the query.
func (r *LibraryRepository) SearchBooks(ctx context.Context, collegeID, query string) ([]persistence.Book, error) {
	pattern := "%" + query + "%"
	return r.queryBooks(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE college_id = ? AND (title LIKE ? OR author LIKE ?)
		ORDER BY title ASC, id ASC
	`, collegeID, pattern, pattern)
}

// GetBorrow retrieves a loan record by ID within a college.
func (r *LibraryRepository) GetBorrow(ctx context.Context, collegeID, id string) (persistence.BookBorrow, error) {
	if id == "" {
		return persistence.BookBorrow{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+borrowColumns+`
		FROM book_borrows
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanBorrow(row)
}

// FindOpenBorrow returns the user's borrowed or overdue loan of the book.
func (r *LibraryRepository) FindOpenBorrow(ctx context.Context, collegeID, bookID, userID string) (persistence.BookBorrow, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+borrowColumns+`
		FROM book_borrows
		WHERE college_id = ? AND book_id = ? AND user_id = ? AND status IN ('borrowed', 'overdue')
	`, collegeID, bookID, userID)

	return r.scanBorrow(row)
}

// CreateBorrow inserts the loan and decrements the book's available counter
// in one transaction. The guarded UPDATE fails when no copy is left.
func (r *LibraryRepository) CreateBorrow(ctx context.Context, borrow persistence.BookBorrow) error {
	if borrow.ID == "" || borrow.BookID == "" || borrow.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `
			UPDATE books
			SET available_copies = available_copies - 1, updated_at = ?
			WHERE id = ? AND college_id = ? AND available_copies > 0
		`, formatTime(borrow.BorrowedAt), borrow.BookID, borrow.CollegeID)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrConstraintViolation
		}

		_, err = r.helper.ExecTx(tx, `
			INSERT INTO book_borrows (`+borrowColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			borrow.ID,
			borrow.CollegeID,
			borrow.BookID,
			borrow.UserID,
			borrow.Status,
			formatTime(borrow.BorrowedAt),
			formatTime(borrow.DueAt),
			nullTime(borrow.ReturnedAt),
			borrow.FineAmount,
			borrow.FinePaid,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// SettleBorrow updates the loan and increments the book's available counter
// in one transaction.
func (r *LibraryRepository) SettleBorrow(ctx context.Context, borrow persistence.BookBorrow) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `
			UPDATE book_borrows
			SET status = ?, returned_at = ?, fine_amount = ?, fine_paid = ?
			WHERE id = ? AND college_id = ?
		`,
			borrow.Status,
			nullTime(borrow.ReturnedAt),
			borrow.FineAmount,
			borrow.FinePaid,
			borrow.ID,
			borrow.CollegeID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		updatedAt := formatTime(borrow.BorrowedAt)
		if borrow.ReturnedAt != nil {
			updatedAt = formatTime(*borrow.ReturnedAt)
		}
		_, err = r.helper.ExecTx(tx, `
			UPDATE books
			SET available_copies = available_copies + 1, updated_at = ?
			WHERE id = ? AND college_id = ?
		`, updatedAt, borrow.BookID, borrow.CollegeID)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// UpdateBorrow updates a loan's mutable fields without touching the counter.
func (r *LibraryRepository) UpdateBorrow(ctx context.Context, borrow persistence.BookBorrow) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE book_borrows
		SET status = ?, returned_at = ?, fine_amount = ?, fine_paid = ?
		WHERE id = ? AND college_id = ?
	`,
		borrow.Status,
		nullTime(borrow.ReturnedAt),
		borrow.FineAmount,
		borrow.FinePaid,
		borrow.ID,
		borrow.CollegeID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUserBorrows returns a user's loans, newest first.
func (r *LibraryRepository) ListUserBorrows(ctx context.Context, collegeID, userID string) ([]persistence.BookBorrow, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+borrowColumns+`
		FROM book_borrows
		WHERE college_id = ? AND user_id = ?
		ORDER BY borrowed_at DESC, id DESC
	`, collegeID, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var borrows []persistence.BookBorrow
	for rows.Next() {
		borrow, err := r.scanBorrow(rows)
		if err != nil {
			return nil, err
		}
		borrows = append(borrows, borrow)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return borrows, nil
}

// MarkOverdue flips borrowed loans past their due date to overdue.
func (r *LibraryRepository) MarkOverdue(ctx context.Context, collegeID string, reference time.Time) (int, error) {
	result, err := r.helper.Exec(ctx, `
		UPDATE book_borrows
		SET status = 'overdue'
		WHERE college_id = ? AND status = 'borrowed' AND due_at < ?
	`, collegeID, formatTime(reference))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

func (r *LibraryRepository) queryBooks(ctx context.Context, query string, args ...any) ([]persistence.Book, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var books []persistence.Book
	for rows.Next() {
		book, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return books, nil
}

func (r *LibraryRepository) scanBook(row rowScanner) (persistence.Book, error) {
	var book persistence.Book
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&book.ID,
		&book.CollegeID,
		&book.Title,
		&book.Author,
		&book.TotalCopies,
		&book.AvailableCopies,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Book{}, r.mapper.MapError(err)
	}

	if book.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Book{}, err
	}
	if book.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Book{}, err
	}
	return book, nil
}

func (r *LibraryRepository) scanBorrow(row rowScanner) (persistence.BookBorrow, error) {
	var borrow persistence.BookBorrow
	var borrowedAtStr, dueAtStr string
	var returnedAt sql.NullString

	err := row.Scan(
		&borrow.ID,
		&borrow.CollegeID,
		&borrow.BookID,
		&borrow.UserID,
		&borrow.Status,
		&borrowedAtStr,
		&dueAtStr,
		&returnedAt,
		&borrow.FineAmount,
		&borrow.FinePaid,
	)
	if err != nil {
		return persistence.BookBorrow{}, r.mapper.MapError(err)
	}

	if borrow.BorrowedAt, err = parseTime(borrowedAtStr, "borrowed_at"); err != nil {
		return persistence.BookBorrow{}, err
	}
	if borrow.DueAt, err = parseTime(dueAtStr, "due_at"); err != nil {
		return persistence.BookBorrow{}, err
	}
	if borrow.ReturnedAt, err = parseTimePtr(returnedAt, "returned_at"); err != nil {
		return persistence.BookBorrow{}, err
	}
	return borrow, nil
}
