package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const userColumns = `id, college_id, email, display_name, role, password_hash, disabled, created_at, updated_at`

// CreateUserWithWallet inserts the user row and an empty wallet row in one transaction.
func (r *UserRepository) CreateUserWithWallet(ctx context.Context, user persistence.User, wallet persistence.Wallet) error {
	if user.ID == "" || user.CollegeID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	if wallet.ID == "" || wallet.UserID != user.ID {
		return persistence.ErrConstraintViolation
	}

	normalizedEmail := normalizeEmail(user.Email)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			user.ID,
			user.CollegeID,
			normalizedEmail,
			user.DisplayName,
			user.Role,
			user.PasswordHash,
			user.Disabled,
			formatTime(user.CreatedAt),
			formatTime(user.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		_, err = r.helper.ExecTx(tx, `
			INSERT INTO wallets (id, college_id, user_id, balance, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			wallet.ID,
			wallet.CollegeID,
			wallet.UserID,
			wallet.Balance,
			wallet.Status,
			formatTime(wallet.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// UpdateUser updates profile fields and the role of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE users
		SET email = ?, display_name = ?, role = ?, updated_at = ?
		WHERE id = ? AND college_id = ?
	`,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.Role,
		formatTime(user.UpdatedAt),
		user.ID,
		user.CollegeID,
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

// GetUser retrieves a user by ID within a college.
func (r *UserRepository) GetUser(ctx context.Context, collegeID, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanUser(row)
}

// GetUserByID retrieves a user by ID alone. Session validation resolves the
// user before any college scope is known.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)

	return r.scanUser(row)
}

// GetUserByEmail retrieves a user by email address. Email is unique across
// colleges so no college filter applies.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = ?
	`, normalized)

	return r.scanUser(row)
}

// SetUserDisabled flips the account's disabled flag.
func (r *UserRepository) SetUserDisabled(ctx context.Context, collegeID, id string, disabled bool) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE users SET disabled = ? WHERE id = ? AND college_id = ?
	`, disabled, id, collegeID)
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

// ListUsers returns a college's users ordered by creation timestamp then ID.
func (r *UserRepository) ListUsers(ctx context.Context, collegeID string) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE college_id = ?
		ORDER BY created_at ASC, id ASC
	`, collegeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&user.ID,
		&user.CollegeID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.PasswordHash,
		&user.Disabled,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	if user.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
