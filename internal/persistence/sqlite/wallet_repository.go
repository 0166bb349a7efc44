package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// WalletRepository implements persistence.WalletRepository using SQLite.
type WalletRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewWalletRepository creates a new SQLite wallet repository.
func NewWalletRepository(pool *ConnectionPool) *WalletRepository {
	return &WalletRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetWalletByUser retrieves a user's wallet within a college.
func (r *WalletRepository) GetWalletByUser(ctx context.Context, collegeID, userID string) (persistence.Wallet, error) {
	if userID == "" {
		return persistence.Wallet{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT id, college_id, user_id, balance, status, updated_at
		FROM wallets
		WHERE college_id = ? AND user_id = ?
	`, collegeID, userID)

	return r.scanWallet(row)
}

// ApplyTransaction updates the wallet balance and inserts the ledger row in
// one transaction. The guarded UPDATE keeps the balance non-negative even if
// two debits race.
func (r *WalletRepository) ApplyTransaction(ctx context.Context, wallet persistence.Wallet, entry persistence.WalletTransaction) error {
	if wallet.ID == "" || entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var result sql.Result
		var err error
		if entry.Direction == "debit" {
			result, err = r.helper.ExecTx(tx, `
				UPDATE wallets
				SET balance = balance - ?, updated_at = ?
				WHERE id = ? AND college_id = ? AND balance >= ?
			`, entry.Amount, formatTime(wallet.UpdatedAt), wallet.ID, wallet.CollegeID, entry.Amount)
		} else {
			result, err = r.helper.ExecTx(tx, `
				UPDATE wallets
				SET balance = balance + ?, updated_at = ?
				WHERE id = ? AND college_id = ?
			`, entry.Amount, formatTime(wallet.UpdatedAt), wallet.ID, wallet.CollegeID)
		}
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
			INSERT INTO wallet_transactions
				(id, college_id, wallet_id, user_id, direction, category, amount, balance_after, description, reference_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			entry.ID,
			entry.CollegeID,
			entry.WalletID,
			entry.UserID,
			entry.Direction,
			entry.Category,
			entry.Amount,
			entry.BalanceAfter,
			entry.Description,
			nullString(entry.ReferenceID),
			formatTime(entry.CreatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// UpdateWalletStatus flips a wallet between active and frozen.
func (r *WalletRepository) UpdateWalletStatus(ctx context.Context, collegeID, walletID, status string, updatedAt time.Time) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE wallets SET status = ?, updated_at = ? WHERE id = ? AND college_id = ?
	`, status, formatTime(updatedAt), walletID, collegeID)
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

// ListTransactions returns a wallet's ledger rows, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, collegeID, walletID string, limit int) ([]persistence.WalletTransaction, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, college_id, wallet_id, user_id, direction, category, amount, balance_after, description, reference_id, created_at
		FROM wallet_transactions
		WHERE college_id = ? AND wallet_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, collegeID, walletID, limit)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.WalletTransaction
	for rows.Next() {
		var entry persistence.WalletTransaction
		var referenceID sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&entry.ID,
			&entry.CollegeID,
			&entry.WalletID,
			&entry.UserID,
			&entry.Direction,
			&entry.Category,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.Description,
			&referenceID,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		entry.ReferenceID = stringPtr(referenceID)
		if entry.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

func (r *WalletRepository) scanWallet(row rowScanner) (persistence.Wallet, error) {
	var wallet persistence.Wallet
	var updatedAtStr string

	err := row.Scan(
		&wallet.ID,
		&wallet.CollegeID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.Status,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Wallet{}, r.mapper.MapError(err)
	}

	if wallet.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Wallet{}, err
	}
	return wallet, nil
}
