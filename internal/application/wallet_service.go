package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// WalletRepository captures the persistence operations needed by the wallet service.
type WalletRepository interface {
	GetWalletByUser(ctx context.Context, collegeID, userID string) (Wallet, error)
	// ApplyTransaction persists the updated wallet balance and appends the log
	// row in one store transaction: both succeed or both fail.
	ApplyTransaction(ctx context.Context, wallet Wallet, entry WalletTransaction) (Wallet, error)
	UpdateWalletStatus(ctx context.Context, wallet Wallet) (Wallet, error)
	ListTransactions(ctx context.Context, collegeID, userID string, limit int) ([]WalletTransaction, error)
}

// WalletService enforces the ledger invariants: non-negative balance, frozen
// wallets rejecting entries, and the append-only transaction log staying in
// lockstep with the balance. No other service writes balances directly.
type WalletService struct {
	wallets     WalletRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewWalletService constructs a wallet service with the provided dependencies.
func NewWalletService(wallets WalletRepository, idGenerator func() string, now func() time.Time) *WalletService {
	return NewWalletServiceWithLogger(wallets, idGenerator, now, nil)
}

// NewWalletServiceWithLogger constructs a wallet service with a specified logger.
func NewWalletServiceWithLogger(wallets WalletRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *WalletService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &WalletService{wallets: wallets, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *WalletService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "WalletService", operation, attrs...)
}

// Credit adds funds to a user's wallet. Administrators only.
func (s *WalletService) Credit(ctx context.Context, params WalletEntryParams) (wallet Wallet, entry WalletTransaction, err error) {
	if s == nil {
		err = fmt.Errorf("WalletService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Credit",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
		"amount", params.Amount,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to credit wallet", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("transaction_id", entry.ID, "balance_after", entry.BalanceAfter).InfoContext(ctx, "wallet credited")
	}()

	if !params.Principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	return s.apply(ctx, params, DirectionCredit)
}

// Debit removes funds from a user's wallet. Administrators only; modules that
// settle charges on a user's behalf go through Spend instead.
func (s *WalletService) Debit(ctx context.Context, params WalletEntryParams) (wallet Wallet, entry WalletTransaction, err error) {
	if s == nil {
		err = fmt.Errorf("WalletService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Debit",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
		"amount", params.Amount,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to debit wallet", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("transaction_id", entry.ID, "balance_after", entry.BalanceAfter).InfoContext(ctx, "wallet debited")
	}()

	if !params.Principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	return s.apply(ctx, params, DirectionDebit)
}

// Spend debits the principal's own wallet on behalf of another module (fine
// settlement, canteen orders). The caller must be spending from their own
// wallet; all ledger invariants apply unchanged.
func (s *WalletService) Spend(ctx context.Context, params WalletEntryParams) (wallet Wallet, entry WalletTransaction, err error) {
	if s == nil {
		err = fmt.Errorf("WalletService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Spend",
		"principal_id", params.Principal.UserID,
		"amount", params.Amount,
		"category", params.Category,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to spend from wallet", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("transaction_id", entry.ID, "balance_after", entry.BalanceAfter).InfoContext(ctx, "wallet spend applied")
	}()

	if !params.Principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if params.UserID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}

	return s.apply(ctx, params, DirectionDebit)
}

// Refund returns funds to the principal's own wallet. Modules that settled a
// charge through Spend use it to compensate when the operation fails after
// the debit applied.
func (s *WalletService) Refund(ctx context.Context, params WalletEntryParams) (wallet Wallet, entry WalletTransaction, err error) {
	if s == nil {
		err = fmt.Errorf("WalletService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Refund",
		"principal_id", params.Principal.UserID,
		"amount", params.Amount,
		"category", params.Category,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to refund wallet", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("transaction_id", entry.ID, "balance_after", entry.BalanceAfter).InfoContext(ctx, "wallet refund applied")
	}()

	if !params.Principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if params.UserID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}

	return s.apply(ctx, params, DirectionCredit)
}

// apply validates the entry, checks wallet state, and persists the balance
// change together with the log row.
func (s *WalletService) apply(ctx context.Context, params WalletEntryParams, direction TransactionDirection) (Wallet, WalletTransaction, error) {
	if s.wallets == nil {
		return Wallet{}, WalletTransaction{}, fmt.Errorf("wallet repository not configured")
	}

	vErr := &ValidationError{}
	if params.Amount <= 0 {
		vErr.add("amount", "amount must be positive")
	}
	if _, ok := ParseTransactionCategory(string(params.Category)); !ok {
		vErr.add("category", "unknown category")
	}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("user_id", "user id is required")
	}
	if vErr.HasErrors() {
		return Wallet{}, WalletTransaction{}, vErr
	}

	wallet, err := s.wallets.GetWalletByUser(ctx, params.Principal.CollegeID, params.UserID)
	if err != nil {
		return Wallet{}, WalletTransaction{}, mapRepoError(err)
	}

	if wallet.Status == WalletFrozen {
		return Wallet{}, WalletTransaction{}, ErrWalletFrozen
	}

	newBalance := wallet.Balance
	switch direction {
	case DirectionCredit:
		newBalance += params.Amount
	case DirectionDebit:
		if params.Amount > wallet.Balance {
			return Wallet{}, WalletTransaction{}, ErrInsufficientBalance
		}
		newBalance -= params.Amount
	}

	now := s.now()
	wallet.Balance = newBalance
	wallet.UpdatedAt = now

	entry := WalletTransaction{
		ID:           s.idGenerator(),
		CollegeID:    wallet.CollegeID,
		WalletID:     wallet.ID,
		UserID:       params.UserID,
		Direction:    direction,
		Amount:       params.Amount,
		Category:     params.Category,
		Description:  strings.TrimSpace(params.Description),
		ReferenceID:  params.ReferenceID,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}

	persisted, err := s.wallets.ApplyTransaction(ctx, wallet, entry)
	if err != nil {
		return Wallet{}, WalletTransaction{}, mapRepoError(err)
	}

	return persisted, entry, nil
}

// Freeze blocks a wallet from credits and debits. Administrators only.
func (s *WalletService) Freeze(ctx context.Context, principal Principal, userID string) (Wallet, error) {
	return s.setStatus(ctx, principal, userID, WalletFrozen)
}

// Unfreeze reactivates a frozen wallet. Administrators only.
func (s *WalletService) Unfreeze(ctx context.Context, principal Principal, userID string) (Wallet, error) {
	return s.setStatus(ctx, principal, userID, WalletActive)
}

func (s *WalletService) setStatus(ctx context.Context, principal Principal, userID string, status WalletStatus) (wallet Wallet, err error) {
	if s == nil {
		err = fmt.Errorf("WalletService is nil")
		return
	}
	if s.wallets == nil {
		err = fmt.Errorf("wallet repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetStatus",
		"principal_id", principal.UserID,
		"user_id", userID,
		"status", string(status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update wallet status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "wallet status updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing Wallet
	existing, err = s.wallets.GetWalletByUser(ctx, principal.CollegeID, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.Status == status {
		err = ErrInvalidState
		return
	}

	existing.Status = status
	existing.UpdatedAt = s.now()

	wallet, err = s.wallets.UpdateWalletStatus(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	return
}

// GetWallet returns a wallet readable by its owner or an administrator.
func (s *WalletService) GetWallet(ctx context.Context, principal Principal, userID string) (Wallet, error) {
	if s == nil || s.wallets == nil {
		return Wallet{}, fmt.Errorf("wallet service not configured")
	}
	if !principal.IsAuthenticated() {
		return Wallet{}, ErrUnauthenticated
	}
	if principal.UserID != userID && !principal.IsAdmin() {
		return Wallet{}, ErrUnauthorized
	}

	wallet, err := s.wallets.GetWalletByUser(ctx, principal.CollegeID, userID)
	if err != nil {
		return Wallet{}, mapRepoError(err)
	}
	return wallet, nil
}

// ListTransactions returns the wallet log in reverse chronological order.
func (s *WalletService) ListTransactions(ctx context.Context, principal Principal, userID string, limit int) ([]WalletTransaction, error) {
	if s == nil || s.wallets == nil {
		return nil, fmt.Errorf("wallet service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries, err := s.wallets.ListTransactions(ctx, principal.CollegeID, userID, limit)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}
