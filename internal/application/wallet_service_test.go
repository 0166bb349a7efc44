package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func adminPrincipal() Principal {
	return Principal{UserID: "admin-1", CollegeID: "college-1", Role: RoleAdmin}
}

func studentPrincipal(userID string) Principal {
	return Principal{UserID: userID, CollegeID: "college-1", Role: RoleStudent}
}

func TestWalletService_Credit(t *testing.T) {
	t.Parallel()

	t.Run("adds funds and appends a log row", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 100, Status: WalletActive})

		svc := NewWalletService(repo, func() string { return "txn-1" }, func() time.Time { return now })

		wallet, entry, err := svc.Credit(context.Background(), WalletEntryParams{
			Principal:   adminPrincipal(),
			UserID:      "user-1",
			Amount:      250,
			Category:    CategoryTopup,
			Description: " semester top-up ",
		})
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}

		if wallet.Balance != 350 {
			t.Fatalf("expected balance 350, got %d", wallet.Balance)
		}
		if entry.BalanceAfter != 350 {
			t.Fatalf("expected BalanceAfter 350, got %d", entry.BalanceAfter)
		}
		if entry.Direction != DirectionCredit || entry.Description != "semester top-up" {
			t.Fatalf("unexpected entry: %#v", entry)
		}
		if len(repo.entries) != 1 {
			t.Fatalf("expected one persisted log row, got %d", len(repo.entries))
		}
	})

	t.Run("requires the admin role", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Credit(context.Background(), WalletEntryParams{
			Principal: studentPrincipal("user-1"),
			UserID:    "user-1",
			Amount:    10,
			Category:  CategoryTopup,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects frozen wallets", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 100, Status: WalletFrozen})
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Credit(context.Background(), WalletEntryParams{
			Principal: adminPrincipal(),
			UserID:    "user-1",
			Amount:    10,
			Category:  CategoryTopup,
		})
		if !errors.Is(err, ErrWalletFrozen) {
			t.Fatalf("expected ErrWalletFrozen, got %v", err)
		}
	})

	t.Run("validates amount and category", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Credit(context.Background(), WalletEntryParams{
			Principal: adminPrincipal(),
			UserID:    "user-1",
			Amount:    0,
			Category:  "gold",
		})
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected two field errors, got %#v", vErr.FieldErrors)
		}
	})
}

func TestWalletService_Debit(t *testing.T) {
	t.Parallel()

	t.Run("removes funds down to zero", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 80, Status: WalletActive})
		svc := NewWalletService(repo, func() string { return "txn-1" }, nil)

		wallet, entry, err := svc.Debit(context.Background(), WalletEntryParams{
			Principal: adminPrincipal(),
			UserID:    "user-1",
			Amount:    80,
			Category:  CategoryPrint,
		})
		if err != nil {
			t.Fatalf("Debit failed: %v", err)
		}
		if wallet.Balance != 0 || entry.BalanceAfter != 0 {
			t.Fatalf("expected zero balance, got wallet=%d entry=%d", wallet.Balance, entry.BalanceAfter)
		}
	})

	t.Run("never lets the balance go negative", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 30, Status: WalletActive})
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Debit(context.Background(), WalletEntryParams{
			Principal: adminPrincipal(),
			UserID:    "user-1",
			Amount:    31,
			Category:  CategoryCanteen,
		})
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if len(repo.entries) != 0 {
			t.Fatalf("expected no log row on rejected debit, got %d", len(repo.entries))
		}
	})
}

func TestWalletService_Spend(t *testing.T) {
	t.Parallel()

	t.Run("debits the principal's own wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 500, Status: WalletActive})
		svc := NewWalletService(repo, func() string { return "txn-1" }, nil)

		ref := "order-9"
		wallet, entry, err := svc.Spend(context.Background(), WalletEntryParams{
			Principal:   studentPrincipal("user-1"),
			UserID:      "user-1",
			Amount:      120,
			Category:    CategoryCanteen,
			ReferenceID: &ref,
		})
		if err != nil {
			t.Fatalf("Spend failed: %v", err)
		}
		if wallet.Balance != 380 {
			t.Fatalf("expected balance 380, got %d", wallet.Balance)
		}
		if entry.ReferenceID == nil || *entry.ReferenceID != "order-9" {
			t.Fatalf("expected reference to be recorded, got %#v", entry.ReferenceID)
		}
	})

	t.Run("rejects spending from another user's wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Spend(context.Background(), WalletEntryParams{
			Principal: studentPrincipal("user-1"),
			UserID:    "user-2",
			Amount:    10,
			Category:  CategoryCanteen,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestWalletService_Refund(t *testing.T) {
	t.Parallel()

	t.Run("credits the principal's own wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 380, Status: WalletActive})
		svc := NewWalletService(repo, func() string { return "txn-2" }, nil)

		ref := "order-9"
		wallet, entry, err := svc.Refund(context.Background(), WalletEntryParams{
			Principal:   studentPrincipal("user-1"),
			UserID:      "user-1",
			Amount:      120,
			Category:    CategoryRefund,
			ReferenceID: &ref,
		})
		if err != nil {
			t.Fatalf("Refund failed: %v", err)
		}
		if wallet.Balance != 500 {
			t.Fatalf("expected balance 500, got %d", wallet.Balance)
		}
		if entry.Direction != DirectionCredit || entry.Category != CategoryRefund {
			t.Fatalf("unexpected ledger entry: %+v", entry)
		}
		if entry.ReferenceID == nil || *entry.ReferenceID != "order-9" {
			t.Fatalf("expected reference to be recorded, got %#v", entry.ReferenceID)
		}
	})

	t.Run("rejects refunding another user's wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		svc := NewWalletService(repo, nil, nil)

		_, _, err := svc.Refund(context.Background(), WalletEntryParams{
			Principal: studentPrincipal("user-1"),
			UserID:    "user-2",
			Amount:    10,
			Category:  CategoryRefund,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestWalletService_Freeze(t *testing.T) {
	t.Parallel()

	t.Run("freezes an active wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 10, Status: WalletActive})
		svc := NewWalletService(repo, nil, nil)

		wallet, err := svc.Freeze(context.Background(), adminPrincipal(), "user-1")
		if err != nil {
			t.Fatalf("Freeze failed: %v", err)
		}
		if wallet.Status != WalletFrozen {
			t.Fatalf("expected frozen wallet, got %s", wallet.Status)
		}
	})

	t.Run("rejects freezing twice", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Status: WalletFrozen})
		svc := NewWalletService(repo, nil, nil)

		if _, err := svc.Freeze(context.Background(), adminPrincipal(), "user-1"); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("unfreeze restores entries", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 50, Status: WalletFrozen})
		svc := NewWalletService(repo, func() string { return "txn-1" }, nil)

		if _, err := svc.Unfreeze(context.Background(), adminPrincipal(), "user-1"); err != nil {
			t.Fatalf("Unfreeze failed: %v", err)
		}

		_, _, err := svc.Credit(context.Background(), WalletEntryParams{
			Principal: adminPrincipal(),
			UserID:    "user-1",
			Amount:    5,
			Category:  CategoryTopup,
		})
		if err != nil {
			t.Fatalf("Credit after unfreeze failed: %v", err)
		}
	})
}

func TestWalletService_GetWallet(t *testing.T) {
	t.Parallel()

	t.Run("owners read their own wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1", Balance: 42})
		svc := NewWalletService(repo, nil, nil)

		wallet, err := svc.GetWallet(context.Background(), studentPrincipal("user-1"), "user-1")
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if wallet.Balance != 42 {
			t.Fatalf("expected balance 42, got %d", wallet.Balance)
		}
	})

	t.Run("non-admins cannot read another wallet", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1"})
		svc := NewWalletService(repo, nil, nil)

		if _, err := svc.GetWallet(context.Background(), studentPrincipal("user-2"), "user-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestWalletService_ListTransactions(t *testing.T) {
	t.Parallel()

	t.Run("clamps pathological limits", func(t *testing.T) {
		t.Parallel()

		repo := newWalletRepositoryStub()
		repo.seed(Wallet{ID: "wallet-1", CollegeID: "college-1", UserID: "user-1"})
		svc := NewWalletService(repo, nil, nil)

		if _, err := svc.ListTransactions(context.Background(), studentPrincipal("user-1"), "user-1", -5); err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if repo.lastListLimit != 50 {
			t.Fatalf("expected limit clamped to 50, got %d", repo.lastListLimit)
		}
	})
}

// walletRepositoryStub provides an in-memory WalletRepository for tests.
type walletRepositoryStub struct {
	walletsByUser map[string]Wallet
	entries       []WalletTransaction

	getErr   error
	applyErr error

	lastListLimit int
}

func newWalletRepositoryStub() *walletRepositoryStub {
	return &walletRepositoryStub{walletsByUser: make(map[string]Wallet)}
}

func (s *walletRepositoryStub) key(collegeID, userID string) string {
	return collegeID + "/" + userID
}

func (s *walletRepositoryStub) seed(wallet Wallet) {
	s.walletsByUser[s.key(wallet.CollegeID, wallet.UserID)] = wallet
}

func (s *walletRepositoryStub) GetWalletByUser(ctx context.Context, collegeID, userID string) (Wallet, error) {
	if s.getErr != nil {
		return Wallet{}, s.getErr
	}
	wallet, ok := s.walletsByUser[s.key(collegeID, userID)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

func (s *walletRepositoryStub) ApplyTransaction(ctx context.Context, wallet Wallet, entry WalletTransaction) (Wallet, error) {
	if s.applyErr != nil {
		return Wallet{}, s.applyErr
	}
	s.walletsByUser[s.key(wallet.CollegeID, wallet.UserID)] = wallet
	s.entries = append(s.entries, entry)
	return wallet, nil
}

func (s *walletRepositoryStub) UpdateWalletStatus(ctx context.Context, wallet Wallet) (Wallet, error) {
	s.walletsByUser[s.key(wallet.CollegeID, wallet.UserID)] = wallet
	return wallet, nil
}

func (s *walletRepositoryStub) ListTransactions(ctx context.Context, collegeID, userID string, limit int) ([]WalletTransaction, error) {
	s.lastListLimit = limit
	results := make([]WalletTransaction, 0)
	for _, entry := range s.entries {
		if entry.CollegeID == collegeID && entry.UserID == userID {
			results = append(results, entry)
		}
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
