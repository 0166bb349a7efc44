package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/testfixtures"
)

func seedUserWithWallet(t *testing.T, harness *testfixtures.SQLiteHarness, balance int64) (testfixtures.UserFixture, testfixtures.WalletFixture) {
	t.Helper()
	user := testfixtures.NewUserFixture()
	wallet := testfixtures.NewWalletFixture(
		testfixtures.WithWalletOwner(user.ID),
		testfixtures.WithWalletBalance(balance),
	)
	if err := harness.Users.CreateUserWithWallet(context.Background(), user.Persistence(), wallet.Persistence()); err != nil {
		t.Fatalf("CreateUserWithWallet failed: %v", err)
	}
	return user, wallet
}

func TestWalletRepository_ApplyTransactionCredit(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user, wallet := seedUserWithWallet(t, harness, 100)

	entry := persistence.WalletTransaction{
		ID:           "txn-1",
		CollegeID:    wallet.CollegeID,
		WalletID:     wallet.ID,
		UserID:       user.ID,
		Direction:    "credit",
		Category:     "topup",
		Amount:       250,
		BalanceAfter: 350,
		Description:  "counter top-up",
		CreatedAt:    testfixtures.ReferenceTime(),
	}
	if err := harness.Wallets.ApplyTransaction(ctx, wallet.Persistence(), entry); err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	stored, err := harness.Wallets.GetWalletByUser(ctx, wallet.CollegeID, user.ID)
	if err != nil {
		t.Fatalf("GetWalletByUser failed: %v", err)
	}
	if stored.Balance != 350 {
		t.Fatalf("expected balance 350, got %d", stored.Balance)
	}
}

func TestWalletRepository_ApplyTransactionGuardsDebit(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user, wallet := seedUserWithWallet(t, harness, 100)

	entry := persistence.WalletTransaction{
		ID:        "txn-1",
		CollegeID: wallet.CollegeID,
		WalletID:  wallet.ID,
		UserID:    user.ID,
		Direction: "debit",
		Category:  "canteen",
		Amount:    150,
		CreatedAt: testfixtures.ReferenceTime(),
	}
	err := harness.Wallets.ApplyTransaction(ctx, wallet.Persistence(), entry)
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	stored, err := harness.Wallets.GetWalletByUser(ctx, wallet.CollegeID, user.ID)
	if err != nil {
		t.Fatalf("GetWalletByUser failed: %v", err)
	}
	if stored.Balance != 100 {
		t.Fatalf("expected balance untouched at 100, got %d", stored.Balance)
	}

	entries, err := harness.Wallets.ListTransactions(ctx, wallet.CollegeID, wallet.ID, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no ledger rows after rollback, got %d", len(entries))
	}
}

func TestWalletRepository_ListTransactionsNewestFirst(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user, wallet := seedUserWithWallet(t, harness, 0)

	base := testfixtures.ReferenceTime()
	for i, id := range []string{"txn-1", "txn-2", "txn-3"} {
		entry := persistence.WalletTransaction{
			ID:           id,
			CollegeID:    wallet.CollegeID,
			WalletID:     wallet.ID,
			UserID:       user.ID,
			Direction:    "credit",
			Category:     "topup",
			Amount:       10,
			BalanceAfter: int64((i + 1) * 10),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := harness.Wallets.ApplyTransaction(ctx, wallet.Persistence(), entry); err != nil {
			t.Fatalf("ApplyTransaction %s failed: %v", id, err)
		}
	}

	entries, err := harness.Wallets.ListTransactions(ctx, wallet.CollegeID, wallet.ID, 2)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "txn-3" || entries[1].ID != "txn-2" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].ID, entries[1].ID)
	}
}

func TestWalletRepository_UpdateWalletStatus(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user, wallet := seedUserWithWallet(t, harness, 0)

	if err := harness.Wallets.UpdateWalletStatus(ctx, wallet.CollegeID, wallet.ID, "frozen", testfixtures.ReferenceTime()); err != nil {
		t.Fatalf("UpdateWalletStatus failed: %v", err)
	}

	stored, err := harness.Wallets.GetWalletByUser(ctx, wallet.CollegeID, user.ID)
	if err != nil {
		t.Fatalf("GetWalletByUser failed: %v", err)
	}
	if stored.Status != "frozen" {
		t.Fatalf("expected frozen wallet, got %q", stored.Status)
	}

	if err := harness.Wallets.UpdateWalletStatus(ctx, wallet.CollegeID, "missing", "frozen", testfixtures.ReferenceTime()); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
