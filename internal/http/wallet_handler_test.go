package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
)

func TestWalletHandler_Credit(t *testing.T) {
	t.Parallel()

	t.Run("applies the entry and returns the new balance", func(t *testing.T) {
		t.Parallel()

		service := &walletServiceStub{
			wallet: application.Wallet{ID: "wallet-1", UserID: "user-1", Balance: 150, Status: application.WalletActive},
			entry: application.WalletTransaction{
				ID:           "txn-1",
				WalletID:     "wallet-1",
				UserID:       "user-1",
				Direction:    application.DirectionCredit,
				Category:     application.CategoryTopup,
				Amount:       50,
				BalanceAfter: 150,
				CreatedAt:    time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC),
			},
		}
		handler := NewWalletHandler(service, 50, nil)

		req := walletRequest(t, http.MethodPost, "/wallets/user-1/credit", `{"amount": 50, "category": "Topup ", "description": " counter top-up "}`, "user-1")
		recorder := httptest.NewRecorder()
		handler.Credit(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		if service.lastParams.UserID != "user-1" {
			t.Fatalf("expected route user to reach the service, got %q", service.lastParams.UserID)
		}
		if service.lastParams.Category != application.CategoryTopup {
			t.Fatalf("expected category normalized to topup, got %q", service.lastParams.Category)
		}
		if service.lastParams.Description != "counter top-up" {
			t.Fatalf("expected trimmed description, got %q", service.lastParams.Description)
		}

		var body walletEntryResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Wallet.Balance != 150 || body.Transaction.ID != "txn-1" {
			t.Fatalf("unexpected response body: %+v", body)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		handler := NewWalletHandler(&walletServiceStub{}, 50, nil)

		req := walletRequest(t, http.MethodPost, "/wallets/user-1/credit", `{"amount": `, "user-1")
		recorder := httptest.NewRecorder()
		handler.Credit(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})
}

func TestWalletHandler_Debit(t *testing.T) {
	t.Parallel()

	t.Run("maps insufficient balance to payment required", func(t *testing.T) {
		t.Parallel()

		service := &walletServiceStub{err: application.ErrInsufficientBalance}
		handler := NewWalletHandler(service, 50, nil)

		req := walletRequest(t, http.MethodPost, "/wallets/user-1/debit", `{"amount": 500, "category": "canteen"}`, "user-1")
		recorder := httptest.NewRecorder()
		handler.Debit(recorder, req)

		if recorder.Code != http.StatusPaymentRequired {
			t.Fatalf("expected status 402, got %d", recorder.Code)
		}
	})
}

func TestWalletHandler_ListTransactions(t *testing.T) {
	t.Parallel()

	t.Run("caps the limit at the configured history size", func(t *testing.T) {
		t.Parallel()

		service := &walletServiceStub{}
		handler := NewWalletHandler(service, 50, nil)

		req := walletRequest(t, http.MethodGet, "/wallets/user-1/transactions?limit=500", "", "user-1")
		recorder := httptest.NewRecorder()
		handler.ListTransactions(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		if service.lastLimit != 50 {
			t.Fatalf("expected limit capped at 50, got %d", service.lastLimit)
		}
	})

	t.Run("honours smaller explicit limits", func(t *testing.T) {
		t.Parallel()

		service := &walletServiceStub{}
		handler := NewWalletHandler(service, 50, nil)

		req := walletRequest(t, http.MethodGet, "/wallets/user-1/transactions?limit=5", "", "user-1")
		recorder := httptest.NewRecorder()
		handler.ListTransactions(recorder, req)

		if service.lastLimit != 5 {
			t.Fatalf("expected limit 5, got %d", service.lastLimit)
		}
	})
}

func walletRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("userID", userID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = ContextWithPrincipal(ctx, application.Principal{UserID: "admin-1", CollegeID: "college-1", Role: application.RoleAdmin})
	return req.WithContext(ctx)
}

type walletServiceStub struct {
	wallet     application.Wallet
	entry      application.WalletTransaction
	err        error
	lastParams application.WalletEntryParams
	lastLimit  int
}

func (s *walletServiceStub) Credit(ctx context.Context, params application.WalletEntryParams) (application.Wallet, application.WalletTransaction, error) {
	s.lastParams = params
	return s.wallet, s.entry, s.err
}

func (s *walletServiceStub) Debit(ctx context.Context, params application.WalletEntryParams) (application.Wallet, application.WalletTransaction, error) {
	s.lastParams = params
	return s.wallet, s.entry, s.err
}

func (s *walletServiceStub) Freeze(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error) {
	return s.wallet, s.err
}

func (s *walletServiceStub) Unfreeze(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error) {
	return s.wallet, s.err
}

func (s *walletServiceStub) GetWallet(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error) {
	return s.wallet, s.err
}

func (s *walletServiceStub) ListTransactions(ctx context.Context, principal application.Principal, userID string, limit int) ([]application.WalletTransaction, error) {
	s.lastLimit = limit
	return nil, s.err
}
