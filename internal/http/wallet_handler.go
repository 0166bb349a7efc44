package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
)

type walletService interface {
	Credit(ctx context.Context, params application.WalletEntryParams) (application.Wallet, application.WalletTransaction, error)
	Debit(ctx context.Context, params application.WalletEntryParams) (application.Wallet, application.WalletTransaction, error)
	Freeze(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error)
	Unfreeze(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error)
	GetWallet(ctx context.Context, principal application.Principal, userID string) (application.Wallet, error)
	ListTransactions(ctx context.Context, principal application.Principal, userID string, limit int) ([]application.WalletTransaction, error)
}

type WalletHandler struct {
	service      walletService
	historyLimit int
	responder    responder
	logger       *slog.Logger
}

func NewWalletHandler(service walletService, historyLimit int, logger *slog.Logger) *WalletHandler {
	base := defaultLogger(logger)
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &WalletHandler{service: service, historyLimit: historyLimit, responder: newResponder(base), logger: base}
}

func (h *WalletHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WalletHandler", operation, attrs...)
}

func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, "Credit")
}

func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, "Debit")
}

func (h *WalletHandler) applyEntry(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())

	var req walletEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "principal_id", principal.UserID, "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode wallet entry", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "user_id", userID, "amount", req.Amount)

	params := application.WalletEntryParams{
		Principal:   principal,
		UserID:      userID,
		Amount:      req.Amount,
		Category:    application.TransactionCategory(strings.TrimSpace(strings.ToLower(req.Category))),
		Description: strings.TrimSpace(req.Description),
		ReferenceID: req.ReferenceID,
	}

	var (
		wallet application.Wallet
		entry  application.WalletTransaction
		err    error
	)
	if operation == "Credit" {
		wallet, entry, err = h.service.Credit(r.Context(), params)
	} else {
		wallet, entry, err = h.service.Debit(r.Context(), params)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "wallet entry failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("transaction_id", entry.ID, "balance_after", entry.BalanceAfter).InfoContext(r.Context(), "wallet entry applied")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, walletEntryResponse{
		Wallet:      toWalletDTO(wallet),
		Transaction: toTransactionDTO(entry),
	})
}

func (h *WalletHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "Freeze")
}

func (h *WalletHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "Unfreeze")
}

func (h *WalletHandler) setStatus(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "user_id", userID)

	var (
		wallet application.Wallet
		err    error
	)
	if operation == "Freeze" {
		wallet, err = h.service.Freeze(r.Context(), principal, userID)
	} else {
		wallet, err = h.service.Unfreeze(r.Context(), principal, userID)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "wallet status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(wallet.Status)).InfoContext(r.Context(), "wallet status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, walletResponse{Wallet: toWalletDTO(wallet)})
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "user_id", userID)

	wallet, err := h.service.GetWallet(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "wallet fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, walletResponse{Wallet: toWalletDTO(wallet)})
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())

	limit := h.historyLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < limit {
			limit = parsed
		}
	}

	logger := h.log(r.Context(), "ListTransactions", "principal_id", principal.UserID, "user_id", userID, "limit", limit)

	transactions, err := h.service.ListTransactions(r.Context(), principal, userID, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "transaction list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(transactions)).InfoContext(r.Context(), "transactions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTransactionsResponse{Transactions: toTransactionDTOs(transactions)})
}

type walletEntryRequest struct {
	Amount      int64   `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ReferenceID *string `json:"reference_id,omitempty"`
}

type walletResponse struct {
	Wallet walletDTO `json:"wallet"`
}

type walletEntryResponse struct {
	Wallet      walletDTO      `json:"wallet"`
	Transaction transactionDTO `json:"transaction"`
}

type listTransactionsResponse struct {
	Transactions []transactionDTO `json:"transactions"`
}

type walletDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Balance   int64  `json:"balance"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

type transactionDTO struct {
	ID           string  `json:"id"`
	WalletID     string  `json:"wallet_id"`
	UserID       string  `json:"user_id"`
	Direction    string  `json:"direction"`
	Amount       int64   `json:"amount"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	ReferenceID  *string `json:"reference_id,omitempty"`
	BalanceAfter int64   `json:"balance_after"`
	CreatedAt    string  `json:"created_at"`
}

func toWalletDTO(wallet application.Wallet) walletDTO {
	return walletDTO{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Balance:   wallet.Balance,
		Status:    string(wallet.Status),
		UpdatedAt: wallet.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTransactionDTO(entry application.WalletTransaction) transactionDTO {
	return transactionDTO{
		ID:           entry.ID,
		WalletID:     entry.WalletID,
		UserID:       entry.UserID,
		Direction:    string(entry.Direction),
		Amount:       entry.Amount,
		Category:     string(entry.Category),
		Description:  entry.Description,
		ReferenceID:  entry.ReferenceID,
		BalanceAfter: entry.BalanceAfter,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTransactionDTOs(entries []application.WalletTransaction) []transactionDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]transactionDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toTransactionDTO(entry))
	}
	return out
}
