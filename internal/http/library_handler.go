package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
)

type libraryService interface {
	AddBook(ctx context.Context, principal application.Principal, input application.BookInput) (application.Book, error)
	Borrow(ctx context.Context, principal application.Principal, bookID string) (application.BookBorrow, error)
	Return(ctx context.Context, principal application.Principal, borrowID string) (application.BookBorrow, error)
	PayFine(ctx context.Context, principal application.Principal, borrowID string) (application.BookBorrow, error)
	MarkOverdueBooks(ctx context.Context, principal application.Principal) (int, error)
	GetBorrow(ctx context.Context, principal application.Principal, borrowID string) (application.BookBorrow, error)
	ListUserBorrows(ctx context.Context, principal application.Principal, userID string) ([]application.BookBorrow, error)
	ListBooks(ctx context.Context, principal application.Principal) ([]application.Book, error)
	SearchBooks(ctx context.Context, principal application.Principal, query string) ([]application.Book, error)
}

type LibraryHandler struct {
	service   libraryService
	responder responder
	logger    *slog.Logger
}

func NewLibraryHandler(service libraryService, logger *slog.Logger) *LibraryHandler {
	base := defaultLogger(logger)
	return &LibraryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LibraryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LibraryHandler", operation, attrs...)
}

func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddBook", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode book request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddBook", "principal_id", principal.UserID)

	book, err := h.service.AddBook(r.Context(), principal, application.BookInput{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "book creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("book_id", book.ID).InfoContext(r.Context(), "book added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookResponse{Book: toBookDTO(book)})
}

func (h *LibraryHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	logger := h.log(r.Context(), "ListBooks", "principal_id", principal.UserID, "query", query)

	var (
		books []application.Book
		err   error
	)
	if query != "" {
		books, err = h.service.SearchBooks(r.Context(), principal, query)
	} else {
		books, err = h.service.ListBooks(r.Context(), principal)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "book list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(books)).InfoContext(r.Context(), "books listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBooksResponse{Books: toBookDTOs(books)})
}

func (h *LibraryHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookID := chi.URLParam(r, "bookID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Borrow", "principal_id", principal.UserID, "book_id", bookID)

	borrow, err := h.service.Borrow(r.Context(), principal, bookID)
	if err != nil {
		logger.ErrorContext(r.Context(), "borrow failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("borrow_id", borrow.ID).InfoContext(r.Context(), "book borrowed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, borrowResponse{Borrow: toBorrowDTO(borrow)})
}

func (h *LibraryHandler) Return(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	borrowID := chi.URLParam(r, "borrowID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Return", "principal_id", principal.UserID, "borrow_id", borrowID)

	borrow, err := h.service.Return(r.Context(), principal, borrowID)
	if err != nil {
		logger.ErrorContext(r.Context(), "return failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("fine_amount", borrow.FineAmount).InfoContext(r.Context(), "book returned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, borrowResponse{Borrow: toBorrowDTO(borrow)})
}

func (h *LibraryHandler) PayFine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	borrowID := chi.URLParam(r, "borrowID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "PayFine", "principal_id", principal.UserID, "borrow_id", borrowID)

	borrow, err := h.service.PayFine(r.Context(), principal, borrowID)
	if err != nil {
		logger.ErrorContext(r.Context(), "fine payment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("fine_amount", borrow.FineAmount).InfoContext(r.Context(), "fine paid")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, borrowResponse{Borrow: toBorrowDTO(borrow)})
}

func (h *LibraryHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "MarkOverdue", "principal_id", principal.UserID)

	updated, err := h.service.MarkOverdueBooks(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "overdue scan failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("updated_count", updated).InfoContext(r.Context(), "overdue scan completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, overdueScanResponse{Updated: updated})
}

func (h *LibraryHandler) GetBorrow(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	borrowID := chi.URLParam(r, "borrowID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GetBorrow", "principal_id", principal.UserID, "borrow_id", borrowID)

	borrow, err := h.service.GetBorrow(r.Context(), principal, borrowID)
	if err != nil {
		logger.ErrorContext(r.Context(), "borrow fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, borrowResponse{Borrow: toBorrowDTO(borrow)})
}

func (h *LibraryHandler) ListUserBorrows(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListUserBorrows", "principal_id", principal.UserID, "user_id", userID)

	borrows, err := h.service.ListUserBorrows(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "borrow list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(borrows)).InfoContext(r.Context(), "borrows listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBorrowsResponse{Borrows: toBorrowDTOs(borrows)})
}

type bookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	TotalCopies int    `json:"total_copies"`
}

type bookResponse struct {
	Book bookDTO `json:"book"`
}

type listBooksResponse struct {
	Books []bookDTO `json:"books"`
}

type borrowResponse struct {
	Borrow borrowDTO `json:"borrow"`
}

type listBorrowsResponse struct {
	Borrows []borrowDTO `json:"borrows"`
}

type overdueScanResponse struct {
	Updated int `json:"updated"`
}

type bookDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type borrowDTO struct {
	ID         string  `json:"id"`
	BookID     string  `json:"book_id"`
	UserID     string  `json:"user_id"`
	BorrowedAt string  `json:"borrowed_at"`
	DueAt      string  `json:"due_at"`
	ReturnedAt *string `json:"returned_at,omitempty"`
	Status     string  `json:"status"`
	FineAmount int64   `json:"fine_amount"`
	FinePaid   bool    `json:"fine_paid"`
}

func toBookDTO(book application.Book) bookDTO {
	return bookDTO{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		CreatedAt:       book.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       book.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBookDTOs(books []application.Book) []bookDTO {
	if len(books) == 0 {
		return nil
	}
	out := make([]bookDTO, 0, len(books))
	for _, book := range books {
		out = append(out, toBookDTO(book))
	}
	return out
}

func toBorrowDTO(borrow application.BookBorrow) borrowDTO {
	return borrowDTO{
		ID:         borrow.ID,
		BookID:     borrow.BookID,
		UserID:     borrow.UserID,
		BorrowedAt: borrow.BorrowedAt.UTC().Format(time.RFC3339Nano),
		DueAt:      borrow.DueAt.UTC().Format(time.RFC3339Nano),
		ReturnedAt: formatTimePtr(borrow.ReturnedAt),
		Status:     string(borrow.Status),
		FineAmount: borrow.FineAmount,
		FinePaid:   borrow.FinePaid,
	}
}

func toBorrowDTOs(borrows []application.BookBorrow) []borrowDTO {
	if len(borrows) == 0 {
		return nil
	}
	out := make([]borrowDTO, 0, len(borrows))
	for _, borrow := range borrows {
		out = append(out, toBorrowDTO(borrow))
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339Nano)
	return &formatted
}
