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

type canteenService interface {
	AddMenuItem(ctx context.Context, principal application.Principal, input application.MenuItemInput) (application.MenuItem, error)
	UpdateMenuItem(ctx context.Context, principal application.Principal, itemID string, input application.MenuItemInput) (application.MenuItem, error)
	ListMenu(ctx context.Context, principal application.Principal, availableOnly bool) ([]application.MenuItem, error)
	PlaceOrder(ctx context.Context, principal application.Principal, lines []application.OrderLineInput) (application.Order, error)
	FulfillOrder(ctx context.Context, principal application.Principal, orderID string) (application.Order, error)
	ListUserOrders(ctx context.Context, principal application.Principal, userID string) ([]application.Order, error)
}

type CanteenHandler struct {
	service   canteenService
	responder responder
	logger    *slog.Logger
}

func NewCanteenHandler(service canteenService, logger *slog.Logger) *CanteenHandler {
	base := defaultLogger(logger)
	return &CanteenHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CanteenHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CanteenHandler", operation, attrs...)
}

func (h *CanteenHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddMenuItem", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode menu item request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddMenuItem", "principal_id", principal.UserID)

	item, err := h.service.AddMenuItem(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "menu item creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("item_id", item.ID).InfoContext(r.Context(), "menu item added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, menuItemResponse{Item: toMenuItemDTO(item)})
}

func (h *CanteenHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	principal, _ := PrincipalFromContext(r.Context())

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateMenuItem", "principal_id", principal.UserID, "item_id", itemID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode menu item update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateMenuItem", "principal_id", principal.UserID, "item_id", itemID)

	item, err := h.service.UpdateMenuItem(r.Context(), principal, itemID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "menu item update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "menu item updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, menuItemResponse{Item: toMenuItemDTO(item)})
}

func (h *CanteenHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	availableOnly := r.URL.Query().Get("available") == "true"
	logger := h.log(r.Context(), "ListMenu", "principal_id", principal.UserID, "available_only", availableOnly)

	items, err := h.service.ListMenu(r.Context(), principal, availableOnly)
	if err != nil {
		logger.ErrorContext(r.Context(), "menu list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(items)).InfoContext(r.Context(), "menu listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMenuResponse{Items: toMenuItemDTOs(items)})
}

func (h *CanteenHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "PlaceOrder", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode order request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "PlaceOrder", "principal_id", principal.UserID, "line_count", len(req.Lines))

	lines := make([]application.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, application.OrderLineInput{
			ItemID:   strings.TrimSpace(line.ItemID),
			Quantity: line.Quantity,
		})
	}

	order, err := h.service.PlaceOrder(r.Context(), principal, lines)
	if err != nil {
		logger.ErrorContext(r.Context(), "order placement failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("order_id", order.ID, "total", order.Total).InfoContext(r.Context(), "order placed")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, orderResponse{Order: toOrderDTO(order)})
}

func (h *CanteenHandler) FulfillOrder(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "FulfillOrder", "principal_id", principal.UserID, "order_id", orderID)

	order, err := h.service.FulfillOrder(r.Context(), principal, orderID)
	if err != nil {
		logger.ErrorContext(r.Context(), "order fulfillment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "order fulfilled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, orderResponse{Order: toOrderDTO(order)})
}

func (h *CanteenHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListUserOrders", "principal_id", principal.UserID, "user_id", userID)

	orders, err := h.service.ListUserOrders(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "order list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(orders)).InfoContext(r.Context(), "orders listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listOrdersResponse{Orders: toOrderDTOs(orders)})
}

type menuItemRequest struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

func (r menuItemRequest) toInput() application.MenuItemInput {
	return application.MenuItemInput{
		Name:      strings.TrimSpace(r.Name),
		Price:     r.Price,
		Available: r.Available,
	}
}

type orderRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

type orderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type menuItemResponse struct {
	Item menuItemDTO `json:"item"`
}

type listMenuResponse struct {
	Items []menuItemDTO `json:"items"`
}

type orderResponse struct {
	Order orderDTO `json:"order"`
}

type listOrdersResponse struct {
	Orders []orderDTO `json:"orders"`
}

type menuItemDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
	UpdatedAt string `json:"updated_at"`
}

type orderLineDTO struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type orderDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Lines     []orderLineDTO `json:"lines"`
	Total     int64          `json:"total"`
	Status    string         `json:"status"`
	CreatedAt string         `json:"created_at"`
}

func toMenuItemDTO(item application.MenuItem) menuItemDTO {
	return menuItemDTO{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toMenuItemDTOs(items []application.MenuItem) []menuItemDTO {
	if len(items) == 0 {
		return nil
	}
	out := make([]menuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toMenuItemDTO(item))
	}
	return out
}

func toOrderDTO(order application.Order) orderDTO {
	lines := make([]orderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineDTO{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return orderDTO{
		ID:        order.ID,
		UserID:    order.UserID,
		Lines:     lines,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toOrderDTOs(orders []application.Order) []orderDTO {
	if len(orders) == 0 {
		return nil
	}
	out := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderDTO(order))
	}
	return out
}
