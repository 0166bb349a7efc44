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

type sosService interface {
	CreateAlert(ctx context.Context, params application.CreateSOSParams) (application.SOSAlert, error)
	Respond(ctx context.Context, principal application.Principal, alertID string) (application.SOSAlert, error)
	Resolve(ctx context.Context, principal application.Principal, alertID string) (application.SOSAlert, error)
	Cancel(ctx context.Context, principal application.Principal, alertID string) (application.SOSAlert, error)
	GetAlert(ctx context.Context, principal application.Principal, alertID string) (application.SOSAlert, error)
	ListAlerts(ctx context.Context, principal application.Principal, openOnly bool) ([]application.SOSAlert, error)
}

type SOSHandler struct {
	service   sosService
	responder responder
	logger    *slog.Logger
}

func NewSOSHandler(service sosService, logger *slog.Logger) *SOSHandler {
	base := defaultLogger(logger)
	return &SOSHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SOSHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SOSHandler", operation, attrs...)
}

func (h *SOSHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req sosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode alert request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "alert_type", req.Type)

	params := application.CreateSOSParams{
		Principal:   principal,
		Type:        application.SOSType(strings.TrimSpace(strings.ToLower(req.Type))),
		Description: strings.TrimSpace(req.Description),
	}
	if req.Location != nil {
		params.Location = &application.GeoPoint{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}

	alert, err := h.service.CreateAlert(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "alert creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("alert_id", alert.ID).InfoContext(r.Context(), "alert raised")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sosResponse{Alert: toSOSDTO(alert)})
}

func (h *SOSHandler) Respond(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Respond")
}

func (h *SOSHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Resolve")
}

func (h *SOSHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Cancel")
}

func (h *SOSHandler) transition(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alertID := chi.URLParam(r, "alertID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "alert_id", alertID)

	var (
		alert application.SOSAlert
		err   error
	)
	switch operation {
	case "Respond":
		alert, err = h.service.Respond(r.Context(), principal, alertID)
	case "Resolve":
		alert, err = h.service.Resolve(r.Context(), principal, alertID)
	default:
		alert, err = h.service.Cancel(r.Context(), principal, alertID)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "alert transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(alert.Status)).InfoContext(r.Context(), "alert updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sosResponse{Alert: toSOSDTO(alert)})
}

func (h *SOSHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alertID := chi.URLParam(r, "alertID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "alert_id", alertID)

	alert, err := h.service.GetAlert(r.Context(), principal, alertID)
	if err != nil {
		logger.ErrorContext(r.Context(), "alert fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sosResponse{Alert: toSOSDTO(alert)})
}

func (h *SOSHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	openOnly := r.URL.Query().Get("open") == "true"
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "open_only", openOnly)

	alerts, err := h.service.ListAlerts(r.Context(), principal, openOnly)
	if err != nil {
		logger.ErrorContext(r.Context(), "alert list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(alerts)).InfoContext(r.Context(), "alerts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSOSResponse{Alerts: toSOSDTOs(alerts)})
}

type sosRequest struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Location    *geoPointDTO `json:"location,omitempty"`
}

type sosResponse struct {
	Alert sosDTO `json:"alert"`
}

type listSOSResponse struct {
	Alerts []sosDTO `json:"alerts"`
}

type geoPointDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type sosDTO struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Type         string       `json:"type"`
	Description  string       `json:"description"`
	Location     *geoPointDTO `json:"location,omitempty"`
	Status       string       `json:"status"`
	ResponderIDs []string     `json:"responder_ids,omitempty"`
	ResolvedAt   *string      `json:"resolved_at,omitempty"`
	ResolvedBy   *string      `json:"resolved_by,omitempty"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
}

func toSOSDTO(alert application.SOSAlert) sosDTO {
	dto := sosDTO{
		ID:           alert.ID,
		UserID:       alert.UserID,
		Type:         string(alert.Type),
		Description:  alert.Description,
		Status:       string(alert.Status),
		ResponderIDs: alert.ResponderIDs,
		ResolvedAt:   formatTimePtr(alert.ResolvedAt),
		ResolvedBy:   alert.ResolvedBy,
		CreatedAt:    alert.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    alert.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if alert.Location != nil {
		dto.Location = &geoPointDTO{
			Latitude:  alert.Location.Latitude,
			Longitude: alert.Location.Longitude,
		}
	}
	return dto
}

func toSOSDTOs(alerts []application.SOSAlert) []sosDTO {
	if len(alerts) == 0 {
		return nil
	}
	out := make([]sosDTO, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, toSOSDTO(alert))
	}
	return out
}
