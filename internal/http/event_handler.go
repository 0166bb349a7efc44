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

type eventService interface {
	CreateEvent(ctx context.Context, principal application.Principal, input application.EventInput) (application.Event, error)
	Register(ctx context.Context, principal application.Principal, eventID string) (application.EventRegistration, error)
	CancelRegistration(ctx context.Context, principal application.Principal, eventID, userID string) (application.EventRegistration, error)
	MarkAttendance(ctx context.Context, principal application.Principal, eventID, userID string, attended bool) (application.EventRegistration, error)
	GetEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error)
	ListEvents(ctx context.Context, principal application.Principal) ([]application.Event, error)
	ListRegistrations(ctx context.Context, principal application.Principal, eventID string) ([]application.EventRegistration, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse event timestamps", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	event, err := h.service.CreateEvent(r.Context(), principal, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "event_id", eventID)

	event, err := h.service.GetEvent(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	events, err := h.service.ListEvents(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Register", "principal_id", principal.UserID, "event_id", eventID)

	registration, err := h.service.Register(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("registration_id", registration.ID, "status", string(registration.Status)).InfoContext(r.Context(), "registered for event")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, registrationResponse{Registration: toRegistrationDTO(registration)})
}

func (h *EventHandler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CancelRegistration", "principal_id", principal.UserID, "event_id", eventID, "user_id", userID)

	registration, err := h.service.CancelRegistration(r.Context(), principal, eventID, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "registration cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "registration cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationResponse{Registration: toRegistrationDTO(registration)})
}

func (h *EventHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "MarkAttendance", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode attendance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "MarkAttendance", "principal_id", principal.UserID, "event_id", eventID, "user_id", userID)

	registration, err := h.service.MarkAttendance(r.Context(), principal, eventID, userID, req.Attended)
	if err != nil {
		logger.ErrorContext(r.Context(), "attendance update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(registration.Status)).InfoContext(r.Context(), "attendance updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationResponse{Registration: toRegistrationDTO(registration)})
}

func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListRegistrations", "principal_id", principal.UserID, "event_id", eventID)

	registrations, err := h.service.ListRegistrations(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "registration list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(registrations)).InfoContext(r.Context(), "registrations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRegistrationsResponse{Registrations: toRegistrationDTOs(registrations)})
}

type eventRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	StartsAt             string `json:"starts_at"`
	RegistrationDeadline string `json:"registration_deadline,omitempty"`
	MaxAttendees         *int   `json:"max_attendees,omitempty"`
}

func (r eventRequest) toInput() (application.EventInput, error) {
	input := application.EventInput{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		MaxAttendees: r.MaxAttendees,
	}

	if raw := strings.TrimSpace(r.StartsAt); raw != "" {
		startsAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.EventInput{}, errBadRequestBody
		}
		input.StartsAt = startsAt
	}
	if raw := strings.TrimSpace(r.RegistrationDeadline); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.EventInput{}, errBadRequestBody
		}
		input.RegistrationDeadline = &deadline
	}
	return input, nil
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type registrationResponse struct {
	Registration registrationDTO `json:"registration"`
}

type listRegistrationsResponse struct {
	Registrations []registrationDTO `json:"registrations"`
}

type eventDTO struct {
	ID                   string  `json:"id"`
	CreatorID            string  `json:"creator_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Status               string  `json:"status"`
	StartsAt             string  `json:"starts_at"`
	RegistrationDeadline *string `json:"registration_deadline,omitempty"`
	MaxAttendees         *int    `json:"max_attendees,omitempty"`
	RegistrationCount    int     `json:"registration_count"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

type registrationDTO struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	UserID       string  `json:"user_id"`
	Status       string  `json:"status"`
	RegisteredAt string  `json:"registered_at"`
	CancelledAt  *string `json:"cancelled_at,omitempty"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:                   event.ID,
		CreatorID:            event.CreatorID,
		Title:                event.Title,
		Description:          event.Description,
		Status:               string(event.Status),
		StartsAt:             event.StartsAt.UTC().Format(time.RFC3339Nano),
		RegistrationDeadline: formatTimePtr(event.RegistrationDeadline),
		MaxAttendees:         event.MaxAttendees,
		RegistrationCount:    event.RegistrationCount,
		CreatedAt:            event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:            event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

func toRegistrationDTO(registration application.EventRegistration) registrationDTO {
	return registrationDTO{
		ID:           registration.ID,
		EventID:      registration.EventID,
		UserID:       registration.UserID,
		Status:       string(registration.Status),
		RegisteredAt: registration.RegisteredAt.UTC().Format(time.RFC3339Nano),
		CancelledAt:  formatTimePtr(registration.CancelledAt),
	}
}

func toRegistrationDTOs(registrations []application.EventRegistration) []registrationDTO {
	if len(registrations) == 0 {
		return nil
	}
	out := make([]registrationDTO, 0, len(registrations))
	for _, registration := range registrations {
		out = append(out, toRegistrationDTO(registration))
	}
	return out
}
