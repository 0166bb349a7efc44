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

type leaderboardService interface {
	SubmitScore(ctx context.Context, params application.SubmitScoreParams) (application.SubmitScoreResult, error)
	SkillRanking(ctx context.Context, principal application.Principal, skillName string, limit int) ([]application.RankedEntry, error)
	OverallRanking(ctx context.Context, principal application.Principal, limit int) ([]application.RankedEntry, error)
	ListUserEntries(ctx context.Context, principal application.Principal, userID string) ([]application.SkillEntry, error)
	SetAnonymous(ctx context.Context, principal application.Principal, anonymous bool) error
}

type LeaderboardHandler struct {
	service   leaderboardService
	responder responder
	logger    *slog.Logger
}

func NewLeaderboardHandler(service leaderboardService, logger *slog.Logger) *LeaderboardHandler {
	base := defaultLogger(logger)
	return &LeaderboardHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LeaderboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LeaderboardHandler", operation, attrs...)
}

func (h *LeaderboardHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SubmitScore", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode score request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SubmitScore", "principal_id", principal.UserID, "skill_name", req.SkillName)

	result, err := h.service.SubmitScore(r.Context(), application.SubmitScoreParams{
		Principal: principal,
		SkillName: strings.TrimSpace(req.SkillName),
		Score:     req.Score,
		Category:  req.Category,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "score submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("is_new_best", result.IsNewBest, "score", result.Entry.Score).InfoContext(r.Context(), "score submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scoreResponse{
		Entry:     toSkillEntryDTO(result.Entry),
		IsNewBest: result.IsNewBest,
	})
}

func (h *LeaderboardHandler) SkillRanking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	skillName := chi.URLParam(r, "skillName")
	principal, _ := PrincipalFromContext(r.Context())
	limit := parseLimit(r, 20)
	logger := h.log(r.Context(), "SkillRanking", "principal_id", principal.UserID, "skill_name", skillName, "limit", limit)

	entries, err := h.service.SkillRanking(r.Context(), principal, skillName, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "ranking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "ranking computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rankingResponse{Entries: toRankedDTOs(entries)})
}

func (h *LeaderboardHandler) OverallRanking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	limit := parseLimit(r, 20)
	logger := h.log(r.Context(), "OverallRanking", "principal_id", principal.UserID, "limit", limit)

	entries, err := h.service.OverallRanking(r.Context(), principal, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "ranking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "ranking computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rankingResponse{Entries: toRankedDTOs(entries)})
}

func (h *LeaderboardHandler) ListUserEntries(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListUserEntries", "principal_id", principal.UserID, "user_id", userID)

	entries, err := h.service.ListUserEntries(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "entry list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "entries listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSkillEntriesResponse{Entries: toSkillEntryDTOs(entries)})
}

func (h *LeaderboardHandler) SetAnonymous(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req anonymousRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetAnonymous", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode anonymity request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetAnonymous", "principal_id", principal.UserID, "anonymous", req.Anonymous)

	if err := h.service.SetAnonymous(r.Context(), principal, req.Anonymous); err != nil {
		logger.ErrorContext(r.Context(), "anonymity update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "anonymity updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}

type scoreRequest struct {
	SkillName string  `json:"skill_name"`
	Score     int     `json:"score"`
	Category  *string `json:"category,omitempty"`
}

type anonymousRequest struct {
	Anonymous bool `json:"anonymous"`
}

type scoreResponse struct {
	Entry     skillEntryDTO `json:"entry"`
	IsNewBest bool          `json:"is_new_best"`
}

type rankingResponse struct {
	Entries []rankedDTO `json:"entries"`
}

type listSkillEntriesResponse struct {
	Entries []skillEntryDTO `json:"entries"`
}

type skillEntryDTO struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	SkillName   string   `json:"skill_name"`
	Score       int      `json:"score"`
	Category    *string  `json:"category,omitempty"`
	IsAnonymous bool     `json:"is_anonymous"`
	Badges      []string `json:"badges,omitempty"`
	VerifiedAt  *string  `json:"verified_at,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

type rankedDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	SkillName   string `json:"skill_name,omitempty"`
	Score       int    `json:"score"`
}

func toSkillEntryDTO(entry application.SkillEntry) skillEntryDTO {
	return skillEntryDTO{
		ID:          entry.ID,
		UserID:      entry.UserID,
		SkillName:   entry.SkillName,
		Score:       entry.Score,
		Category:    entry.Category,
		IsAnonymous: entry.IsAnonymous,
		Badges:      entry.Badges,
		VerifiedAt:  formatTimePtr(entry.VerifiedAt),
		UpdatedAt:   entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSkillEntryDTOs(entries []application.SkillEntry) []skillEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]skillEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toSkillEntryDTO(entry))
	}
	return out
}

func toRankedDTOs(entries []application.RankedEntry) []rankedDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]rankedDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, rankedDTO{
			Rank:        entry.Rank,
			UserID:      entry.UserID,
			DisplayName: entry.DisplayName,
			SkillName:   entry.SkillName,
			Score:       entry.Score,
		})
	}
	return out
}
