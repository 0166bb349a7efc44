package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// SkillRepository captures the persistence operations needed by the
// leaderboard service.
type SkillRepository interface {
	// FindEntry returns the user's entry for a skill, or persistence.ErrNotFound.
	FindEntry(ctx context.Context, collegeID, userID, skillName string) (SkillEntry, error)
	CreateEntry(ctx context.Context, entry SkillEntry) (SkillEntry, error)
	UpdateEntry(ctx context.Context, entry SkillEntry) (SkillEntry, error)
	ListBySkill(ctx context.Context, collegeID, skillName string) ([]SkillEntry, error)
	ListAll(ctx context.Context, collegeID string) ([]SkillEntry, error)
	ListUserEntries(ctx context.Context, collegeID, userID string) ([]SkillEntry, error)
	SetAnonymous(ctx context.Context, collegeID, userID string, anonymous bool) error
}

// UserLookup resolves display names for ranking rows.
type UserLookup interface {
	GetUser(ctx context.Context, collegeID, id string) (User, error)
}

// LeaderboardService records per-skill scores and computes rankings. Each
// (user, skill) pair stores a single entry holding the best score seen.
type LeaderboardService struct {
	skills      SkillRepository
	users       UserLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLeaderboardService constructs a leaderboard service with the provided dependencies.
func NewLeaderboardService(skills SkillRepository, users UserLookup, idGenerator func() string, now func() time.Time) *LeaderboardService {
	return NewLeaderboardServiceWithLogger(skills, users, idGenerator, now, nil)
}

// NewLeaderboardServiceWithLogger constructs a leaderboard service with a specified logger.
func NewLeaderboardServiceWithLogger(skills SkillRepository, users UserLookup, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LeaderboardService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LeaderboardService{skills: skills, users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *LeaderboardService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LeaderboardService", operation, attrs...)
}

// bestScore reports whether candidate should replace current as the stored
// score. Only strictly higher scores replace; a repeat of the current best is
// not a new best.
func bestScore(current, candidate int) bool {
	return candidate > current
}

// SubmitScore records a score for the calling user. The stored entry keeps
// the highest score submitted so far; lower or equal submissions leave it
// unchanged and report IsNewBest false.
func (s *LeaderboardService) SubmitScore(ctx context.Context, params SubmitScoreParams) (result SubmitScoreResult, err error) {
	if s == nil || s.skills == nil {
		err = fmt.Errorf("leaderboard service not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "SubmitScore",
		"principal_id", principal.UserID,
		"skill", params.SkillName,
		"score", params.Score,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit score", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("new_best", result.IsNewBest).InfoContext(ctx, "score submitted")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	vErr := &ValidationError{}
	skillName := strings.TrimSpace(params.SkillName)
	if skillName == "" {
		vErr.add("skill_name", "skill name is required")
	}
	if params.Score < 0 {
		vErr.add("score", "score must not be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, findErr := s.skills.FindEntry(ctx, principal.CollegeID, principal.UserID, skillName)
	if findErr != nil {
		if mapped := mapRepoError(findErr); !errors.Is(mapped, ErrNotFound) {
			err = mapped
			return
		}
		entry := SkillEntry{
			ID:        s.idGenerator(),
			CollegeID: principal.CollegeID,
			UserID:    principal.UserID,
			SkillName: skillName,
			Score:     params.Score,
			Category:  params.Category,
			UpdatedAt: s.now(),
		}
		entry, err = s.skills.CreateEntry(ctx, entry)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		result = SubmitScoreResult{Entry: entry, IsNewBest: true}
		return
	}

	if !bestScore(existing.Score, params.Score) {
		result = SubmitScoreResult{Entry: existing, IsNewBest: false}
		return
	}

	existing.Score = params.Score
	if params.Category != nil {
		existing.Category = params.Category
	}
	existing.UpdatedAt = s.now()

	existing, err = s.skills.UpdateEntry(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	result = SubmitScoreResult{Entry: existing, IsNewBest: true}
	return
}

// SkillRanking returns the ranked entries for one skill, highest score first.
// Entries with equal scores keep their stored order.
func (s *LeaderboardService) SkillRanking(ctx context.Context, principal Principal, skillName string, limit int) ([]RankedEntry, error) {
	if s == nil || s.skills == nil {
		return nil, fmt.Errorf("leaderboard service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	entries, err := s.skills.ListBySkill(ctx, principal.CollegeID, strings.TrimSpace(skillName))
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.rank(ctx, principal.CollegeID, entries, limit), nil
}

// OverallRanking returns ranked totals across every skill, highest first.
func (s *LeaderboardService) OverallRanking(ctx context.Context, principal Principal, limit int) ([]RankedEntry, error) {
	if s == nil || s.skills == nil {
		return nil, fmt.Errorf("leaderboard service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	entries, err := s.skills.ListAll(ctx, principal.CollegeID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	totals := make(map[string]*SkillEntry)
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if total, ok := totals[entry.UserID]; ok {
			total.Score += entry.Score
			continue
		}
		aggregated := entry
		aggregated.SkillName = ""
		totals[entry.UserID] = &aggregated
		order = append(order, entry.UserID)
	}

	aggregatedEntries := make([]SkillEntry, 0, len(order))
	for _, userID := range order {
		aggregatedEntries = append(aggregatedEntries, *totals[userID])
	}
	return s.rank(ctx, principal.CollegeID, aggregatedEntries, limit), nil
}

// ListUserEntries returns the calling user's own entries, or another user's
// for administrators.
func (s *LeaderboardService) ListUserEntries(ctx context.Context, principal Principal, userID string) ([]SkillEntry, error) {
	if s == nil || s.skills == nil {
		return nil, fmt.Errorf("leaderboard service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}

	entries, err := s.skills.ListUserEntries(ctx, principal.CollegeID, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}

// SetAnonymous toggles whether the calling user appears under a ghost name
// in rankings.
func (s *LeaderboardService) SetAnonymous(ctx context.Context, principal Principal, anonymous bool) (err error) {
	if s == nil || s.skills == nil {
		err = fmt.Errorf("leaderboard service not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetAnonymous",
		"principal_id", principal.UserID,
		"anonymous", anonymous,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update anonymity", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "anonymity updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	if err = s.skills.SetAnonymous(ctx, principal.CollegeID, principal.UserID, anonymous); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// rank sorts entries by score descending with a stable sort so that equal
// scores keep their incoming order, then assigns dense row numbers and
// resolves display names.
func (s *LeaderboardService) rank(ctx context.Context, collegeID string, entries []SkillEntry, limit int) []RankedEntry {
	sorted := make([]SkillEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if limit <= 0 || limit > len(sorted) {
		limit = len(sorted)
	}

	ranked := make([]RankedEntry, 0, limit)
	for i, entry := range sorted[:limit] {
		ranked = append(ranked, RankedEntry{
			Rank:        i + 1,
			UserID:      entry.UserID,
			DisplayName: s.displayName(ctx, collegeID, entry),
			SkillName:   entry.SkillName,
			Score:       entry.Score,
		})
	}
	return ranked
}

// displayName resolves a ranking row's name. Anonymous entries get a ghost
// name derived from the tail of the user ID; lookup failures fall back to it
// as well.
func (s *LeaderboardService) displayName(ctx context.Context, collegeID string, entry SkillEntry) string {
	if entry.IsAnonymous || s.users == nil {
		return ghostName(entry.UserID)
	}
	user, err := s.users.GetUser(ctx, collegeID, entry.UserID)
	if err != nil || user.DisplayName == "" {
		return ghostName(entry.UserID)
	}
	return user.DisplayName
}

func ghostName(userID string) string {
	suffix := userID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return "Ghost-" + suffix
}
