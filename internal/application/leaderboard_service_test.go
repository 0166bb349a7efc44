package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLeaderboardService_SubmitScore(t *testing.T) {
	t.Parallel()

	t.Run("first submission creates the entry as a new best", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		now := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
		service := NewLeaderboardService(skills, nil, func() string { return "entry-1" }, func() time.Time { return now })

		result, err := service.SubmitScore(context.Background(), SubmitScoreParams{
			Principal: studentPrincipal("user-1"),
			SkillName: "  chess  ",
			Score:     50,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsNewBest {
			t.Fatal("expected a new best")
		}
		if result.Entry.SkillName != "chess" {
			t.Fatalf("expected trimmed skill name, got %q", result.Entry.SkillName)
		}
		if result.Entry.Score != 50 {
			t.Fatalf("expected score 50, got %d", result.Entry.Score)
		}
	})

	t.Run("keeps the highest score across submissions", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		service := NewLeaderboardService(skills, nil, func() string { return "entry-1" }, nil)
		principal := studentPrincipal("user-1")

		for _, score := range []int{50, 30, 80} {
			if _, err := service.SubmitScore(context.Background(), SubmitScoreParams{Principal: principal, SkillName: "chess", Score: score}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		entry, err := skills.FindEntry(context.Background(), "college-1", "user-1", "chess")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Score != 80 {
			t.Fatalf("expected stored best 80, got %d", entry.Score)
		}
	})

	t.Run("a repeat of the current best is not a new best", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 80})
		service := NewLeaderboardService(skills, nil, nil, nil)

		result, err := service.SubmitScore(context.Background(), SubmitScoreParams{Principal: studentPrincipal("user-1"), SkillName: "chess", Score: 80})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsNewBest {
			t.Fatal("expected IsNewBest false for an equal score")
		}
	})

	t.Run("validates skill name and score", func(t *testing.T) {
		t.Parallel()

		service := NewLeaderboardService(newSkillRepositoryStub(), nil, nil, nil)

		_, err := service.SubmitScore(context.Background(), SubmitScoreParams{Principal: studentPrincipal("user-1"), SkillName: "  ", Score: -1})
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected 2 field errors, got %v", vErr.FieldErrors)
		}
	})
}

func TestLeaderboardService_SkillRanking(t *testing.T) {
	t.Parallel()

	t.Run("orders by score with earlier entries winning ties", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 70})
		skills.seed(SkillEntry{ID: "entry-2", CollegeID: "college-1", UserID: "user-2", SkillName: "chess", Score: 90})
		skills.seed(SkillEntry{ID: "entry-3", CollegeID: "college-1", UserID: "user-3", SkillName: "chess", Score: 70})
		users := &userLookupStub{names: map[string]string{"user-1": "Asha", "user-2": "Ravi", "user-3": "Mei"}}
		service := NewLeaderboardService(skills, users, nil, nil)

		ranked, err := service.SkillRanking(context.Background(), studentPrincipal("user-1"), "chess", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ranked) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(ranked))
		}
		if ranked[0].UserID != "user-2" || ranked[0].Rank != 1 {
			t.Fatalf("expected user-2 first, got %+v", ranked[0])
		}
		if ranked[1].UserID != "user-1" || ranked[2].UserID != "user-3" {
			t.Fatalf("expected tie to keep stored order, got %+v", ranked[1:])
		}
		if ranked[0].DisplayName != "Ravi" {
			t.Fatalf("expected display name resolved, got %q", ranked[0].DisplayName)
		}
	})

	t.Run("anonymous entries appear under a ghost name", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-123456", SkillName: "chess", Score: 70, IsAnonymous: true})
		users := &userLookupStub{names: map[string]string{"user-123456": "Asha"}}
		service := NewLeaderboardService(skills, users, nil, nil)

		ranked, err := service.SkillRanking(context.Background(), studentPrincipal("user-1"), "chess", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ranked[0].DisplayName != "Ghost-123456" {
			t.Fatalf("expected ghost name, got %q", ranked[0].DisplayName)
		}
	})

	t.Run("honors the limit", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 10})
		skills.seed(SkillEntry{ID: "entry-2", CollegeID: "college-1", UserID: "user-2", SkillName: "chess", Score: 20})
		service := NewLeaderboardService(skills, nil, nil, nil)

		ranked, err := service.SkillRanking(context.Background(), studentPrincipal("user-1"), "chess", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ranked) != 1 || ranked[0].UserID != "user-2" {
			t.Fatalf("expected only the top row, got %+v", ranked)
		}
	})
}

func TestLeaderboardService_OverallRanking(t *testing.T) {
	t.Parallel()

	t.Run("sums every skill per user", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 40})
		skills.seed(SkillEntry{ID: "entry-2", CollegeID: "college-1", UserID: "user-1", SkillName: "debate", Score: 30})
		skills.seed(SkillEntry{ID: "entry-3", CollegeID: "college-1", UserID: "user-2", SkillName: "chess", Score: 60})
		service := NewLeaderboardService(skills, nil, nil, nil)

		ranked, err := service.OverallRanking(context.Background(), studentPrincipal("user-1"), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ranked) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(ranked))
		}
		if ranked[0].UserID != "user-1" || ranked[0].Score != 70 {
			t.Fatalf("expected user-1 on 70, got %+v", ranked[0])
		}
		if ranked[1].UserID != "user-2" || ranked[1].Score != 60 {
			t.Fatalf("expected user-2 on 60, got %+v", ranked[1])
		}
	})
}

func TestLeaderboardService_ListUserEntries(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the caller's own entries", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 40})
		skills.seed(SkillEntry{ID: "entry-2", CollegeID: "college-1", UserID: "user-2", SkillName: "chess", Score: 60})
		service := NewLeaderboardService(skills, nil, nil, nil)

		entries, err := service.ListUserEntries(context.Background(), studentPrincipal("user-1"), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 1 || entries[0].UserID != "user-1" {
			t.Fatalf("expected only the caller's entries, got %+v", entries)
		}
	})

	t.Run("rejects reading another user without admin", func(t *testing.T) {
		t.Parallel()

		service := NewLeaderboardService(newSkillRepositoryStub(), nil, nil, nil)

		_, err := service.ListUserEntries(context.Background(), studentPrincipal("user-1"), "user-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestLeaderboardService_SetAnonymous(t *testing.T) {
	t.Parallel()

	t.Run("flags every entry of the caller", func(t *testing.T) {
		t.Parallel()

		skills := newSkillRepositoryStub()
		skills.seed(SkillEntry{ID: "entry-1", CollegeID: "college-1", UserID: "user-1", SkillName: "chess", Score: 40})
		service := NewLeaderboardService(skills, nil, nil, nil)

		if err := service.SetAnonymous(context.Background(), studentPrincipal("user-1"), true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entry, err := skills.FindEntry(context.Background(), "college-1", "user-1", "chess")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !entry.IsAnonymous {
			t.Fatal("expected entry flagged anonymous")
		}
	})
}

type skillRepositoryStub struct {
	entriesByID map[string]SkillEntry
	order       []string
	createErr   error
}

func newSkillRepositoryStub() *skillRepositoryStub {
	return &skillRepositoryStub{entriesByID: map[string]SkillEntry{}}
}

func (s *skillRepositoryStub) seed(entry SkillEntry) {
	if _, ok := s.entriesByID[entry.ID]; !ok {
		s.order = append(s.order, entry.ID)
	}
	s.entriesByID[entry.ID] = entry
}

func (s *skillRepositoryStub) FindEntry(_ context.Context, collegeID, userID, skillName string) (SkillEntry, error) {
	for _, id := range s.order {
		entry := s.entriesByID[id]
		if entry.CollegeID == collegeID && entry.UserID == userID && entry.SkillName == skillName {
			return entry, nil
		}
	}
	return SkillEntry{}, ErrNotFound
}

func (s *skillRepositoryStub) CreateEntry(_ context.Context, entry SkillEntry) (SkillEntry, error) {
	if s.createErr != nil {
		return SkillEntry{}, s.createErr
	}
	s.seed(entry)
	return entry, nil
}

func (s *skillRepositoryStub) UpdateEntry(_ context.Context, entry SkillEntry) (SkillEntry, error) {
	s.seed(entry)
	return entry, nil
}

func (s *skillRepositoryStub) ListBySkill(_ context.Context, collegeID, skillName string) ([]SkillEntry, error) {
	var entries []SkillEntry
	for _, id := range s.order {
		entry := s.entriesByID[id]
		if entry.CollegeID == collegeID && entry.SkillName == skillName {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *skillRepositoryStub) ListAll(_ context.Context, collegeID string) ([]SkillEntry, error) {
	var entries []SkillEntry
	for _, id := range s.order {
		entry := s.entriesByID[id]
		if entry.CollegeID == collegeID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *skillRepositoryStub) ListUserEntries(_ context.Context, collegeID, userID string) ([]SkillEntry, error) {
	var entries []SkillEntry
	for _, id := range s.order {
		entry := s.entriesByID[id]
		if entry.CollegeID == collegeID && entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *skillRepositoryStub) SetAnonymous(_ context.Context, collegeID, userID string, anonymous bool) error {
	for _, id := range s.order {
		entry := s.entriesByID[id]
		if entry.CollegeID == collegeID && entry.UserID == userID {
			entry.IsAnonymous = anonymous
			s.entriesByID[id] = entry
		}
	}
	return nil
}

type userLookupStub struct {
	names map[string]string
}

func (s *userLookupStub) GetUser(_ context.Context, collegeID, id string) (User, error) {
	name, ok := s.names[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return User{ID: id, CollegeID: collegeID, DisplayName: name}, nil
}
