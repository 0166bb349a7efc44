package testfixtures

import (
	"testing"
	"time"
)

func TestClock_ZeroStartUsesReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected the reference time, got %v", clock.Now())
	}
}

func TestClock_AdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(45 * time.Minute); !updated.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	target := start.Add(3 * time.Hour)
	clock.Set(target)
	if got := clock.Now(); !got.Equal(target) {
		t.Fatalf("expected %v, got %v", target, got)
	}
}

func TestClock_NowFuncTracksTheClock(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC))
	now := clock.NowFunc()

	before := now()
	clock.Advance(time.Minute)
	if got := now(); !got.Equal(before.Add(time.Minute)) {
		t.Fatalf("expected the advanced time, got %v", got)
	}
}
