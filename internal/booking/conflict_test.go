package booking

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	t.Run("room overlap produces conflict", func(t *testing.T) {
		t.Parallel()

		existing := []Interval{
			{ID: "booking-1", RoomID: "room-a", UserID: "user-1", Start: at(t, 9, 0), End: at(t, 10, 0)},
		}
		candidate := Interval{ID: "booking-2", RoomID: "room-a", UserID: "user-2", Start: at(t, 9, 30), End: at(t, 10, 30)}

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].WithBookingID != "booking-1" {
			t.Errorf("expected conflict with booking-1, got %s", conflicts[0].WithBookingID)
		}
		if conflicts[0].HeldBy != "user-1" {
			t.Errorf("expected conflict held by user-1, got %s", conflicts[0].HeldBy)
		}
	})

	t.Run("different rooms do not conflict", func(t *testing.T) {
		t.Parallel()

		existing := []Interval{
			{ID: "booking-1", RoomID: "room-a", Start: at(t, 9, 0), End: at(t, 10, 0)},
		}
		candidate := Interval{ID: "booking-2", RoomID: "room-b", Start: at(t, 9, 0), End: at(t, 10, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %d", len(conflicts))
		}
	})

	t.Run("back to back bookings do not conflict", func(t *testing.T) {
		t.Parallel()

		existing := []Interval{
			{ID: "booking-1", RoomID: "room-a", Start: at(t, 9, 0), End: at(t, 10, 0)},
		}
		candidate := Interval{ID: "booking-2", RoomID: "room-a", Start: at(t, 10, 0), End: at(t, 11, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %d", len(conflicts))
		}
	})

	t.Run("candidate never conflicts with itself", func(t *testing.T) {
		t.Parallel()

		existing := []Interval{
			{ID: "booking-1", RoomID: "room-a", Start: at(t, 9, 0), End: at(t, 10, 0)},
		}
		candidate := Interval{ID: "booking-1", RoomID: "room-a", Start: at(t, 9, 0), End: at(t, 10, 30)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %d", len(conflicts))
		}
	})

	t.Run("containment counts as overlap", func(t *testing.T) {
		t.Parallel()

		existing := []Interval{
			{ID: "booking-1", RoomID: "room-a", Start: at(t, 9, 0), End: at(t, 12, 0)},
		}
		candidate := Interval{ID: "booking-2", RoomID: "room-a", Start: at(t, 10, 0), End: at(t, 11, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
	})
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(t, 9, 0), at(t, 10, 0), at(t, 9, 0), at(t, 10, 0), true},
		{"partial", at(t, 9, 0), at(t, 10, 0), at(t, 9, 30), at(t, 10, 30), true},
		{"adjacent", at(t, 9, 0), at(t, 10, 0), at(t, 10, 0), at(t, 11, 0), false},
		{"disjoint", at(t, 9, 0), at(t, 10, 0), at(t, 11, 0), at(t, 12, 0), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("Overlaps() = %v, want %v", got, tc.want)
			}
		})
	}
}
