package booking

import "time"

// Interval is a half-open [Start, End) time range held by a room booking.
type Interval struct {
	ID     string
	RoomID string
	UserID string
	Start  time.Time
	End    time.Time
}

// Conflict details an overlapping booking that callers can present to users.
type Conflict struct {
	WithBookingID string
	RoomID        string
	HeldBy        string
}

// Overlaps reports whether two half-open intervals intersect. Bookings that
// touch end-to-start do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies existing bookings for the same room that overlap
// the candidate interval. The candidate's own ID is ignored so an updated
// booking does not conflict with itself.
func DetectConflicts(existing []Interval, candidate Interval) []Conflict {
	var conflicts []Conflict
	for _, held := range existing {
		if held.ID == candidate.ID {
			continue
		}
		if held.RoomID != candidate.RoomID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, held.Start, held.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: held.ID,
			RoomID:        held.RoomID,
			HeldBy:        held.UserID,
		})
	}
	return conflicts
}
