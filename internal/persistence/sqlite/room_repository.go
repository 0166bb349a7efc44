package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const roomColumns = `id, college_id, name, building, capacity, created_at, updated_at`
const bookingColumns = `id, college_id, room_id, user_id, purpose, starts_at, ends_at, status, created_at`

// CreateRoom inserts a classroom row.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.CollegeID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		room.ID,
		room.CollegeID,
		room.Name,
		room.Building,
		room.Capacity,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetRoom retrieves a classroom by ID within a college.
func (r *RoomRepository) GetRoom(ctx context.Context, collegeID, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	var room persistence.Room
	var createdAtStr, updatedAtStr string
	err := row.Scan(
		&room.ID,
		&room.CollegeID,
		&room.Name,
		&room.Building,
		&room.Capacity,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Room{}, r.mapper.MapError(err)
	}

	if room.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns a college's classrooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context, collegeID string) ([]persistence.Room, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE college_id = ?
		ORDER BY name ASC, id ASC
	`, collegeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		var createdAtStr, updatedAtStr string
		err := rows.Scan(
			&room.ID,
			&room.CollegeID,
			&room.Name,
			&room.Building,
			&room.Capacity,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		if room.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		if room.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}

// ListActiveBookings returns the room's non-cancelled bookings that overlap
// the half-open [from, until) window.
func (r *RoomRepository) ListActiveBookings(ctx context.Context, collegeID, roomID string, from, until time.Time) ([]persistence.RoomBooking, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM room_bookings
		WHERE college_id = ? AND room_id = ? AND status = 'booked'
			AND starts_at < ? AND ends_at > ?
		ORDER BY starts_at ASC, id ASC
	`, collegeID, roomID, formatTime(until), formatTime(from))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

// CreateBooking inserts a reservation row.
func (r *RoomRepository) CreateBooking(ctx context.Context, booking persistence.RoomBooking) error {
	if booking.ID == "" || booking.RoomID == "" || booking.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO room_bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID,
		booking.CollegeID,
		booking.RoomID,
		booking.UserID,
		booking.Purpose,
		formatTime(booking.StartsAt),
		formatTime(booking.EndsAt),
		booking.Status,
		formatTime(booking.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetBooking retrieves a reservation by ID within a college.
func (r *RoomRepository) GetBooking(ctx context.Context, collegeID, id string) (persistence.RoomBooking, error) {
	if id == "" {
		return persistence.RoomBooking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM room_bookings
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanBooking(row)
}

// UpdateBooking updates a reservation's status.
func (r *RoomRepository) UpdateBooking(ctx context.Context, booking persistence.RoomBooking) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE room_bookings
		SET status = ?, purpose = ?
		WHERE id = ? AND college_id = ?
	`, booking.Status, booking.Purpose, booking.ID, booking.CollegeID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUserBookings returns a user's reservations, newest first.
func (r *RoomRepository) ListUserBookings(ctx context.Context, collegeID, userID string) ([]persistence.RoomBooking, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM room_bookings
		WHERE college_id = ? AND user_id = ?
		ORDER BY starts_at DESC, id DESC
	`, collegeID, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

func (r *RoomRepository) collectBookings(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]persistence.RoomBooking, error) {
	var bookings []persistence.RoomBooking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

func (r *RoomRepository) scanBooking(row rowScanner) (persistence.RoomBooking, error) {
	var booking persistence.RoomBooking
	var startsAtStr, endsAtStr, createdAtStr string

	err := row.Scan(
		&booking.ID,
		&booking.CollegeID,
		&booking.RoomID,
		&booking.UserID,
		&booking.Purpose,
		&startsAtStr,
		&endsAtStr,
		&booking.Status,
		&createdAtStr,
	)
	if err != nil {
		return persistence.RoomBooking{}, r.mapper.MapError(err)
	}

	if booking.StartsAt, err = parseTime(startsAtStr, "starts_at"); err != nil {
		return persistence.RoomBooking{}, err
	}
	if booking.EndsAt, err = parseTime(endsAtStr, "ends_at"); err != nil {
		return persistence.RoomBooking{}, err
	}
	if booking.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.RoomBooking{}, err
	}
	return booking, nil
}
