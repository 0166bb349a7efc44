package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/booking"
)

// RoomRepository captures the persistence operations needed by the room service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, collegeID, id string) (Room, error)
	ListRooms(ctx context.Context, collegeID string) ([]Room, error)
	// ListActiveBookings returns the room's non-cancelled bookings that
	// overlap the window.
	ListActiveBookings(ctx context.Context, collegeID, roomID string, from, until time.Time) ([]RoomBooking, error)
	CreateBooking(ctx context.Context, bookingRow RoomBooking) (RoomBooking, error)
	GetBooking(ctx context.Context, collegeID, id string) (RoomBooking, error)
	UpdateBooking(ctx context.Context, bookingRow RoomBooking) (RoomBooking, error)
	ListUserBookings(ctx context.Context, collegeID, userID string) ([]RoomBooking, error)
}

// RoomService manages classrooms and their bookings. A room holds at most one
// active booking for any instant; candidate bookings are rejected when they
// overlap an existing one.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom registers a classroom. Faculty and administrators only.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room service not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room = Room{
		ID:        s.idGenerator(),
		CollegeID: principal.CollegeID,
		Name:      strings.TrimSpace(input.Name),
		Building:  strings.TrimSpace(input.Building),
		Capacity:  input.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	room, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// BookRoom reserves a classroom for the calling user. The reservation fails
// with a conflict error when the interval overlaps an active booking.
func (s *RoomService) BookRoom(ctx context.Context, params BookRoomParams) (reservation RoomBooking, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room service not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "BookRoom",
		"principal_id", principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", reservation.ID).InfoContext(ctx, "room booked")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	vErr := &ValidationError{}
	if params.RoomID == "" {
		vErr.add("room_id", "room id is required")
	}
	if params.StartsAt.IsZero() || params.EndsAt.IsZero() {
		vErr.add("starts_at", "start and end times are required")
	} else if !params.StartsAt.Before(params.EndsAt) {
		vErr.add("ends_at", "end time must be after start time")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if params.EndsAt.Before(s.now()) {
		err = invalidState("booking interval is in the past")
		return
	}

	if _, err = s.rooms.GetRoom(ctx, principal.CollegeID, params.RoomID); err != nil {
		err = mapRepoError(err)
		return
	}

	var active []RoomBooking
	active, err = s.rooms.ListActiveBookings(ctx, principal.CollegeID, params.RoomID, params.StartsAt, params.EndsAt)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	held := make([]booking.Interval, 0, len(active))
	for _, existing := range active {
		held = append(held, booking.Interval{
			ID:     existing.ID,
			RoomID: existing.RoomID,
			UserID: existing.UserID,
			Start:  existing.StartsAt,
			End:    existing.EndsAt,
		})
	}
	candidate := booking.Interval{
		ID:     "",
		RoomID: params.RoomID,
		UserID: principal.UserID,
		Start:  params.StartsAt,
		End:    params.EndsAt,
	}
	if conflicts := booking.DetectConflicts(held, candidate); len(conflicts) > 0 {
		logger.With("conflicting_booking_id", conflicts[0].WithBookingID).InfoContext(ctx, "booking rejected")
		err = ErrRoomConflict
		return
	}

	reservation = RoomBooking{
		ID:        s.idGenerator(),
		CollegeID: principal.CollegeID,
		RoomID:    params.RoomID,
		UserID:    principal.UserID,
		Purpose:   strings.TrimSpace(params.Purpose),
		StartsAt:  params.StartsAt,
		EndsAt:    params.EndsAt,
		Status:    BookingBooked,
		CreatedAt: s.now(),
	}

	reservation, err = s.rooms.CreateBooking(ctx, reservation)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// CancelBooking releases a reservation. The holder, faculty, and
// administrators only.
func (s *RoomService) CancelBooking(ctx context.Context, principal Principal, bookingID string) (reservation RoomBooking, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room service not configured")
		return
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var existing RoomBooking
	existing, err = s.rooms.GetBooking(ctx, principal.CollegeID, bookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.UserID != principal.UserID && !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}
	if existing.Status == BookingCancelled {
		err = ErrAlreadyCancelled
		return
	}

	existing.Status = BookingCancelled
	reservation, err = s.rooms.UpdateBooking(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetRoom returns one classroom for any authenticated user.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room service not configured")
	}
	if !principal.IsAuthenticated() {
		return Room{}, ErrUnauthenticated
	}

	room, err := s.rooms.GetRoom(ctx, principal.CollegeID, roomID)
	if err != nil {
		return Room{}, mapRepoError(err)
	}
	return room, nil
}

// ListRooms returns the college's classrooms for any authenticated user.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	rooms, err := s.rooms.ListRooms(ctx, principal.CollegeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rooms, nil
}

// ListUserBookings returns the calling user's reservations, or another
// user's for faculty and administrators.
func (s *RoomService) ListUserBookings(ctx context.Context, principal Principal, userID string) ([]RoomBooking, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		return nil, ErrUnauthorized
	}

	bookings, err := s.rooms.ListUserBookings(ctx, principal.CollegeID, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return bookings, nil
}
