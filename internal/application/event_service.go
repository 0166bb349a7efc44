package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EventRepository captures the persistence operations needed by the event service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, collegeID, id string) (Event, error)
	ListEvents(ctx context.Context, collegeID string) ([]Event, error)
	// FindRegistration returns the user's non-cancelled registration for the
	// event, or persistence.ErrNotFound.
	FindRegistration(ctx context.Context, collegeID, eventID, userID string) (EventRegistration, error)
	// CreateRegistration inserts the registration and increments the event's
	// registration count in one store transaction.
	CreateRegistration(ctx context.Context, registration EventRegistration) (EventRegistration, error)
	// CancelRegistration marks the registration cancelled, decrements the
	// event count (floored at zero), and promotes the earliest waitlisted
	// registration when promote is true, all in one store transaction.
	CancelRegistration(ctx context.Context, registration EventRegistration, promote bool) (EventRegistration, error)
	UpdateRegistrationStatus(ctx context.Context, registration EventRegistration) (EventRegistration, error)
	ListRegistrations(ctx context.Context, collegeID, eventID string) ([]EventRegistration, error)
}

// EventService enforces registration rules: one non-cancelled registration
// per (event, user), capacity-based waitlisting, and promotion of the
// earliest waitlisted registrant on cancellation.
//
// RegistrationCount counts waitlisted entries as well as confirmed ones; both
// the waitlist trigger and the post-decrement promotion comparison in
// CancelRegistration operate on that combined count.
type EventService struct {
	events      EventRepository
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events EventRepository, notifier Notifier, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, notifier, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, notifier: notifier, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent publishes a new event. Faculty and administrators only.
func (s *EventService) CreateEvent(ctx context.Context, principal Principal, input EventInput) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event service not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
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
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.StartsAt.IsZero() {
		vErr.add("starts_at", "start time is required")
	}
	if input.MaxAttendees != nil && *input.MaxAttendees <= 0 {
		vErr.add("max_attendees", "capacity must be positive")
	}
	if input.RegistrationDeadline != nil && !input.StartsAt.IsZero() && input.RegistrationDeadline.After(input.StartsAt) {
		vErr.add("registration_deadline", "deadline must not be after the event start")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	event = Event{
		ID:                   s.idGenerator(),
		CollegeID:            principal.CollegeID,
		CreatorID:            principal.UserID,
		Title:                strings.TrimSpace(input.Title),
		Description:          strings.TrimSpace(input.Description),
		Status:               EventActive,
		StartsAt:             input.StartsAt,
		RegistrationDeadline: input.RegistrationDeadline,
		MaxAttendees:         input.MaxAttendees,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	event, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// Register signs the calling user up for an event. The registration is
// waitlisted when confirmed-plus-waitlisted registrations already meet the
// capacity at the moment of insertion.
func (s *EventService) Register(ctx context.Context, principal Principal, eventID string) (registration EventRegistration, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Register",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register for event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("registration_id", registration.ID, "status", string(registration.Status)).InfoContext(ctx, "registered for event")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, principal.CollegeID, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if event.Status != EventActive {
		err = ErrEventUnavailable
		return
	}

	now := s.now()
	if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
		err = ErrDeadlinePassed
		return
	}

	if _, findErr := s.events.FindRegistration(ctx, principal.CollegeID, eventID, principal.UserID); findErr == nil {
		err = ErrAlreadyRegistered
		return
	} else if mapped := mapRepoError(findErr); !errors.Is(mapped, ErrNotFound) {
		err = mapped
		return
	}

	status := RegistrationRegistered
	if event.MaxAttendees != nil && event.RegistrationCount >= *event.MaxAttendees {
		status = RegistrationWaitlisted
	}

	registration = EventRegistration{
		ID:           s.idGenerator(),
		CollegeID:    principal.CollegeID,
		EventID:      eventID,
		UserID:       principal.UserID,
		Status:       status,
		RegisteredAt: now,
	}

	registration, err = s.events.CreateRegistration(ctx, registration)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	title := "Registration confirmed"
	message := fmt.Sprintf("You are registered for %q.", event.Title)
	if status == RegistrationWaitlisted {
		title = "Added to waitlist"
		message = fmt.Sprintf("%q is full; you are on the waitlist.", event.Title)
	}
	notify(ctx, s.notifier, logger, principal.CollegeID, principal.UserID, "event", title, message)
	return
}

// CancelRegistration cancels a registration. After decrementing the count, if
// it still meets or exceeds the capacity the earliest waitlisted registration
// is promoted. The count includes waitlisted entries, so cancelling either a
// confirmed or a waitlisted spot can leave the comparison true.
func (s *EventService) CancelRegistration(ctx context.Context, principal Principal, eventID, userID string) (registration EventRegistration, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event service not configured")
		return
	}

	logger := s.loggerWith(ctx, "CancelRegistration",
		"principal_id", principal.UserID,
		"event_id", eventID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel registration", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "registration cancelled")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, principal.CollegeID, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var existing EventRegistration
	existing, err = s.events.FindRegistration(ctx, principal.CollegeID, eventID, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.Status == RegistrationCancelled {
		err = ErrAlreadyCancelled
		return
	}
	if !CanTransitionRegistration(existing.Status, RegistrationCancelled) {
		err = ErrInvalidState
		return
	}

	now := s.now()
	existing.Status = RegistrationCancelled
	existing.CancelledAt = &now

	countAfter := event.RegistrationCount - 1
	if countAfter < 0 {
		countAfter = 0
	}
	promote := event.MaxAttendees != nil && countAfter >= *event.MaxAttendees

	registration, err = s.events.CancelRegistration(ctx, existing, promote)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// MarkAttendance records whether a registrant attended. Faculty, the event
// creator, and administrators only.
func (s *EventService) MarkAttendance(ctx context.Context, principal Principal, eventID, userID string, attended bool) (registration EventRegistration, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event service not configured")
		return
	}

	logger := s.loggerWith(ctx, "MarkAttendance",
		"principal_id", principal.UserID,
		"event_id", eventID,
		"user_id", userID,
		"attended", attended,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attendance updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, principal.CollegeID, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) && event.CreatorID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	var existing EventRegistration
	existing, err = s.events.FindRegistration(ctx, principal.CollegeID, eventID, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	target := RegistrationRegistered
	if attended {
		target = RegistrationAttended
	}
	if existing.Status == target {
		registration = existing
		return
	}
	if !CanTransitionRegistration(existing.Status, target) {
		err = ErrInvalidState
		return
	}

	existing.Status = target
	registration, err = s.events.UpdateRegistrationStatus(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetEvent returns one event for any authenticated user.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, eventID string) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event service not configured")
	}
	if !principal.IsAuthenticated() {
		return Event{}, ErrUnauthenticated
	}

	event, err := s.events.GetEvent(ctx, principal.CollegeID, eventID)
	if err != nil {
		return Event{}, mapRepoError(err)
	}
	return event, nil
}

// ListEvents returns the college's events for any authenticated user.
func (s *EventService) ListEvents(ctx context.Context, principal Principal) ([]Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	events, err := s.events.ListEvents(ctx, principal.CollegeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return events, nil
}

// ListRegistrations returns an event's registrations. Faculty, the creator,
// and administrators only.
func (s *EventService) ListRegistrations(ctx context.Context, principal Principal, eventID string) ([]EventRegistration, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	event, err := s.events.GetEvent(ctx, principal.CollegeID, eventID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) && event.CreatorID != principal.UserID {
		return nil, ErrUnauthorized
	}

	registrations, err := s.events.ListRegistrations(ctx, principal.CollegeID, eventID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return registrations, nil
}
