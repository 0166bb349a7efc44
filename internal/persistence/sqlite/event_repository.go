package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventColumns = `id, college_id, creator_id, title, description, status, starts_at, registration_deadline, max_attendees, registration_count, created_at, updated_at`
const registrationColumns = `id, college_id, event_id, user_id, status, registered_at, cancelled_at`

// CreateEvent inserts an event row.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.CollegeID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.CollegeID,
		event.CreatorID,
		event.Title,
		event.Description,
		event.Status,
		formatTime(event.StartsAt),
		nullTime(event.RegistrationDeadline),
		nullInt(event.MaxAttendees),
		event.RegistrationCount,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetEvent retrieves an event by ID within a college.
func (r *EventRepository) GetEvent(ctx context.Context, collegeID, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanEvent(row)
}

// ListEvents returns a college's events ordered by start time.
func (r *EventRepository) ListEvents(ctx context.Context, collegeID string) ([]persistence.Event, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE college_id = ?
		ORDER BY starts_at ASC, id ASC
	`, collegeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

// FindRegistration returns the user's non-cancelled registration for the event.
func (r *EventRepository) FindRegistration(ctx context.Context, collegeID, eventID, userID string) (persistence.EventRegistration, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+registrationColumns+`
		FROM event_registrations
		WHERE college_id = ? AND event_id = ? AND user_id = ? AND status != 'cancelled'
	`, collegeID, eventID, userID)

	return r.scanRegistration(row)
}

// CreateRegistration inserts the registration and increments the event's
// registration count in one transaction. Waitlisted rows count too.
func (r *EventRepository) CreateRegistration(ctx context.Context, registration persistence.EventRegistration) error {
	if registration.ID == "" || registration.EventID == "" || registration.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO event_registrations (`+registrationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			registration.ID,
			registration.CollegeID,
			registration.EventID,
			registration.UserID,
			registration.Status,
			formatTime(registration.RegisteredAt),
			nullTime(registration.CancelledAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, `
			UPDATE events
			SET registration_count = registration_count + 1, updated_at = ?
			WHERE id = ? AND college_id = ?
		`, formatTime(registration.RegisteredAt), registration.EventID, registration.CollegeID)
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
	})
}

// CancelRegistration marks the registration cancelled, decrements the event
// count flooring at zero, and promotes the earliest waitlisted registration
// when promote is true, all in one transaction.
func (r *EventRepository) CancelRegistration(ctx context.Context, registration persistence.EventRegistration, promote bool) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `
			UPDATE event_registrations
			SET status = ?, cancelled_at = ?
			WHERE id = ? AND college_id = ?
		`,
			registration.Status,
			nullTime(registration.CancelledAt),
			registration.ID,
			registration.CollegeID,
		)
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

		updatedAt := formatTime(registration.RegisteredAt)
		if registration.CancelledAt != nil {
			updatedAt = formatTime(*registration.CancelledAt)
		}
		_, err = r.helper.ExecTx(tx, `
			UPDATE events
			SET registration_count = MAX(registration_count - 1, 0), updated_at = ?
			WHERE id = ? AND college_id = ?
		`, updatedAt, registration.EventID, registration.CollegeID)
		if err != nil {
			return r.mapper.MapError(err)
		}

		if !promote {
			return nil
		}

		var promotedID string
		err = r.helper.QueryRowTx(tx, `
			SELECT id
			FROM event_registrations
			WHERE college_id = ? AND event_id = ? AND status = 'waitlisted'
			ORDER BY registered_at ASC, id ASC
			LIMIT 1
		`, registration.CollegeID, registration.EventID).Scan(&promotedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return r.mapper.MapError(err)
		}

		_, err = r.helper.ExecTx(tx, `
			UPDATE event_registrations SET status = 'registered' WHERE id = ?
		`, promotedID)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// UpdateRegistrationStatus updates a registration's status.
func (r *EventRepository) UpdateRegistrationStatus(ctx context.Context, registration persistence.EventRegistration) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE event_registrations
		SET status = ?
		WHERE id = ? AND college_id = ?
	`, registration.Status, registration.ID, registration.CollegeID)
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

// ListRegistrations returns an event's registrations in registration order.
func (r *EventRepository) ListRegistrations(ctx context.Context, collegeID, eventID string) ([]persistence.EventRegistration, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM event_registrations
		WHERE college_id = ? AND event_id = ?
		ORDER BY registered_at ASC, id ASC
	`, collegeID, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var registrations []persistence.EventRegistration
	for rows.Next() {
		registration, err := r.scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return registrations, nil
}

func (r *EventRepository) scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var startsAtStr, createdAtStr, updatedAtStr string
	var deadline sql.NullString
	var maxAttendees sql.NullInt64

	err := row.Scan(
		&event.ID,
		&event.CollegeID,
		&event.CreatorID,
		&event.Title,
		&event.Description,
		&event.Status,
		&startsAtStr,
		&deadline,
		&maxAttendees,
		&event.RegistrationCount,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}

	if event.StartsAt, err = parseTime(startsAtStr, "starts_at"); err != nil {
		return persistence.Event{}, err
	}
	if event.RegistrationDeadline, err = parseTimePtr(deadline, "registration_deadline"); err != nil {
		return persistence.Event{}, err
	}
	event.MaxAttendees = intPtr(maxAttendees)
	if event.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func (r *EventRepository) scanRegistration(row rowScanner) (persistence.EventRegistration, error) {
	var registration persistence.EventRegistration
	var registeredAtStr string
	var cancelledAt sql.NullString

	err := row.Scan(
		&registration.ID,
		&registration.CollegeID,
		&registration.EventID,
		&registration.UserID,
		&registration.Status,
		&registeredAtStr,
		&cancelledAt,
	)
	if err != nil {
		return persistence.EventRegistration{}, r.mapper.MapError(err)
	}

	if registration.RegisteredAt, err = parseTime(registeredAtStr, "registered_at"); err != nil {
		return persistence.EventRegistration{}, err
	}
	if registration.CancelledAt, err = parseTimePtr(cancelledAt, "cancelled_at"); err != nil {
		return persistence.EventRegistration{}, err
	}
	return registration, nil
}
