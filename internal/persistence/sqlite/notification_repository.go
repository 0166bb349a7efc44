package sqlite

import (
	"context"
	"fmt"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using SQLite.
type NotificationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const notificationColumns = `id, college_id, user_id, type, title, message, read, created_at`

// CreateNotification inserts an inbox row.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	if notification.ID == "" || notification.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		notification.ID,
		notification.CollegeID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Read,
		formatTime(notification.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// ListUserNotifications returns a user's inbox, newest first.
func (r *NotificationRepository) ListUserNotifications(ctx context.Context, collegeID, userID string, unreadOnly bool) ([]persistence.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE college_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	if unreadOnly {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE college_id = ? AND user_id = ? AND read = 0
			ORDER BY created_at DESC, id DESC
		`
	}

	rows, err := r.helper.Query(ctx, query, collegeID, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		var notification persistence.Notification
		var createdAtStr string

		err := rows.Scan(
			&notification.ID,
			&notification.CollegeID,
			&notification.UserID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&notification.Read,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if notification.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return notifications, nil
}

// MarkRead flips one notification to read for its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, collegeID, userID, id string) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE notifications SET read = 1 WHERE id = ? AND college_id = ? AND user_id = ?
	`, id, collegeID, userID)
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
