package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NotificationRepository captures the persistence operations needed by the
// notification service.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListUserNotifications(ctx context.Context, collegeID, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, collegeID, userID, id string) error
}

// NotificationService stores and serves per-user inbox messages. It also
// satisfies Notifier so the other services can deliver through it.
type NotificationService struct {
	notifications NotificationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService constructs a notification service with the provided dependencies.
func NewNotificationService(notifications NotificationRepository, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger constructs a notification service with a specified logger.
func NewNotificationServiceWithLogger(notifications NotificationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{notifications: notifications, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// Notify implements Notifier by appending a message to the user's inbox.
func (s *NotificationService) Notify(ctx context.Context, collegeID, userID, ntype, title, message string) error {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("NotificationService is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("notification recipient is required")
	}

	notification := Notification{
		ID:        s.idGenerator(),
		CollegeID: collegeID,
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	return mapRepoError(s.notifications.CreateNotification(ctx, notification))
}

// ListNotifications returns the caller's inbox, optionally filtered to unread
// messages.
func (s *NotificationService) ListNotifications(ctx context.Context, principal Principal, unreadOnly bool) ([]Notification, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	notifications, err := s.notifications.ListUserNotifications(ctx, principal.CollegeID, principal.UserID, unreadOnly)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) (err error) {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}

	logger := s.loggerWith(ctx, "MarkRead",
		"principal_id", principal.UserID,
		"notification_id", notificationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark notification read", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "notification marked read")
	}()

	if !principal.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(notificationID) == "" {
		vErr := &ValidationError{}
		vErr.add("notification_id", "notification id is required")
		return vErr
	}

	return mapRepoError(s.notifications.MarkRead(ctx, principal.CollegeID, principal.UserID, notificationID))
}
