package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotificationService_Notify(t *testing.T) {
	t.Parallel()

	t.Run("appends to the recipient's inbox", func(t *testing.T) {
		t.Parallel()

		notifications := newNotificationRepositoryStub()
		now := time.Date(2026, time.July, 6, 12, 0, 0, 0, time.UTC)
		service := NewNotificationService(notifications, func() string { return "ntf-1" }, func() time.Time { return now })

		err := service.Notify(context.Background(), "college-1", "user-1", "library", "Book borrowed", "Due back soon.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored := notifications.byID["ntf-1"]
		if stored.UserID != "user-1" || stored.Type != "library" {
			t.Fatalf("unexpected stored notification: %+v", stored)
		}
		if !stored.CreatedAt.Equal(now) {
			t.Fatalf("expected created at %v, got %v", now, stored.CreatedAt)
		}
	})

	t.Run("requires a recipient", func(t *testing.T) {
		t.Parallel()

		service := NewNotificationService(newNotificationRepositoryStub(), nil, nil)

		if err := service.Notify(context.Background(), "college-1", "  ", "library", "t", "m"); err == nil {
			t.Fatal("expected an error for a blank recipient")
		}
	})
}

func TestNotificationService_ListNotifications(t *testing.T) {
	t.Parallel()

	t.Run("filters to unread on request", func(t *testing.T) {
		t.Parallel()

		notifications := newNotificationRepositoryStub()
		notifications.seed(Notification{ID: "ntf-1", CollegeID: "college-1", UserID: "user-1", Title: "old", Read: true})
		notifications.seed(Notification{ID: "ntf-2", CollegeID: "college-1", UserID: "user-1", Title: "new"})
		service := NewNotificationService(notifications, nil, nil)

		inbox, err := service.ListNotifications(context.Background(), studentPrincipal("user-1"), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inbox) != 1 || inbox[0].ID != "ntf-2" {
			t.Fatalf("expected only the unread message, got %+v", inbox)
		}
	})

	t.Run("never shows another user's inbox", func(t *testing.T) {
		t.Parallel()

		notifications := newNotificationRepositoryStub()
		notifications.seed(Notification{ID: "ntf-1", CollegeID: "college-1", UserID: "user-2", Title: "theirs"})
		service := NewNotificationService(notifications, nil, nil)

		inbox, err := service.ListNotifications(context.Background(), studentPrincipal("user-1"), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inbox) != 0 {
			t.Fatalf("expected an empty inbox, got %+v", inbox)
		}
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("marks the caller's message read", func(t *testing.T) {
		t.Parallel()

		notifications := newNotificationRepositoryStub()
		notifications.seed(Notification{ID: "ntf-1", CollegeID: "college-1", UserID: "user-1", Title: "hello"})
		service := NewNotificationService(notifications, nil, nil)

		if err := service.MarkRead(context.Background(), studentPrincipal("user-1"), "ntf-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !notifications.byID["ntf-1"].Read {
			t.Fatal("expected message marked read")
		}
	})

	t.Run("rejects a blank id", func(t *testing.T) {
		t.Parallel()

		service := NewNotificationService(newNotificationRepositoryStub(), nil, nil)

		err := service.MarkRead(context.Background(), studentPrincipal("user-1"), " ")
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("maps another user's message to not found", func(t *testing.T) {
		t.Parallel()

		notifications := newNotificationRepositoryStub()
		notifications.seed(Notification{ID: "ntf-1", CollegeID: "college-1", UserID: "user-2", Title: "theirs"})
		service := NewNotificationService(notifications, nil, nil)

		err := service.MarkRead(context.Background(), studentPrincipal("user-1"), "ntf-1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

type notificationRepositoryStub struct {
	byID  map[string]Notification
	order []string
}

func newNotificationRepositoryStub() *notificationRepositoryStub {
	return &notificationRepositoryStub{byID: map[string]Notification{}}
}

func (s *notificationRepositoryStub) seed(notification Notification) {
	if _, ok := s.byID[notification.ID]; !ok {
		s.order = append(s.order, notification.ID)
	}
	s.byID[notification.ID] = notification
}

func (s *notificationRepositoryStub) CreateNotification(_ context.Context, notification Notification) error {
	s.seed(notification)
	return nil
}

func (s *notificationRepositoryStub) ListUserNotifications(_ context.Context, collegeID, userID string, unreadOnly bool) ([]Notification, error) {
	var notifications []Notification
	for _, id := range s.order {
		notification := s.byID[id]
		if notification.CollegeID != collegeID || notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func (s *notificationRepositoryStub) MarkRead(_ context.Context, collegeID, userID, id string) error {
	notification, ok := s.byID[id]
	if !ok || notification.CollegeID != collegeID || notification.UserID != userID {
		return ErrNotFound
	}
	notification.Read = true
	s.byID[id] = notification
	return nil
}
