package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSOSService_CreateAlert(t *testing.T) {
	t.Parallel()

	t.Run("raises an alert and fans out to responders", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.responders = []string{"security-1", "admin-1"}
		notifier := &notifierStub{}
		now := time.Date(2026, time.May, 4, 23, 15, 0, 0, time.UTC)
		service := NewSOSService(alerts, notifier, func() string { return "alert-1" }, func() time.Time { return now })

		alert, err := service.CreateAlert(context.Background(), CreateSOSParams{
			Principal:   studentPrincipal("user-1"),
			Type:        SOSMedical,
			Description: "  collapsed near the gym  ",
			Location:    &GeoPoint{Latitude: 12.97, Longitude: 77.59},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSActive {
			t.Fatalf("expected active alert, got %q", alert.Status)
		}
		if alert.Description != "collapsed near the gym" {
			t.Fatalf("expected trimmed description, got %q", alert.Description)
		}
		if len(notifier.sent) != 2 {
			t.Fatalf("expected 2 responder notifications, got %d", len(notifier.sent))
		}
		if notifier.sent[0].userID != "security-1" || notifier.sent[1].userID != "admin-1" {
			t.Fatalf("unexpected notification targets: %+v", notifier.sent)
		}
	})

	t.Run("rejects a second open alert", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.CreateAlert(context.Background(), CreateSOSParams{Principal: studentPrincipal("user-1"), Type: SOSEmergency})
		if !errors.Is(err, ErrActiveAlertExists) {
			t.Fatalf("expected ErrActiveAlertExists, got %v", err)
		}
	})

	t.Run("allows a new alert after the previous one closed", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResolved})
		service := NewSOSService(alerts, nil, func() string { return "alert-2" }, nil)

		if _, err := service.CreateAlert(context.Background(), CreateSOSParams{Principal: studentPrincipal("user-1"), Type: SOSEmergency}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("validates type and coordinates", func(t *testing.T) {
		t.Parallel()

		service := NewSOSService(newSOSRepositoryStub(), nil, nil, nil)

		_, err := service.CreateAlert(context.Background(), CreateSOSParams{
			Principal: studentPrincipal("user-1"),
			Type:      "panic",
			Location:  &GeoPoint{Latitude: 123, Longitude: 77},
		})
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected 2 field errors, got %v", vErr.FieldErrors)
		}
	})
}

func TestSOSService_Respond(t *testing.T) {
	t.Parallel()

	t.Run("first responder moves the alert to responding", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSActive})
		notifier := &notifierStub{}
		service := NewSOSService(alerts, notifier, nil, nil)

		alert, err := service.Respond(context.Background(), securityPrincipal(), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResponding {
			t.Fatalf("expected responding status, got %q", alert.Status)
		}
		if len(alert.ResponderIDs) != 1 || alert.ResponderIDs[0] != "security-1" {
			t.Fatalf("expected responder recorded, got %v", alert.ResponderIDs)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].userID != "user-1" {
			t.Fatalf("expected the creator notified, got %+v", notifier.sent)
		}
	})

	t.Run("later responders join without a status change", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding, ResponderIDs: []string{"security-2"}})
		service := NewSOSService(alerts, nil, nil, nil)

		alert, err := service.Respond(context.Background(), securityPrincipal(), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResponding {
			t.Fatalf("expected responding status, got %q", alert.Status)
		}
		if len(alert.ResponderIDs) != 2 {
			t.Fatalf("expected 2 responders, got %v", alert.ResponderIDs)
		}
	})

	t.Run("responding twice does not duplicate the responder", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding, ResponderIDs: []string{"security-1"}})
		service := NewSOSService(alerts, nil, nil, nil)

		alert, err := service.Respond(context.Background(), securityPrincipal(), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alert.ResponderIDs) != 1 {
			t.Fatalf("expected 1 responder, got %v", alert.ResponderIDs)
		}
	})

	t.Run("faculty may respond", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSActive})
		service := NewSOSService(alerts, nil, nil, nil)

		alert, err := service.Respond(context.Background(), facultyPrincipal(), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResponding {
			t.Fatalf("expected responding status, got %q", alert.Status)
		}
	})

	t.Run("students cannot respond", func(t *testing.T) {
		t.Parallel()

		service := NewSOSService(newSOSRepositoryStub(), nil, nil, nil)

		_, err := service.Respond(context.Background(), studentPrincipal("user-1"), "alert-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects closed alerts", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResolved})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.Respond(context.Background(), securityPrincipal(), "alert-1")
		if !errors.Is(err, ErrNotActive) {
			t.Fatalf("expected ErrNotActive, got %v", err)
		}
	})
}

func TestSOSService_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("closes the alert and records who resolved it", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding})
		notifier := &notifierStub{}
		now := time.Date(2026, time.May, 5, 0, 5, 0, 0, time.UTC)
		service := NewSOSService(alerts, notifier, nil, func() time.Time { return now })

		alert, err := service.Resolve(context.Background(), securityPrincipal(), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResolved {
			t.Fatalf("expected resolved status, got %q", alert.Status)
		}
		if alert.ResolvedBy == nil || *alert.ResolvedBy != "security-1" {
			t.Fatalf("expected resolver recorded, got %v", alert.ResolvedBy)
		}
		if alert.ResolvedAt == nil || !alert.ResolvedAt.Equal(now) {
			t.Fatalf("expected resolved at %v, got %v", now, alert.ResolvedAt)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].userID != "user-1" {
			t.Fatalf("expected the creator notified, got %+v", notifier.sent)
		}
	})

	t.Run("lets the creator resolve a responding alert", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding, ResponderIDs: []string{"security-1"}})
		service := NewSOSService(alerts, nil, nil, nil)

		alert, err := service.Resolve(context.Background(), studentPrincipal("user-1"), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResolved {
			t.Fatalf("expected resolved status, got %q", alert.Status)
		}
		if alert.ResolvedBy == nil || *alert.ResolvedBy != "user-1" {
			t.Fatalf("expected the creator recorded as resolver, got %v", alert.ResolvedBy)
		}
	})

	t.Run("lets a listed responder resolve regardless of role", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding, ResponderIDs: []string{"user-2"}})
		service := NewSOSService(alerts, nil, nil, nil)

		alert, err := service.Resolve(context.Background(), studentPrincipal("user-2"), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.ResolvedBy == nil || *alert.ResolvedBy != "user-2" {
			t.Fatalf("expected the responder recorded as resolver, got %v", alert.ResolvedBy)
		}
	})

	t.Run("rejects users unrelated to the alert", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSActive})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.Resolve(context.Background(), studentPrincipal("user-2"), "alert-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects resolving twice", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResolved})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.Resolve(context.Background(), securityPrincipal(), "alert-1")
		if !errors.Is(err, ErrAlreadyResolved) {
			t.Fatalf("expected ErrAlreadyResolved, got %v", err)
		}
	})
}

func TestSOSService_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("lets the creator withdraw an active alert", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSActive})
		now := time.Date(2026, time.May, 5, 1, 0, 0, 0, time.UTC)
		service := NewSOSService(alerts, nil, nil, func() time.Time { return now })

		alert, err := service.Cancel(context.Background(), studentPrincipal("user-1"), "alert-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if alert.Status != SOSResolved {
			t.Fatalf("expected resolved status, got %q", alert.Status)
		}
		if alert.ResolvedBy == nil || *alert.ResolvedBy != "user-1" {
			t.Fatalf("expected the creator recorded as resolver, got %v", alert.ResolvedBy)
		}
		if alert.ResolvedAt == nil || !alert.ResolvedAt.Equal(now) {
			t.Fatalf("expected resolved at %v, got %v", now, alert.ResolvedAt)
		}
	})

	t.Run("rejects other users", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSActive})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.Cancel(context.Background(), studentPrincipal("user-2"), "alert-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects once a responder is on the way", func(t *testing.T) {
		t.Parallel()

		alerts := newSOSRepositoryStub()
		alerts.seed(SOSAlert{ID: "alert-1", CollegeID: "college-1", UserID: "user-1", Status: SOSResponding})
		service := NewSOSService(alerts, nil, nil, nil)

		_, err := service.Cancel(context.Background(), studentPrincipal("user-1"), "alert-1")
		if !errors.Is(err, ErrNotActive) {
			t.Fatalf("expected ErrNotActive, got %v", err)
		}
	})
}

func securityPrincipal() Principal {
	return Principal{UserID: "security-1", CollegeID: "college-1", Role: RoleSecurity}
}

type sosRepositoryStub struct {
	alertsByID map[string]SOSAlert
	responders []string
	updateErr  error
}

func newSOSRepositoryStub() *sosRepositoryStub {
	return &sosRepositoryStub{alertsByID: map[string]SOSAlert{}}
}

func (s *sosRepositoryStub) seed(alert SOSAlert) {
	s.alertsByID[alert.ID] = alert
}

func (s *sosRepositoryStub) FindActiveAlert(_ context.Context, collegeID, userID string) (SOSAlert, error) {
	for _, alert := range s.alertsByID {
		if alert.CollegeID == collegeID && alert.UserID == userID && (alert.Status == SOSActive || alert.Status == SOSResponding) {
			return alert, nil
		}
	}
	return SOSAlert{}, ErrNotFound
}

func (s *sosRepositoryStub) CreateAlert(_ context.Context, alert SOSAlert) (SOSAlert, error) {
	s.alertsByID[alert.ID] = alert
	return alert, nil
}

func (s *sosRepositoryStub) GetAlert(_ context.Context, collegeID, id string) (SOSAlert, error) {
	alert, ok := s.alertsByID[id]
	if !ok || alert.CollegeID != collegeID {
		return SOSAlert{}, ErrNotFound
	}
	return alert, nil
}

func (s *sosRepositoryStub) UpdateAlert(_ context.Context, alert SOSAlert) (SOSAlert, error) {
	if s.updateErr != nil {
		return SOSAlert{}, s.updateErr
	}
	s.alertsByID[alert.ID] = alert
	return alert, nil
}

func (s *sosRepositoryStub) ListAlerts(_ context.Context, collegeID string, openOnly bool) ([]SOSAlert, error) {
	var alerts []SOSAlert
	for _, alert := range s.alertsByID {
		if alert.CollegeID != collegeID {
			continue
		}
		if openOnly && alert.Status != SOSActive && alert.Status != SOSResponding {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (s *sosRepositoryStub) ListResponders(_ context.Context, _ string) ([]string, error) {
	return s.responders, nil
}
