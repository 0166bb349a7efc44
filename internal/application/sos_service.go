package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SOSRepository captures the persistence operations needed by the SOS service.
type SOSRepository interface {
	// FindActiveAlert returns the user's alert in the active or responding
	// state, or persistence.ErrNotFound.
	FindActiveAlert(ctx context.Context, collegeID, userID string) (SOSAlert, error)
	CreateAlert(ctx context.Context, alert SOSAlert) (SOSAlert, error)
	GetAlert(ctx context.Context, collegeID, id string) (SOSAlert, error)
	UpdateAlert(ctx context.Context, alert SOSAlert) (SOSAlert, error)
	ListAlerts(ctx context.Context, collegeID string, openOnly bool) ([]SOSAlert, error)
	// ListResponders returns the user IDs holding the security or admin role
	// in the college, for fan-out notification.
	ListResponders(ctx context.Context, collegeID string) ([]string, error)
}

// SOSService manages emergency alerts: one open alert per user at a time,
// security acknowledgement, and resolution.
type SOSService struct {
	alerts      SOSRepository
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSOSService constructs an SOS service with the provided dependencies.
func NewSOSService(alerts SOSRepository, notifier Notifier, idGenerator func() string, now func() time.Time) *SOSService {
	return NewSOSServiceWithLogger(alerts, notifier, idGenerator, now, nil)
}

// NewSOSServiceWithLogger constructs an SOS service with a specified logger.
func NewSOSServiceWithLogger(alerts SOSRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SOSService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SOSService{alerts: alerts, notifier: notifier, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *SOSService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SOSService", operation, attrs...)
}

// CreateAlert raises an emergency alert for the calling user. A user with an
// alert still in the active or responding state cannot raise another.
func (s *SOSService) CreateAlert(ctx context.Context, params CreateSOSParams) (alert SOSAlert, err error) {
	if s == nil || s.alerts == nil {
		err = fmt.Errorf("sos service not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "CreateAlert", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create alert", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("alert_id", alert.ID, "type", string(alert.Type)).InfoContext(ctx, "alert created")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	vErr := &ValidationError{}
	alertType, ok := ParseSOSType(string(params.Type))
	if !ok {
		vErr.add("type", "unknown alert type")
	}
	if params.Location != nil {
		if params.Location.Latitude < -90 || params.Location.Latitude > 90 {
			vErr.add("location", "latitude out of range")
		}
		if params.Location.Longitude < -180 || params.Location.Longitude > 180 {
			vErr.add("location", "longitude out of range")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, findErr := s.alerts.FindActiveAlert(ctx, principal.CollegeID, principal.UserID); findErr == nil {
		err = ErrActiveAlertExists
		return
	} else if mapped := mapRepoError(findErr); !errors.Is(mapped, ErrNotFound) {
		err = mapped
		return
	}

	now := s.now()
	alert = SOSAlert{
		ID:          s.idGenerator(),
		CollegeID:   principal.CollegeID,
		UserID:      principal.UserID,
		Type:        alertType,
		Status:      SOSActive,
		Description: strings.TrimSpace(params.Description),
		Location:    params.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	alert, err = s.alerts.CreateAlert(ctx, alert)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if responders, listErr := s.alerts.ListResponders(ctx, principal.CollegeID); listErr == nil {
		message := fmt.Sprintf("%s alert raised", alert.Type)
		if alert.Description != "" {
			message = fmt.Sprintf("%s alert raised: %s", alert.Type, alert.Description)
		}
		for _, responderID := range responders {
			notify(ctx, s.notifier, logger, principal.CollegeID, responderID, "sos", "Emergency alert", message)
		}
	} else {
		logger.WarnContext(ctx, "failed to list responders", "error", listErr)
	}
	return
}

// Respond acknowledges an alert. Security, faculty, and administrators only.
// The first responder moves the alert from active to responding; later
// responders are appended without changing the status.
func (s *SOSService) Respond(ctx context.Context, principal Principal, alertID string) (alert SOSAlert, err error) {
	if s == nil || s.alerts == nil {
		err = fmt.Errorf("sos service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Respond",
		"principal_id", principal.UserID,
		"alert_id", alertID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to respond to alert", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "responding to alert")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleSecurity, RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing SOSAlert
	existing, err = s.alerts.GetAlert(ctx, principal.CollegeID, alertID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	switch existing.Status {
	case SOSActive:
		existing.Status = SOSResponding
	case SOSResponding:
		// Additional responders join without a status change.
	default:
		err = ErrNotActive
		return
	}

	already := false
	for _, id := range existing.ResponderIDs {
		if id == principal.UserID {
			already = true
			break
		}
	}
	if !already {
		existing.ResponderIDs = append(existing.ResponderIDs, principal.UserID)
	}
	existing.UpdatedAt = s.now()

	alert, err = s.alerts.UpdateAlert(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	notify(ctx, s.notifier, logger, principal.CollegeID, alert.UserID, "sos", "Help is on the way", "A responder has acknowledged your alert.")
	return
}

// Resolve closes an alert. The creator, any listed responder, security, and
// administrators may resolve; the creator's only way out of a responding
// alert is to resolve it.
func (s *SOSService) Resolve(ctx context.Context, principal Principal, alertID string) (alert SOSAlert, err error) {
	if s == nil || s.alerts == nil {
		err = fmt.Errorf("sos service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Resolve",
		"principal_id", principal.UserID,
		"alert_id", alertID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve alert", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "alert resolved")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var existing SOSAlert
	existing, err = s.alerts.GetAlert(ctx, principal.CollegeID, alertID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if !canResolveAlert(principal, existing) {
		err = ErrUnauthorized
		return
	}

	if existing.Status == SOSResolved {
		err = ErrAlreadyResolved
		return
	}
	if !CanTransitionSOS(existing.Status, SOSResolved) {
		err = ErrInvalidState
		return
	}

	now := s.now()
	existing.Status = SOSResolved
	existing.ResolvedBy = &principal.UserID
	existing.ResolvedAt = &now
	existing.UpdatedAt = now

	alert, err = s.alerts.UpdateAlert(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	notify(ctx, s.notifier, logger, principal.CollegeID, alert.UserID, "sos", "Alert resolved", "Your emergency alert has been resolved.")
	return
}

func canResolveAlert(principal Principal, alert SOSAlert) bool {
	if principal.UserID == alert.UserID {
		return true
	}
	for _, id := range alert.ResponderIDs {
		if id == principal.UserID {
			return true
		}
	}
	return principal.HasAnyRole(RoleSecurity, RoleAdmin)
}

// Cancel withdraws an alert. Only the creator may cancel, and only while the
// alert is still active; once a responder is on the way it must be resolved.
// A cancelled alert is stored as resolved with the creator as resolver, so
// the lifecycle stays three-state.
func (s *SOSService) Cancel(ctx context.Context, principal Principal, alertID string) (alert SOSAlert, err error) {
	if s == nil || s.alerts == nil {
		err = fmt.Errorf("sos service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"alert_id", alertID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel alert", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "alert cancelled")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	var existing SOSAlert
	existing, err = s.alerts.GetAlert(ctx, principal.CollegeID, alertID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}
	if existing.Status != SOSActive {
		err = ErrNotActive
		return
	}

	now := s.now()
	existing.Status = SOSResolved
	existing.ResolvedBy = &principal.UserID
	existing.ResolvedAt = &now
	existing.UpdatedAt = now

	alert, err = s.alerts.UpdateAlert(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetAlert returns one alert. The creator, security, and administrators only.
func (s *SOSService) GetAlert(ctx context.Context, principal Principal, alertID string) (SOSAlert, error) {
	if s == nil || s.alerts == nil {
		return SOSAlert{}, fmt.Errorf("sos service not configured")
	}
	if !principal.IsAuthenticated() {
		return SOSAlert{}, ErrUnauthenticated
	}

	alert, err := s.alerts.GetAlert(ctx, principal.CollegeID, alertID)
	if err != nil {
		return SOSAlert{}, mapRepoError(err)
	}
	if alert.UserID != principal.UserID && !principal.HasAnyRole(RoleSecurity, RoleAdmin) {
		return SOSAlert{}, ErrUnauthorized
	}
	return alert, nil
}

// ListAlerts returns the college's alerts. Security and administrators only.
// With openOnly set, resolved alerts are excluded.
func (s *SOSService) ListAlerts(ctx context.Context, principal Principal, openOnly bool) ([]SOSAlert, error) {
	if s == nil || s.alerts == nil {
		return nil, fmt.Errorf("sos service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !principal.HasAnyRole(RoleSecurity, RoleAdmin) {
		return nil, ErrUnauthorized
	}

	alerts, err := s.alerts.ListAlerts(ctx, principal.CollegeID, openOnly)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return alerts, nil
}
