package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// SOSRepository implements persistence.SOSRepository using SQLite.
type SOSRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSOSRepository creates a new SQLite SOS repository.
func NewSOSRepository(pool *ConnectionPool) *SOSRepository {
	return &SOSRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const alertColumns = `id, college_id, user_id, type, status, description, latitude, longitude, resolved_by, resolved_at, created_at, updated_at`

// FindActiveAlert returns the user's alert in the active or responding state.
func (r *SOSRepository) FindActiveAlert(ctx context.Context, collegeID, userID string) (persistence.SOSAlert, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM sos_alerts
		WHERE college_id = ? AND user_id = ? AND status IN ('active', 'responding')
	`, collegeID, userID)

	alert, err := r.scanAlert(row)
	if err != nil {
		return persistence.SOSAlert{}, err
	}
	return r.attachResponders(ctx, alert)
}

// CreateAlert inserts an alert row.
func (r *SOSRepository) CreateAlert(ctx context.Context, alert persistence.SOSAlert) error {
	if alert.ID == "" || alert.CollegeID == "" || alert.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO sos_alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		alert.ID,
		alert.CollegeID,
		alert.UserID,
		alert.Type,
		alert.Status,
		alert.Description,
		nullFloat(alert.Latitude),
		nullFloat(alert.Longitude),
		nullString(alert.ResolvedBy),
		nullTime(alert.ResolvedAt),
		formatTime(alert.CreatedAt),
		formatTime(alert.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetAlert retrieves an alert with its responders.
func (r *SOSRepository) GetAlert(ctx context.Context, collegeID, id string) (persistence.SOSAlert, error) {
	if id == "" {
		return persistence.SOSAlert{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM sos_alerts
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	alert, err := r.scanAlert(row)
	if err != nil {
		return persistence.SOSAlert{}, err
	}
	return r.attachResponders(ctx, alert)
}

// UpdateAlert updates an alert's mutable fields and reconciles its responder
// rows in one transaction.
func (r *SOSRepository) UpdateAlert(ctx context.Context, alert persistence.SOSAlert) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `
			UPDATE sos_alerts
			SET status = ?, description = ?, resolved_by = ?, resolved_at = ?, updated_at = ?
			WHERE id = ? AND college_id = ?
		`,
			alert.Status,
			alert.Description,
			nullString(alert.ResolvedBy),
			nullTime(alert.ResolvedAt),
			formatTime(alert.UpdatedAt),
			alert.ID,
			alert.CollegeID,
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

		for _, responderID := range alert.ResponderIDs {
			_, err = r.helper.ExecTx(tx, `
				INSERT INTO sos_responders (alert_id, user_id, responded_at)
				VALUES (?, ?, ?)
				ON CONFLICT (alert_id, user_id) DO NOTHING
			`, alert.ID, responderID, formatTime(alert.UpdatedAt))
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// ListAlerts returns a college's alerts, newest first. With openOnly set,
// resolved alerts are excluded.
func (r *SOSRepository) ListAlerts(ctx context.Context, collegeID string, openOnly bool) ([]persistence.SOSAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM sos_alerts
		WHERE college_id = ?
		ORDER BY created_at DESC, id DESC
	`
	if openOnly {
		query = `
			SELECT ` + alertColumns + `
			FROM sos_alerts
			WHERE college_id = ? AND status IN ('active', 'responding')
			ORDER BY created_at DESC, id DESC
		`
	}

	rows, err := r.helper.Query(ctx, query, collegeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var alerts []persistence.SOSAlert
	for rows.Next() {
		alert, err := r.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range alerts {
		if alerts[i], err = r.attachResponders(ctx, alerts[i]); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

// ListUsersByRoles returns IDs of enabled users holding any of the roles.
func (r *SOSRepository) ListUsersByRoles(ctx context.Context, collegeID string, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(roles)-1) + "?"
	args := make([]any, 0, len(roles)+1)
	args = append(args, collegeID)
	for _, role := range roles {
		args = append(args, role)
	}

	rows, err := r.helper.Query(ctx, `
		SELECT id FROM users
		WHERE college_id = ? AND disabled = 0 AND role IN (`+placeholders+`)
		ORDER BY id ASC
	`, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, r.mapper.MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return ids, nil
}

func (r *SOSRepository) attachResponders(ctx context.Context, alert persistence.SOSAlert) (persistence.SOSAlert, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT user_id FROM sos_responders
		WHERE alert_id = ?
		ORDER BY responded_at ASC, user_id ASC
	`, alert.ID)
	if err != nil {
		return persistence.SOSAlert{}, r.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return persistence.SOSAlert{}, r.mapper.MapError(err)
		}
		alert.ResponderIDs = append(alert.ResponderIDs, id)
	}
	if err := rows.Err(); err != nil {
		return persistence.SOSAlert{}, r.mapper.MapError(err)
	}
	return alert, nil
}

func (r *SOSRepository) scanAlert(row rowScanner) (persistence.SOSAlert, error) {
	var alert persistence.SOSAlert
	var createdAtStr, updatedAtStr string
	var latitude, longitude sql.NullFloat64
	var resolvedBy, resolvedAt sql.NullString

	err := row.Scan(
		&alert.ID,
		&alert.CollegeID,
		&alert.UserID,
		&alert.Type,
		&alert.Status,
		&alert.Description,
		&latitude,
		&longitude,
		&resolvedBy,
		&resolvedAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.SOSAlert{}, r.mapper.MapError(err)
	}

	alert.Latitude = floatPtr(latitude)
	alert.Longitude = floatPtr(longitude)
	alert.ResolvedBy = stringPtr(resolvedBy)
	if alert.ResolvedAt, err = parseTimePtr(resolvedAt, "resolved_at"); err != nil {
		return persistence.SOSAlert{}, err
	}
	if alert.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.SOSAlert{}, err
	}
	if alert.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.SOSAlert{}, err
	}
	return alert, nil
}
