package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// SkillRepository implements persistence.SkillRepository using SQLite.
type SkillRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSkillRepository creates a new SQLite skill repository.
func NewSkillRepository(pool *ConnectionPool) *SkillRepository {
	return &SkillRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const skillColumns = `id, college_id, user_id, skill_name, score, category, is_anonymous, updated_at`

// FindEntry returns the user's entry for a skill.
func (r *SkillRepository) FindEntry(ctx context.Context, collegeID, userID, skillName string) (persistence.SkillEntry, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+skillColumns+`
		FROM skill_entries
		WHERE college_id = ? AND user_id = ? AND skill_name = ?
	`, collegeID, userID, skillName)

	return r.scanEntry(row)
}

// CreateEntry inserts a skill entry row.
func (r *SkillRepository) CreateEntry(ctx context.Context, entry persistence.SkillEntry) error {
	if entry.ID == "" || entry.UserID == "" || entry.SkillName == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO skill_entries (`+skillColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.CollegeID,
		entry.UserID,
		entry.SkillName,
		entry.Score,
		nullString(entry.Category),
		entry.IsAnonymous,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateEntry updates a skill entry's score and category.
func (r *SkillRepository) UpdateEntry(ctx context.Context, entry persistence.SkillEntry) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE skill_entries
		SET score = ?, category = ?, updated_at = ?
		WHERE id = ? AND college_id = ?
	`,
		entry.Score,
		nullString(entry.Category),
		formatTime(entry.UpdatedAt),
		entry.ID,
		entry.CollegeID,
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
	return nil
}

// ListBySkill returns a skill's entries ordered by score descending then
// update time ascending, so earlier submissions win ties.
func (r *SkillRepository) ListBySkill(ctx context.Context, collegeID, skillName string) ([]persistence.SkillEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+skillColumns+`
		FROM skill_entries
		WHERE college_id = ? AND skill_name = ?
		ORDER BY score DESC, updated_at ASC, id ASC
	`, collegeID, skillName)
}

// ListAll returns every entry in the college.
func (r *SkillRepository) ListAll(ctx context.Context, collegeID string) ([]persistence.SkillEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+skillColumns+`
		FROM skill_entries
		WHERE college_id = ?
		ORDER BY score DESC, updated_at ASC, id ASC
	`, collegeID)
}

// ListUserEntries returns a user's entries ordered by skill name.
func (r *SkillRepository) ListUserEntries(ctx context.Context, collegeID, userID string) ([]persistence.SkillEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+skillColumns+`
		FROM skill_entries
		WHERE college_id = ? AND user_id = ?
		ORDER BY skill_name ASC
	`, collegeID, userID)
}

// SetAnonymous flips the anonymity flag on all of a user's entries.
func (r *SkillRepository) SetAnonymous(ctx context.Context, collegeID, userID string, anonymous bool) error {
	_, err := r.helper.Exec(ctx, `
		UPDATE skill_entries SET is_anonymous = ? WHERE college_id = ? AND user_id = ?
	`, anonymous, collegeID, userID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func (r *SkillRepository) queryEntries(ctx context.Context, query string, args ...any) ([]persistence.SkillEntry, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.SkillEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

func (r *SkillRepository) scanEntry(row rowScanner) (persistence.SkillEntry, error) {
	var entry persistence.SkillEntry
	var category sql.NullString
	var updatedAtStr string

	err := row.Scan(
		&entry.ID,
		&entry.CollegeID,
		&entry.UserID,
		&entry.SkillName,
		&entry.Score,
		&category,
		&entry.IsAnonymous,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.SkillEntry{}, r.mapper.MapError(err)
	}

	entry.Category = stringPtr(category)
	if entry.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.SkillEntry{}, err
	}
	return entry, nil
}
