package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		disabled INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_college ON users(college_id)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		status TEXT NOT NULL DEFAULT 'active',
		updated_at TEXT NOT NULL,
		UNIQUE (college_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL REFERENCES wallets(id),
		user_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		category TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		balance_after INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		reference_id TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_tx_wallet ON wallet_transactions(college_id, wallet_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		total_copies INTEGER NOT NULL CHECK (total_copies > 0),
		available_copies INTEGER NOT NULL CHECK (available_copies >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_college ON books(college_id)`,

	`CREATE TABLE IF NOT EXISTS book_borrows (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		book_id TEXT NOT NULL REFERENCES books(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL,
		borrowed_at TEXT NOT NULL,
		due_at TEXT NOT NULL,
		returned_at TEXT,
		fine_amount INTEGER NOT NULL DEFAULT 0,
		fine_paid INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_borrows_user ON book_borrows(college_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_borrows_book ON book_borrows(college_id, book_id, status)`,

	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		creator_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		registration_deadline TEXT,
		max_attendees INTEGER,
		registration_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_college ON events(college_id, starts_at)`,

	`CREATE TABLE IF NOT EXISTS event_registrations (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		event_id TEXT NOT NULL REFERENCES events(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL,
		registered_at TEXT NOT NULL,
		cancelled_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_event ON event_registrations(college_id, event_id, status)`,

	`CREATE TABLE IF NOT EXISTS sos_alerts (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		latitude REAL,
		longitude REAL,
		resolved_by TEXT,
		resolved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sos_user ON sos_alerts(college_id, user_id, status)`,

	`CREATE TABLE IF NOT EXISTS sos_responders (
		alert_id TEXT NOT NULL REFERENCES sos_alerts(id),
		user_id TEXT NOT NULL,
		responded_at TEXT NOT NULL,
		PRIMARY KEY (alert_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS skill_entries (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		skill_name TEXT NOT NULL,
		score INTEGER NOT NULL CHECK (score >= 0),
		category TEXT,
		is_anonymous INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		UNIQUE (college_id, user_id, skill_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_skills_skill ON skill_entries(college_id, skill_name, score)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		name TEXT NOT NULL,
		building TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS room_bookings (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		room_id TEXT NOT NULL REFERENCES rooms(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		purpose TEXT NOT NULL DEFAULT '',
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room ON room_bookings(college_id, room_id, status)`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		name TEXT NOT NULL,
		price INTEGER NOT NULL CHECK (price > 0),
		available INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		total INTEGER NOT NULL CHECK (total > 0),
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(college_id, user_id)`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id TEXT NOT NULL REFERENCES orders(id),
		item_id TEXT NOT NULL REFERENCES menu_items(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price INTEGER NOT NULL,
		PRIMARY KEY (order_id, item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(college_id, user_id, read)`,
}

// Migrate creates the schema. Statements are idempotent so the call is safe
// on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
