package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users         persistence.UserRepository
	Sessions      persistence.SessionRepository
	Wallets       persistence.WalletRepository
	Library       persistence.LibraryRepository
	Events        persistence.EventRepository
	Alerts        persistence.SOSRepository
	Skills        persistence.SkillRepository
	Rooms         persistence.RoomRepository
	Canteen       persistence.CanteenRepository
	Notifications persistence.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but the
// helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "campus.db")

	pool, err := sqlite.NewConnectionPool(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:         sqlite.NewUserRepository(pool),
		Sessions:      sqlite.NewSessionRepository(pool),
		Wallets:       sqlite.NewWalletRepository(pool),
		Library:       sqlite.NewLibraryRepository(pool),
		Events:        sqlite.NewEventRepository(pool),
		Alerts:        sqlite.NewSOSRepository(pool),
		Skills:        sqlite.NewSkillRepository(pool),
		Rooms:         sqlite.NewRoomRepository(pool),
		Canteen:       sqlite.NewCanteenRepository(pool),
		Notifications: sqlite.NewNotificationRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
