package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/campus-reservation/internal/persistence"
	"github.com/example/campus-reservation/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Users     persistence.UserRepository
	Rooms     persistence.RoomRepository
	Units     persistence.UnitRepository
	Schedules persistence.ScheduleRepository
	Logs      persistence.LogRepository
	Sessions  persistence.SessionRepository

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
// that is migrated automatically. Callers may optionally invoke Close, but
// the helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "roomreserve.db")

	pool, err := sqlite.NewConnectionPool("file:" + path + "?_foreign_keys=on")
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:      pool,
		Users:     sqlite.NewUserRepository(pool),
		Rooms:     sqlite.NewRoomRepository(pool),
		Units:     sqlite.NewUnitRepository(pool),
		Schedules: sqlite.NewScheduleRepository(pool),
		Logs:      sqlite.NewLogRepository(pool),
		Sessions:  sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedBookableUnit inserts a room and one unit of that room, returning both.
// The unit's weekday is aligned with the supplied date when provided.
func (h *SQLiteHarness) SeedBookableUnit(tb testing.TB, room RoomFixture, unit UnitFixture) (persistence.Room, persistence.Unit) {
	tb.Helper()

	ctx := context.Background()
	roomRecord := room.Persistence()
	if err := h.Rooms.CreateRoom(ctx, roomRecord); err != nil {
		tb.Fatalf("failed to seed room: %v", err)
	}

	unit.RoomID = roomRecord.ID
	unitRecord := unit.Persistence()
	if err := h.Units.CreateUnit(ctx, unitRecord); err != nil {
		tb.Fatalf("failed to seed unit: %v", err)
	}
	return roomRecord, unitRecord
}

// SeedUser inserts a user fixture and returns the stored record.
func (h *SQLiteHarness) SeedUser(tb testing.TB, user UserFixture) persistence.User {
	tb.Helper()

	record := user.Persistence()
	if err := h.Users.CreateUser(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed user: %v", err)
	}
	return record
}
