package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration pairs a monotonically increasing version with the statements that
// bring the schema up to it.
type migration struct {
	version    int
	statements []string
}

// The (unit_id, date) unique index on schedules is the storage-level guard
// against two concurrent bookings of the same slot: the second insert fails
// with a UNIQUE violation inside its transaction and is reported to the user
// as an ordinary double-booking.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL COLLATE NOCASE UNIQUE,
				display_name TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				disabled INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				capacity INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS units (
				id TEXT PRIMARY KEY,
				room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
				weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
				period INTEGER NOT NULL CHECK (period BETWEEN 1 AND 5),
				UNIQUE (room_id, weekday, period)
			)`,
			`CREATE TABLE IF NOT EXISTS schedules (
				id TEXT PRIMARY KEY,
				unit_id TEXT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				faculty TEXT NOT NULL,
				course TEXT NOT NULL,
				subscriber_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				num_students INTEGER NOT NULL CHECK (num_students > 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (unit_id, date)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_schedules_subscriber ON schedules(subscriber_id)`,
			`CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules(date)`,
			`CREATE TABLE IF NOT EXISTS logs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('CREATE', 'UPDATE', 'DELETE')),
				unit_id TEXT NOT NULL,
				date TEXT NOT NULL,
				faculty TEXT NOT NULL,
				course TEXT NOT NULL,
				num_students INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_logs_user ON logs(user_id)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}

// Migrate applies any pending schema migrations, recording progress in the
// schema_migrations table so the runner is safe to call at every startup.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	var current sql.NullInt64
	if err := pool.DB().QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`, m.version)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
