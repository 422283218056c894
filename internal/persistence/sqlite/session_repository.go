package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/campus-reservation/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession inserts a new session record.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at, updated_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt.Format(time.RFC3339),
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, created_at, updated_at, revoked_at
		 FROM sessions WHERE token = ?`, token)

	session, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// RevokeSession marks a session revoked and returns the updated record.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.helper.Exec(ctx,
		`UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ? AND revoked_at IS NULL`,
		revokedAt.Format(time.RFC3339),
		revokedAt.Format(time.RFC3339),
		token,
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, err
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry lies at or before the
// reference instant.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, reference.Format(time.RFC3339))
	return r.mapper.MapError(err)
}

func scanSession(scan func(dest ...any) error) (persistence.Session, error) {
	var (
		session   persistence.Session
		expiresAt string
		createdAt string
		updatedAt string
		revokedAt sql.NullString
	)
	if err := scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &updatedAt, &revokedAt); err != nil {
		return persistence.Session{}, err
	}
	session.ExpiresAt = parseTimestamp(expiresAt)
	session.CreatedAt = parseTimestamp(createdAt)
	session.UpdatedAt = parseTimestamp(updatedAt)
	if revokedAt.Valid {
		t := parseTimestamp(revokedAt.String)
		session.RevokedAt = &t
	}
	return session, nil
}
