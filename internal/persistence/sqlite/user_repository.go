package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/campus-reservation/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts a new account. Email addresses are unique,
// case-insensitively.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, disabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		boolToInt(user.Disabled),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// GetUser retrieves an account by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves an account by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUserWhere(ctx, "email = ? COLLATE NOCASE", email)
}

// ListUsers returns every account ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, email, display_name, password_hash, disabled, created_at, updated_at
		 FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) getUserWhere(ctx context.Context, condition string, arg any) (persistence.User, error) {
	row := r.helper.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, disabled, created_at, updated_at
		 FROM users WHERE `+condition, arg)

	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, r.mapper.MapError(err)
	}
	return user, nil
}

func scanUser(scan func(dest ...any) error) (persistence.User, error) {
	var (
		user      persistence.User
		disabled  int
		createdAt string
		updatedAt string
	)
	if err := scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &disabled, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, err
	}
	user.Disabled = disabled != 0
	user.CreatedAt = parseTimestamp(createdAt)
	user.UpdatedAt = parseTimestamp(updatedAt)
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
