package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/campus-reservation/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateRoom inserts a new classroom.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = now
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO rooms (id, name, capacity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		room.ID,
		room.Name,
		room.Capacity,
		room.CreatedAt.Format(time.RFC3339),
		room.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// GetRoom retrieves a classroom by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, r.mapper.MapError(err)
	}
	return room, nil
}

// ListRooms returns every classroom ordered by capacity, then name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY capacity, name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func scanRoom(scan func(dest ...any) error) (persistence.Room, error) {
	var (
		room      persistence.Room
		createdAt string
		updatedAt string
	)
	if err := scan(&room.ID, &room.Name, &room.Capacity, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, err
	}
	room.CreatedAt = parseTimestamp(createdAt)
	room.UpdatedAt = parseTimestamp(updatedAt)
	return room, nil
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDateColumn(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
