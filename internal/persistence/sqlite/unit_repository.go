package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/campus-reservation/internal/persistence"
)

// UnitRepository implements persistence.UnitRepository using SQLite.
type UnitRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUnitRepository creates a new SQLite unit repository.
func NewUnitRepository(pool *ConnectionPool) *UnitRepository {
	return &UnitRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUnit inserts a new weekly slot template. The (room, weekday, period)
// combination is unique at the schema level.
func (r *UnitRepository) CreateUnit(ctx context.Context, unit persistence.Unit) error {
	if unit.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO units (id, room_id, weekday, period) VALUES (?, ?, ?, ?)`,
		unit.ID, unit.RoomID, unit.Weekday, unit.Period,
	)
	return r.mapper.MapError(err)
}

// GetUnit retrieves a unit by ID.
func (r *UnitRepository) GetUnit(ctx context.Context, id string) (persistence.Unit, error) {
	if id == "" {
		return persistence.Unit{}, persistence.ErrNotFound
	}

	var unit persistence.Unit
	row := r.helper.QueryRow(ctx,
		`SELECT id, room_id, weekday, period FROM units WHERE id = ?`, id)
	if err := row.Scan(&unit.ID, &unit.RoomID, &unit.Weekday, &unit.Period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Unit{}, persistence.ErrNotFound
		}
		return persistence.Unit{}, r.mapper.MapError(err)
	}
	return unit, nil
}

// ListUnits returns units matching the filter, ordered by room.
func (r *UnitRepository) ListUnits(ctx context.Context, filter persistence.UnitFilter) ([]persistence.Unit, error) {
	query := `SELECT id, room_id, weekday, period FROM units`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if filter.Weekday != nil {
		conditions = append(conditions, "weekday = ?")
		args = append(args, *filter.Weekday)
	}
	if filter.Period != nil {
		conditions = append(conditions, "period = ?")
		args = append(args, *filter.Period)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY room_id, weekday, period"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	units := make([]persistence.Unit, 0)
	for rows.Next() {
		var unit persistence.Unit
		if err := rows.Scan(&unit.ID, &unit.RoomID, &unit.Weekday, &unit.Period); err != nil {
			return nil, r.mapper.MapError(err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
