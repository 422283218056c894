package sqlite

import (
	"context"

	"github.com/example/campus-reservation/internal/persistence"
)

// LogRepository implements persistence.LogRepository using SQLite. The audit
// trail is append-only; entries are written by ScheduleRepository booking
// mutations and only ever read here.
type LogRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLogRepository creates a new SQLite log repository.
func NewLogRepository(pool *ConnectionPool) *LogRepository {
	return &LogRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// ListLogs returns audit entries matching the filter, oldest first.
func (r *LogRepository) ListLogs(ctx context.Context, filter persistence.LogFilter) ([]persistence.Log, error) {
	query := `SELECT id, user_id, created_at, type, unit_id, date, faculty, course, num_students FROM logs`
	args := make([]any, 0, 1)
	if filter.UserID != "" {
		query += " WHERE user_id = ?"
		args = append(args, filter.UserID)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	logs := make([]persistence.Log, 0)
	for rows.Next() {
		var (
			log       persistence.Log
			createdAt string
			date      string
		)
		if err := rows.Scan(
			&log.ID,
			&log.UserID,
			&createdAt,
			&log.Type,
			&log.UnitID,
			&date,
			&log.Faculty,
			&log.Course,
			&log.NumStudents,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		log.CreatedAt = parseTimestamp(createdAt)
		log.Date = parseDateColumn(date)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// CountLogsByUser returns the number of audit entries grouped by actor.
func (r *LogRepository) CountLogsByUser(ctx context.Context) (map[string]int, error) {
	rows, err := r.helper.Query(ctx, `SELECT user_id, COUNT(*) FROM logs GROUP BY user_id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			userID string
			count  int
		)
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, r.mapper.MapError(err)
		}
		counts[userID] = count
	}
	return counts, rows.Err()
}
