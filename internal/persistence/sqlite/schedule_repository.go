package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-reservation/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
//
// Every booking mutation writes the schedule row and its audit log entry in
// one transaction, so the log always reconstructs the mutation history and a
// partial failure leaves no trace of either write.
type ScheduleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetSchedule retrieves a reservation by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if id == "" {
		return persistence.Schedule{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT id, unit_id, date, faculty, course, subscriber_id, num_students, created_at, updated_at
		 FROM schedules WHERE id = ?`, id)

	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Schedule{}, persistence.ErrNotFound
		}
		return persistence.Schedule{}, r.mapper.MapError(err)
	}
	return schedule, nil
}

// ListSchedules returns reservations matching the filter ordered by
// (date, unit), the default presentation order.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	query := `SELECT id, unit_id, date, faculty, course, subscriber_id, num_students, created_at, updated_at FROM schedules`
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.UnitID != "" {
		conditions = append(conditions, "unit_id = ?")
		args = append(args, filter.UnitID)
	}
	if filter.SubscriberID != "" {
		conditions = append(conditions, "subscriber_id = ?")
		args = append(args, filter.SubscriberID)
	}
	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date.Format(time.DateOnly))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.DateFrom.Format(time.DateOnly))
	}
	if filter.DateUntil != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.DateUntil.Format(time.DateOnly))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date, unit_id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	schedules := make([]persistence.Schedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// CountSchedulesBySubscriber counts every reservation held by one user,
// past and future alike. The booking quota is evaluated against this count.
func (r *ScheduleRepository) CountSchedulesBySubscriber(ctx context.Context, subscriberID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		`SELECT COUNT(*) FROM schedules WHERE subscriber_id = ?`, subscriberID).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// CreateBooking inserts a reservation together with its CREATE audit entry.
// A concurrent booking of the same (unit, date) fails the UNIQUE index and
// surfaces as persistence.ErrDuplicate.
func (r *ScheduleRepository) CreateBooking(ctx context.Context, schedule persistence.Schedule, log persistence.Log) error {
	if schedule.ID == "" || log.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := insertLogTx(r.helper, tx, log); err != nil {
			return r.mapper.MapError(err)
		}

		_, err := r.helper.ExecTx(tx,
			`INSERT INTO schedules (id, unit_id, date, faculty, course, subscriber_id, num_students, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			schedule.ID,
			schedule.UnitID,
			schedule.Date.Format(time.DateOnly),
			schedule.Faculty,
			schedule.Course,
			schedule.SubscriberID,
			schedule.NumStudents,
			schedule.CreatedAt.Format(time.RFC3339),
			schedule.UpdatedAt.Format(time.RFC3339),
		)
		return r.mapper.MapError(err)
	})
}

// UpdateBooking rewrites the mutable reservation fields together with an
// UPDATE audit entry carrying the new values.
func (r *ScheduleRepository) UpdateBooking(ctx context.Context, schedule persistence.Schedule, log persistence.Log) error {
	if schedule.ID == "" || log.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := insertLogTx(r.helper, tx, log); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx,
			`UPDATE schedules SET faculty = ?, course = ?, num_students = ?, updated_at = ? WHERE id = ?`,
			schedule.Faculty,
			schedule.Course,
			schedule.NumStudents,
			schedule.UpdatedAt.Format(time.RFC3339),
			schedule.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// DeleteBooking removes a reservation together with a DELETE audit entry
// snapshotting the values it held before removal.
func (r *ScheduleRepository) DeleteBooking(ctx context.Context, scheduleID string, log persistence.Log) error {
	if scheduleID == "" || log.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := insertLogTx(r.helper, tx, log); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, `DELETE FROM schedules WHERE id = ?`, scheduleID)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func insertLogTx(helper *QueryHelper, tx *sql.Tx, log persistence.Log) error {
	_, err := helper.ExecTx(tx,
		`INSERT INTO logs (id, user_id, created_at, type, unit_id, date, faculty, course, num_students)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.UserID,
		log.CreatedAt.Format(time.RFC3339),
		log.Type,
		log.UnitID,
		log.Date.Format(time.DateOnly),
		log.Faculty,
		log.Course,
		log.NumStudents,
	)
	return err
}

func scanSchedule(scan func(dest ...any) error) (persistence.Schedule, error) {
	var (
		schedule  persistence.Schedule
		date      string
		createdAt string
		updatedAt string
	)
	if err := scan(
		&schedule.ID,
		&schedule.UnitID,
		&date,
		&schedule.Faculty,
		&schedule.Course,
		&schedule.SubscriberID,
		&schedule.NumStudents,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Schedule{}, err
	}
	schedule.Date = parseDateColumn(date)
	schedule.CreatedAt = parseTimestamp(createdAt)
	schedule.UpdatedAt = parseTimestamp(updatedAt)
	return schedule, nil
}
