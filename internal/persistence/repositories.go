package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account lookup and maintenance operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// RoomRepository exposes classroom catalog operations. Listings are ordered
// by capacity, matching the presentation order of the day sheet.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// UnitFilter narrows unit queries to one weekly slot.
type UnitFilter struct {
	Weekday *int
	Period  *int
}

// UnitRepository exposes weekly slot template operations. Listings are
// ordered by room.
type UnitRepository interface {
	CreateUnit(ctx context.Context, unit Unit) error
	GetUnit(ctx context.Context, id string) (Unit, error)
	ListUnits(ctx context.Context, filter UnitFilter) ([]Unit, error)
}

// ScheduleFilter narrows schedule queries. Date bounds are inclusive.
type ScheduleFilter struct {
	UnitID       string
	SubscriberID string
	Date         *time.Time
	DateFrom     *time.Time
	DateUntil    *time.Time
}

// ScheduleRepository stores reservations ordered by (date, unit).
//
// The booking mutations each accept the audit log entry that mirrors the
// change; implementations must persist the pair atomically so a failed
// write never leaves a log without its schedule or vice versa.
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	CountSchedulesBySubscriber(ctx context.Context, subscriberID string) (int, error)
	CreateBooking(ctx context.Context, schedule Schedule, log Log) error
	UpdateBooking(ctx context.Context, schedule Schedule, log Log) error
	DeleteBooking(ctx context.Context, scheduleID string, log Log) error
}

// LogFilter narrows audit log queries.
type LogFilter struct {
	UserID string
}

// LogRepository stores the append-only audit trail. There are deliberately
// no update or delete operations.
type LogRepository interface {
	ListLogs(ctx context.Context, filter LogFilter) ([]Log, error)
	CountLogsByUser(ctx context.Context) (map[string]int, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
