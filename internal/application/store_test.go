package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/campus-reservation/internal/booking"
	"github.com/example/campus-reservation/internal/persistence"
)

// memoryStore is an in-memory implementation of the persistence repositories
// used by the service tests. Booking mutations append their audit entry under
// the same lock, mirroring the transactional pairing of the real store.
type memoryStore struct {
	mu        sync.Mutex
	users     []persistence.User
	rooms     []persistence.Room
	units     []persistence.Unit
	schedules []persistence.Schedule
	logs      []persistence.Log
	sessions  []persistence.Session

	createBookingErr error
	failErr          error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) addUser(user persistence.User)             { m.users = append(m.users, user) }
func (m *memoryStore) addRoom(room persistence.Room)             { m.rooms = append(m.rooms, room) }
func (m *memoryStore) addUnit(unit persistence.Unit)             { m.units = append(m.units, unit) }
func (m *memoryStore) addSchedule(s persistence.Schedule)        { m.schedules = append(m.schedules, s) }
func (m *memoryStore) addLog(entry persistence.Log)              { m.logs = append(m.logs, entry) }
func (m *memoryStore) addSession(session persistence.Session)    { m.sessions = append(m.sessions, session) }

// --- UserRepository ---

func (m *memoryStore) CreateUser(ctx context.Context, user persistence.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, user)
	return nil
}

func (m *memoryStore) GetUser(ctx context.Context, id string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (m *memoryStore) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (m *memoryStore) ListUsers(ctx context.Context) ([]persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]persistence.User(nil), m.users...), nil
}

// --- RoomRepository ---

func (m *memoryStore) CreateRoom(ctx context.Context, room persistence.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = append(m.rooms, room)
	return nil
}

func (m *memoryStore) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

func (m *memoryStore) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := append([]persistence.Room(nil), m.rooms...)
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].Capacity < rooms[j].Capacity })
	return rooms, nil
}

// --- UnitRepository ---

func (m *memoryStore) CreateUnit(ctx context.Context, unit persistence.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append(m.units, unit)
	return nil
}

func (m *memoryStore) GetUnit(ctx context.Context, id string) (persistence.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, unit := range m.units {
		if unit.ID == id {
			return unit, nil
		}
	}
	return persistence.Unit{}, persistence.ErrNotFound
}

func (m *memoryStore) ListUnits(ctx context.Context, filter persistence.UnitFilter) ([]persistence.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := make([]persistence.Unit, 0, len(m.units))
	for _, unit := range m.units {
		if filter.Weekday != nil && unit.Weekday != *filter.Weekday {
			continue
		}
		if filter.Period != nil && unit.Period != *filter.Period {
			continue
		}
		units = append(units, unit)
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].RoomID < units[j].RoomID })
	return units, nil
}

// --- ScheduleRepository ---

func (m *memoryStore) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return persistence.Schedule{}, m.failErr
	}
	for _, schedule := range m.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return persistence.Schedule{}, persistence.ErrNotFound
}

func (m *memoryStore) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	schedules := make([]persistence.Schedule, 0, len(m.schedules))
	for _, schedule := range m.schedules {
		date := booking.DateOnly(schedule.Date)
		if filter.UnitID != "" && schedule.UnitID != filter.UnitID {
			continue
		}
		if filter.SubscriberID != "" && schedule.SubscriberID != filter.SubscriberID {
			continue
		}
		if filter.Date != nil && !date.Equal(booking.DateOnly(*filter.Date)) {
			continue
		}
		if filter.DateFrom != nil && date.Before(booking.DateOnly(*filter.DateFrom)) {
			continue
		}
		if filter.DateUntil != nil && date.After(booking.DateOnly(*filter.DateUntil)) {
			continue
		}
		schedules = append(schedules, schedule)
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].Date.Equal(schedules[j].Date) {
			return schedules[i].UnitID < schedules[j].UnitID
		}
		return schedules[i].Date.Before(schedules[j].Date)
	})
	return schedules, nil
}

func (m *memoryStore) CountSchedulesBySubscriber(ctx context.Context, subscriberID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, schedule := range m.schedules {
		if schedule.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) CreateBooking(ctx context.Context, schedule persistence.Schedule, log persistence.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createBookingErr != nil {
		return m.createBookingErr
	}
	for _, existing := range m.schedules {
		if existing.UnitID == schedule.UnitID && booking.SameDate(existing.Date, schedule.Date) {
			return persistence.ErrDuplicate
		}
	}
	m.schedules = append(m.schedules, schedule)
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryStore) UpdateBooking(ctx context.Context, schedule persistence.Schedule, log persistence.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.schedules {
		if existing.ID == schedule.ID {
			m.schedules[i] = schedule
			m.logs = append(m.logs, log)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memoryStore) DeleteBooking(ctx context.Context, scheduleID string, log persistence.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.schedules {
		if existing.ID == scheduleID {
			m.schedules = append(m.schedules[:i], m.schedules[i+1:]...)
			m.logs = append(m.logs, log)
			return nil
		}
	}
	return persistence.ErrNotFound
}

// --- LogRepository ---

func (m *memoryStore) ListLogs(ctx context.Context, filter persistence.LogFilter) ([]persistence.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := make([]persistence.Log, 0, len(m.logs))
	for _, entry := range m.logs {
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func (m *memoryStore) CountLogsByUser(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, entry := range m.logs {
		counts[entry.UserID]++
	}
	return counts, nil
}

// --- SessionRepository ---

func (m *memoryStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *memoryStore) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (m *memoryStore) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, session := range m.sessions {
		if session.Token == token {
			revoked := revokedAt
			m.sessions[i].RevokedAt = &revoked
			return m.sessions[i], nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (m *memoryStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.sessions[:0]
	for _, session := range m.sessions {
		if session.ExpiresAt.After(reference) {
			kept = append(kept, session)
		}
	}
	m.sessions = kept
	return nil
}

// testSeason is the booking season most service tests run against: the
// public window 2021-06-03 to 2021-07-10 with the limited early window
// 2021-06-21 to 2021-06-26.
func testSeason() booking.Season {
	return booking.Season{
		Year:         2021,
		PublicStart:  time.Date(2021, time.June, 3, 0, 0, 0, 0, time.UTC),
		PublicEnd:    time.Date(2021, time.July, 10, 0, 0, 0, 0, time.UTC),
		LimitedStart: time.Date(2021, time.June, 21, 0, 0, 0, 0, time.UTC),
		LimitedEnd:   time.Date(2021, time.June, 26, 0, 0, 0, 0, time.UTC),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequenceIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%03d", prefix, counter)
	}
}

func dateAt(month time.Month, day int) time.Time {
	return time.Date(2021, month, day, 0, 0, 0, 0, time.UTC)
}
