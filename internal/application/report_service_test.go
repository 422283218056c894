package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-reservation/internal/persistence"
)

var reportAdmin = Principal{UserID: "admin-1", Email: "admin@keio.jp", IsAdmin: true}

func newReportTestStore() *memoryStore {
	store := newMemoryStore()
	store.addUser(persistence.User{ID: "user-1", Email: "user-1@keio.jp", DisplayName: "利用者1"})
	store.addUser(persistence.User{ID: "user-2", Email: "user-2@keio.jp", DisplayName: "利用者2"})
	store.addRoom(persistence.Room{ID: "room-1", Name: "教室1", Capacity: 30})
	store.addUnit(persistence.Unit{ID: "unit-1", RoomID: "room-1", Weekday: 1, Period: 1})
	return store
}

func newReportService(store *memoryStore, today time.Time) *ReportService {
	return NewReportService(store, store, store, store, store, fixedClock(today), testLogger())
}

func TestReportServiceUserSummaries(t *testing.T) {
	store := newReportTestStore()
	// user-1: one upcoming, one past, three audit entries.
	store.addSchedule(persistence.Schedule{ID: "schedule-1", UnitID: "unit-1", Date: dateAt(time.June, 22), SubscriberID: "user-1"})
	store.addSchedule(persistence.Schedule{ID: "schedule-2", UnitID: "unit-1", Date: dateAt(time.May, 18), SubscriberID: "user-1"})
	store.addLog(persistence.Log{ID: "log-1", UserID: "user-1", Type: string(LogTypeCreate), UnitID: "unit-1"})
	store.addLog(persistence.Log{ID: "log-2", UserID: "user-1", Type: string(LogTypeDelete), UnitID: "unit-1"})
	store.addLog(persistence.Log{ID: "log-3", UserID: "user-1", Type: string(LogTypeCreate), UnitID: "unit-1"})
	// user-2: one upcoming, one audit entry.
	store.addSchedule(persistence.Schedule{ID: "schedule-3", UnitID: "unit-1", Date: dateAt(time.June, 29), SubscriberID: "user-2"})
	store.addLog(persistence.Log{ID: "log-4", UserID: "user-2", Type: string(LogTypeCreate), UnitID: "unit-1"})

	service := newReportService(store, dateAt(time.June, 21))

	report, err := service.UserSummaries(context.Background(), reportAdmin)
	if err != nil {
		t.Fatalf("UserSummaries() error = %v", err)
	}

	if report.NumUsers != 2 {
		t.Errorf("report.NumUsers = %d, want 2", report.NumUsers)
	}
	if report.NumSchedules != 2 || report.NumPastSchedules != 1 {
		t.Errorf("schedule totals = %d upcoming / %d past, want 2 / 1", report.NumSchedules, report.NumPastSchedules)
	}
	if report.NumLogs != 4 {
		t.Errorf("report.NumLogs = %d, want 4", report.NumLogs)
	}

	if len(report.Users) != 2 {
		t.Fatalf("report rows = %d, want 2", len(report.Users))
	}
	// Sorted by audit entry count descending, so user-1 comes first.
	first, second := report.Users[0], report.Users[1]
	if first.User.ID != "user-1" || second.User.ID != "user-2" {
		t.Fatalf("row order = %s, %s; want user-1, user-2", first.User.ID, second.User.ID)
	}
	if first.UpcomingCount != 1 || first.PastCount != 1 || first.LogCount != 3 {
		t.Errorf("user-1 row = %+v, want 1 upcoming, 1 past, 3 logs", first)
	}
	if second.UpcomingCount != 1 || second.PastCount != 0 || second.LogCount != 1 {
		t.Errorf("user-2 row = %+v, want 1 upcoming, 0 past, 1 log", second)
	}
}

func TestReportServiceUserSummariesRequiresAdmin(t *testing.T) {
	store := newReportTestStore()
	service := newReportService(store, dateAt(time.June, 21))

	_, err := service.UserSummaries(context.Background(), principalFor("user-1"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserSummaries() error = %v, want ErrNotFound", err)
	}
}

func TestReportServiceUserActivity(t *testing.T) {
	store := newReportTestStore()
	store.addSchedule(persistence.Schedule{ID: "schedule-1", UnitID: "unit-1", Date: dateAt(time.June, 22), SubscriberID: "user-1"})
	store.addSchedule(persistence.Schedule{ID: "schedule-2", UnitID: "unit-1", Date: dateAt(time.May, 18), SubscriberID: "user-1"})
	store.addSchedule(persistence.Schedule{ID: "schedule-3", UnitID: "unit-1", Date: dateAt(time.June, 29), SubscriberID: "user-2"})
	store.addLog(persistence.Log{ID: "log-1", UserID: "user-1", Type: string(LogTypeCreate), UnitID: "unit-1", Date: dateAt(time.June, 22)})
	store.addLog(persistence.Log{ID: "log-2", UserID: "user-2", Type: string(LogTypeCreate), UnitID: "unit-1", Date: dateAt(time.June, 29)})

	service := newReportService(store, dateAt(time.June, 21))

	activity, err := service.UserActivity(context.Background(), reportAdmin, "user-1")
	if err != nil {
		t.Fatalf("UserActivity() error = %v", err)
	}

	if activity.User.ID != "user-1" || activity.User.DisplayName != "利用者1" {
		t.Errorf("activity.User = %+v, want user-1", activity.User)
	}
	if len(activity.Upcoming) != 1 || activity.Upcoming[0].ID != "schedule-1" {
		t.Errorf("activity.Upcoming = %+v, want schedule-1 only", activity.Upcoming)
	}
	if len(activity.Past) != 1 || activity.Past[0].ID != "schedule-2" {
		t.Errorf("activity.Past = %+v, want schedule-2 only", activity.Past)
	}
	if len(activity.Logs) != 1 || activity.Logs[0].ID != "log-1" {
		t.Errorf("activity.Logs = %+v, want log-1 only", activity.Logs)
	}
	if activity.Upcoming[0].Unit.Room.Name != "教室1" {
		t.Errorf("unit join missing: %+v", activity.Upcoming[0].Unit)
	}
}

func TestReportServiceUserActivityRejections(t *testing.T) {
	store := newReportTestStore()
	service := newReportService(store, dateAt(time.June, 21))

	if _, err := service.UserActivity(context.Background(), principalFor("user-1"), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserActivity() as non-admin error = %v, want ErrNotFound", err)
	}
	if _, err := service.UserActivity(context.Background(), reportAdmin, "user-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserActivity() for unknown user error = %v, want ErrNotFound", err)
	}
}
