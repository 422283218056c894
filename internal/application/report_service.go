package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/campus-reservation/internal/booking"
	"github.com/example/campus-reservation/internal/persistence"
)

// ReportService aggregates per-user reservation activity for administrative
// review. Every operation is restricted to administrators; other principals
// receive not-found so the pages do not reveal their existence.
type ReportService struct {
	users     persistence.UserRepository
	schedules persistence.ScheduleRepository
	units     persistence.UnitRepository
	rooms     persistence.RoomRepository
	logs      persistence.LogRepository
	now       func() time.Time
	logger    *slog.Logger
}

// NewReportService wires dependencies for administrative reporting.
func NewReportService(
	users persistence.UserRepository,
	schedules persistence.ScheduleRepository,
	units persistence.UnitRepository,
	rooms persistence.RoomRepository,
	logs persistence.LogRepository,
	now func() time.Time,
	logger *slog.Logger,
) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		users:     users,
		schedules: schedules,
		units:     units,
		rooms:     rooms,
		logs:      logs,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// UserSummaries counts upcoming reservations, past reservations and audit
// entries for every user, sorted by audit entry count descending.
func (s *ReportService) UserSummaries(ctx context.Context, principal Principal) (UserSummaries, error) {
	if s == nil {
		return UserSummaries{}, fmt.Errorf("ReportService is nil")
	}
	if !principal.IsAdmin {
		return UserSummaries{}, ErrNotFound
	}

	logger := s.loggerWith(ctx, "UserSummaries", "actor_id", principal.UserID)

	userList, err := s.users.ListUsers(ctx)
	if err != nil {
		return UserSummaries{}, err
	}

	today := booking.DateOnly(s.now())
	yesterday := today.AddDate(0, 0, -1)

	upcoming, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{DateFrom: &today})
	if err != nil {
		return UserSummaries{}, err
	}
	past, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{DateUntil: &yesterday})
	if err != nil {
		return UserSummaries{}, err
	}
	logCounts, err := s.logs.CountLogsByUser(ctx)
	if err != nil {
		return UserSummaries{}, err
	}

	summaries := make([]UserSummary, 0, len(userList))
	index := make(map[string]int, len(userList))
	for i, user := range userList {
		index[user.ID] = i
		summaries = append(summaries, UserSummary{
			User:     toUser(user),
			LogCount: logCounts[user.ID],
		})
	}
	for _, schedule := range upcoming {
		if i, ok := index[schedule.SubscriberID]; ok {
			summaries[i].UpcomingCount++
		}
	}
	for _, schedule := range past {
		if i, ok := index[schedule.SubscriberID]; ok {
			summaries[i].PastCount++
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LogCount > summaries[j].LogCount
	})

	numLogs := 0
	for _, count := range logCounts {
		numLogs += count
	}

	logger.InfoContext(ctx, "user summaries computed", "users", len(summaries))

	return UserSummaries{
		Users:            summaries,
		NumUsers:         len(summaries),
		NumSchedules:     len(upcoming),
		NumPastSchedules: len(past),
		NumLogs:          numLogs,
	}, nil
}

// UserActivity returns one user's upcoming reservations, past reservations
// and audit history in list form.
func (s *ReportService) UserActivity(ctx context.Context, principal Principal, userID string) (UserActivity, error) {
	if s == nil {
		return UserActivity{}, fmt.Errorf("ReportService is nil")
	}
	if !principal.IsAdmin {
		return UserActivity{}, ErrNotFound
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return UserActivity{}, ErrNotFound
		}
		return UserActivity{}, err
	}

	today := booking.DateOnly(s.now())
	yesterday := today.AddDate(0, 0, -1)

	upcoming, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		SubscriberID: userID,
		DateFrom:     &today,
	})
	if err != nil {
		return UserActivity{}, err
	}
	past, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		SubscriberID: userID,
		DateUntil:    &yesterday,
	})
	if err != nil {
		return UserActivity{}, err
	}
	logList, err := s.logs.ListLogs(ctx, persistence.LogFilter{UserID: userID})
	if err != nil {
		return UserActivity{}, err
	}

	unitsByID, err := buildUnitIndex(ctx, s.units, s.rooms)
	if err != nil {
		return UserActivity{}, err
	}

	return UserActivity{
		User:     toUser(user),
		Upcoming: toSchedules(upcoming, unitsByID),
		Past:     toSchedules(past, unitsByID),
		Logs:     toLogs(logList, unitsByID),
	}, nil
}

func toUser(user persistence.User) User {
	return User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}
