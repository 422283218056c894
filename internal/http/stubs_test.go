package http

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/booking"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testPrincipal() application.Principal {
	return application.Principal{UserID: "user-1", Email: "user-1@keio.jp"}
}

func adminPrincipal() application.Principal {
	return application.Principal{UserID: "admin-1", Email: "admin@keio.jp", IsAdmin: true}
}

func sampleUnit() application.Unit {
	return application.Unit{
		ID:      "unit-1",
		Room:    application.Room{ID: "room-1", Name: "教室1", Capacity: 30},
		Weekday: 1,
		Period:  1,
	}
}

func sampleSchedule() application.Schedule {
	created := time.Date(2021, time.June, 1, 9, 0, 0, 0, time.UTC)
	return application.Schedule{
		ID:           "schedule-1",
		Unit:         sampleUnit(),
		Date:         booking.Date(2021, time.June, 22),
		Faculty:      application.FacultyLetters,
		Course:       "情報処理",
		SubscriberID: "user-1",
		NumStudents:  25,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

type stubAuthService struct {
	authenticateFn func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	revokeFn       func(ctx context.Context, token string) error
}

func (s *stubAuthService) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authenticateFn == nil {
		return application.AuthenticateResult{}, nil
	}
	return s.authenticateFn(ctx, params)
}

func (s *stubAuthService) RevokeSession(ctx context.Context, token string) error {
	if s.revokeFn == nil {
		return nil
	}
	return s.revokeFn(ctx, token)
}

type stubSessionValidator struct {
	validateFn func(ctx context.Context, token string) (application.Principal, error)
}

func (s *stubSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if s.validateFn == nil {
		return testPrincipal(), nil
	}
	return s.validateFn(ctx, token)
}

type stubBookingService struct {
	createFn func(ctx context.Context, params application.CreateBookingParams) (application.Schedule, error)
	formFn   func(ctx context.Context, principal application.Principal, unitID string, date time.Time) (application.BookingForm, error)
	getFn    func(ctx context.Context, principal application.Principal, scheduleID string) (application.ScheduleDetail, error)
	updateFn func(ctx context.Context, params application.UpdateBookingParams) (application.Schedule, error)
	deleteFn func(ctx context.Context, principal application.Principal, scheduleID string) error
	myPageFn func(ctx context.Context, principal application.Principal) (application.MyPageView, error)
}

func (s *stubBookingService) Create(ctx context.Context, params application.CreateBookingParams) (application.Schedule, error) {
	if s.createFn == nil {
		return sampleSchedule(), nil
	}
	return s.createFn(ctx, params)
}

func (s *stubBookingService) GetBookingForm(ctx context.Context, principal application.Principal, unitID string, date time.Time) (application.BookingForm, error) {
	if s.formFn == nil {
		return application.BookingForm{Unit: sampleUnit(), Date: date, CanBook: true, Faculties: application.Faculties()}, nil
	}
	return s.formFn(ctx, principal, unitID, date)
}

func (s *stubBookingService) Get(ctx context.Context, principal application.Principal, scheduleID string) (application.ScheduleDetail, error) {
	if s.getFn == nil {
		return application.ScheduleDetail{Schedule: sampleSchedule(), CanEdit: true}, nil
	}
	return s.getFn(ctx, principal, scheduleID)
}

func (s *stubBookingService) Update(ctx context.Context, params application.UpdateBookingParams) (application.Schedule, error) {
	if s.updateFn == nil {
		return sampleSchedule(), nil
	}
	return s.updateFn(ctx, params)
}

func (s *stubBookingService) Delete(ctx context.Context, principal application.Principal, scheduleID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, principal, scheduleID)
}

func (s *stubBookingService) MyPage(ctx context.Context, principal application.Principal) (application.MyPageView, error) {
	if s.myPageFn == nil {
		return application.MyPageView{Upcoming: []application.Schedule{sampleSchedule()}}, nil
	}
	return s.myPageFn(ctx, principal)
}

type stubCalendarService struct {
	weekFn   func(ctx context.Context, base time.Time) (application.WeekOverview, error)
	dayFn    func(ctx context.Context, date time.Time) (application.DaySheet, error)
	periodFn func(ctx context.Context, principal application.Principal, date time.Time, period int) (application.PeriodSlots, error)
}

func (s *stubCalendarService) WeekOverview(ctx context.Context, base time.Time) (application.WeekOverview, error) {
	if s.weekFn == nil {
		return application.WeekOverview{StartDay: base}, nil
	}
	return s.weekFn(ctx, base)
}

func (s *stubCalendarService) DaySheet(ctx context.Context, date time.Time) (application.DaySheet, error) {
	if s.dayFn == nil {
		return application.DaySheet{Date: date}, nil
	}
	return s.dayFn(ctx, date)
}

func (s *stubCalendarService) PeriodSlots(ctx context.Context, principal application.Principal, date time.Time, period int) (application.PeriodSlots, error) {
	if s.periodFn == nil {
		return application.PeriodSlots{Date: date, Period: period}, nil
	}
	return s.periodFn(ctx, principal, date, period)
}

type stubReportService struct {
	summariesFn func(ctx context.Context, principal application.Principal) (application.UserSummaries, error)
	activityFn  func(ctx context.Context, principal application.Principal, userID string) (application.UserActivity, error)
}

func (s *stubReportService) UserSummaries(ctx context.Context, principal application.Principal) (application.UserSummaries, error) {
	if s.summariesFn == nil {
		return application.UserSummaries{}, nil
	}
	return s.summariesFn(ctx, principal)
}

func (s *stubReportService) UserActivity(ctx context.Context, principal application.Principal, userID string) (application.UserActivity, error) {
	if s.activityFn == nil {
		return application.UserActivity{}, nil
	}
	return s.activityFn(ctx, principal, userID)
}
