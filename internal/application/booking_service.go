package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-reservation/internal/booking"
	"github.com/example/campus-reservation/internal/persistence"
)

// Japanese user-facing messages for booking rule violations.
const (
	msgInvalidDate     = "不正な日時です。"
	msgAlreadyBooked   = "すでに予約されています"
	msgRacedBooking    = "入れ違いで予約がありました"
	msgWindowPassed    = "予約可能期間を過ぎました"
	msgOutsideWindow   = "予約可能期間外です。"
	msgQuotaExceeded   = "予約数が上限に達しているため登録できません"
	msgOverCapacity    = "利用者数が収容人数を越えているため予約できません"
	msgNotYourBooking  = "他者の予約は編集できません"
	msgCourseRequired  = "科目名を入力してください"
	msgFacultyRequired = "設置学部を選択してください"
	msgStudentsInvalid = "利用者数には正の整数を指定してください"
)

// MaxSchedulesPerUser caps how many reservations one user may hold, counting
// past and future reservations alike.
const MaxSchedulesPerUser = 2

// BookingService validates and executes the reservation state transitions:
// create, update and delete, each mirrored by exactly one audit log entry
// written in the same storage transaction.
type BookingService struct {
	schedules   persistence.ScheduleRepository
	units       persistence.UnitRepository
	rooms       persistence.RoomRepository
	logs        persistence.LogRepository
	season      booking.Season
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for reservation transitions.
func NewBookingService(
	schedules persistence.ScheduleRepository,
	units persistence.UnitRepository,
	rooms persistence.RoomRepository,
	logs persistence.LogRepository,
	season booking.Season,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		schedules:   schedules,
		units:       units,
		rooms:       rooms,
		logs:        logs,
		season:      season,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Create books a unit for a date on behalf of the acting principal.
//
// Validations fail fast in a fixed order so the user always sees the first
// violated rule: weekday consistency, double booking, booking window,
// availability season, the per-user quota, then room capacity. The storage
// level UNIQUE(unit, date) index re-checks the double-booking rule inside
// the insert transaction, so a race between two creates surfaces as the
// same user-facing message instead of a duplicate reservation.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (schedule Schedule, err error) {
	if s == nil {
		return Schedule{}, fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "Create",
		"unit_id", params.UnitID,
		"date", booking.FormatDate(params.Date),
		"subscriber_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", schedule.ID).InfoContext(ctx, "booking created")
	}()

	unit, err := s.resolveUnit(ctx, params.UnitID)
	if err != nil {
		return Schedule{}, err
	}

	if vErr := validateBookingInput(params.Input); vErr != nil {
		return Schedule{}, vErr
	}

	date := booking.DateOnly(params.Date)
	today := booking.DateOnly(s.now())

	if booking.WeekdayIndex(date) != unit.Weekday {
		return Schedule{}, newValidationError("date", msgInvalidDate)
	}

	existing, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{UnitID: unit.ID, Date: &date})
	if err != nil {
		return Schedule{}, err
	}
	if len(existing) > 0 {
		return Schedule{}, newValidationError("unit", msgRacedBooking)
	}

	if !date.After(today) {
		return Schedule{}, newValidationError("date", msgWindowPassed)
	}

	if !s.season.IsAvailable(today, date) {
		return Schedule{}, newValidationError("date", msgOutsideWindow)
	}

	count, err := s.schedules.CountSchedulesBySubscriber(ctx, params.Principal.UserID)
	if err != nil {
		return Schedule{}, err
	}
	if count >= MaxSchedulesPerUser {
		return Schedule{}, newValidationError("subscriber", msgQuotaExceeded)
	}

	if params.Input.NumStudents > unit.Room.Capacity {
		return Schedule{}, newValidationError("num_students", msgOverCapacity)
	}

	now := s.now()
	record := persistence.Schedule{
		ID:           s.idGenerator(),
		UnitID:       unit.ID,
		Date:         date,
		Faculty:      string(params.Input.Faculty),
		Course:       strings.TrimSpace(params.Input.Course),
		SubscriberID: params.Principal.UserID,
		NumStudents:  params.Input.NumStudents,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	entry := s.logEntry(params.Principal.UserID, LogTypeCreate, record)

	if err := s.schedules.CreateBooking(ctx, record, entry); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Schedule{}, newValidationError("unit", msgRacedBooking)
		}
		return Schedule{}, err
	}

	return toSchedule(record, unit), nil
}

// GetBookingForm prepares the reservation form for one unit and date. The
// page itself is hidden (not-found) when the date's weekday does not match
// the unit, the date has passed, or the season makes it unavailable; a slot
// that is merely taken or a quota already reached still renders, with the
// reason attached.
func (s *BookingService) GetBookingForm(ctx context.Context, principal Principal, unitID string, date time.Time) (BookingForm, error) {
	if s == nil {
		return BookingForm{}, fmt.Errorf("BookingService is nil")
	}

	unit, err := s.resolveUnit(ctx, unitID)
	if err != nil {
		return BookingForm{}, err
	}

	date = booking.DateOnly(date)
	today := booking.DateOnly(s.now())

	if booking.WeekdayIndex(date) != unit.Weekday {
		return BookingForm{}, ErrNotFound
	}
	if !date.After(today) {
		return BookingForm{}, ErrNotFound
	}
	if !s.season.IsAvailable(today, date) {
		return BookingForm{}, ErrNotFound
	}

	form := BookingForm{
		Unit:      unit,
		Date:      date,
		CanBook:   true,
		Faculties: Faculties(),
	}

	existing, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{UnitID: unit.ID, Date: &date})
	if err != nil {
		return BookingForm{}, err
	}
	if len(existing) > 0 {
		taken := toSchedule(existing[0], unit)
		form.CanBook = false
		form.Message = msgAlreadyBooked
		form.Existing = &taken
		return form, nil
	}

	count, err := s.schedules.CountSchedulesBySubscriber(ctx, principal.UserID)
	if err != nil {
		return BookingForm{}, err
	}
	if count >= MaxSchedulesPerUser {
		form.CanBook = false
		form.Message = msgQuotaExceeded
	}

	return form, nil
}

// Update edits the mutable fields of a reservation.
//
// Only the subscriber may submit changes; admins may open the edit view but
// their submissions are rejected with a user-facing message, matching the
// viewing rules. Once the reservation date has passed the record is
// terminal and every mutation is refused.
func (s *BookingService) Update(ctx context.Context, params UpdateBookingParams) (schedule Schedule, err error) {
	if s == nil {
		return Schedule{}, fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "Update",
		"schedule_id", params.ScheduleID,
		"actor_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking update rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	existing, unit, err := s.loadSchedule(ctx, params.ScheduleID)
	if err != nil {
		return Schedule{}, err
	}

	// Visibility gate: outsiders must not learn the reservation exists.
	if existing.SubscriberID != params.Principal.UserID && !params.Principal.IsAdmin {
		return Schedule{}, ErrNotFound
	}

	if vErr := validateBookingInput(params.Input); vErr != nil {
		return Schedule{}, vErr
	}

	today := booking.DateOnly(s.now())
	if !booking.DateOnly(existing.Date).After(today) {
		return Schedule{}, newValidationError("date", msgWindowPassed)
	}

	if params.Input.NumStudents > unit.Room.Capacity {
		return Schedule{}, newValidationError("num_students", msgOverCapacity)
	}

	if existing.SubscriberID != params.Principal.UserID {
		return Schedule{}, newValidationError("subscriber", msgNotYourBooking)
	}

	updated := existing
	updated.Faculty = string(params.Input.Faculty)
	updated.Course = strings.TrimSpace(params.Input.Course)
	updated.NumStudents = params.Input.NumStudents
	updated.UpdatedAt = s.now()

	// The audit entry snapshots the values after the edit.
	entry := s.logEntry(params.Principal.UserID, LogTypeUpdate, updated)

	if err := s.schedules.UpdateBooking(ctx, updated, entry); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Schedule{}, ErrNotFound
		}
		return Schedule{}, err
	}

	return toSchedule(updated, unit), nil
}

// Delete removes a reservation. Allowed only while the date is still in the
// future and only for the subscriber; everyone else sees not-found.
func (s *BookingService) Delete(ctx context.Context, principal Principal, scheduleID string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "Delete",
		"schedule_id", scheduleID,
		"actor_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking delete rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	existing, _, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}

	today := booking.DateOnly(s.now())
	if !booking.DateOnly(existing.Date).After(today) {
		return ErrNotFound
	}
	if existing.SubscriberID != principal.UserID {
		return ErrNotFound
	}

	entry := s.logEntry(principal.UserID, LogTypeDelete, existing)

	if err := s.schedules.DeleteBooking(ctx, scheduleID, entry); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Get returns the edit-view read model for one reservation. Only the
// subscriber and administrators may see it; the form becomes read-only once
// the date has passed.
func (s *BookingService) Get(ctx context.Context, principal Principal, scheduleID string) (ScheduleDetail, error) {
	if s == nil {
		return ScheduleDetail{}, fmt.Errorf("BookingService is nil")
	}

	record, unit, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return ScheduleDetail{}, err
	}

	if record.SubscriberID != principal.UserID && !principal.IsAdmin {
		return ScheduleDetail{}, ErrNotFound
	}

	today := booking.DateOnly(s.now())
	canEdit := booking.DateOnly(record.Date).After(today) && record.SubscriberID == principal.UserID

	return ScheduleDetail{Schedule: toSchedule(record, unit), CanEdit: canEdit}, nil
}

// MyPage groups the principal's upcoming reservations, past reservations and
// audit history.
func (s *BookingService) MyPage(ctx context.Context, principal Principal) (MyPageView, error) {
	if s == nil {
		return MyPageView{}, fmt.Errorf("BookingService is nil")
	}

	today := booking.DateOnly(s.now())
	yesterday := today.AddDate(0, 0, -1)

	upcoming, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		SubscriberID: principal.UserID,
		DateFrom:     &today,
	})
	if err != nil {
		return MyPageView{}, err
	}

	past, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		SubscriberID: principal.UserID,
		DateUntil:    &yesterday,
	})
	if err != nil {
		return MyPageView{}, err
	}

	logs, err := s.logs.ListLogs(ctx, persistence.LogFilter{UserID: principal.UserID})
	if err != nil {
		return MyPageView{}, err
	}

	unitsByID, err := s.unitIndex(ctx)
	if err != nil {
		return MyPageView{}, err
	}

	return MyPageView{
		Upcoming: toSchedules(upcoming, unitsByID),
		Past:     toSchedules(past, unitsByID),
		Logs:     toLogs(logs, unitsByID),
	}, nil
}

// --- helpers shared with the other services ---

func (s *BookingService) resolveUnit(ctx context.Context, unitID string) (Unit, error) {
	unit, err := s.units.GetUnit(ctx, unitID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Unit{}, ErrNotFound
		}
		return Unit{}, err
	}
	room, err := s.rooms.GetRoom(ctx, unit.RoomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Unit{}, ErrNotFound
		}
		return Unit{}, err
	}
	return toUnit(unit, toRoom(room)), nil
}

func (s *BookingService) loadSchedule(ctx context.Context, scheduleID string) (persistence.Schedule, Unit, error) {
	record, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Schedule{}, Unit{}, ErrNotFound
		}
		return persistence.Schedule{}, Unit{}, err
	}
	unit, err := s.resolveUnit(ctx, record.UnitID)
	if err != nil {
		return persistence.Schedule{}, Unit{}, err
	}
	return record, unit, nil
}

func (s *BookingService) unitIndex(ctx context.Context) (map[string]Unit, error) {
	return buildUnitIndex(ctx, s.units, s.rooms)
}

func (s *BookingService) logEntry(userID string, logType LogType, record persistence.Schedule) persistence.Log {
	return persistence.Log{
		ID:          s.idGenerator(),
		UserID:      userID,
		CreatedAt:   s.now(),
		Type:        string(logType),
		UnitID:      record.UnitID,
		Date:        record.Date,
		Faculty:     record.Faculty,
		Course:      record.Course,
		NumStudents: record.NumStudents,
	}
}

func validateBookingInput(input BookingInput) *ValidationError {
	if strings.TrimSpace(input.Course) == "" {
		return newValidationError("course", msgCourseRequired)
	}
	if !input.Faculty.Valid() {
		return newValidationError("faculty", msgFacultyRequired)
	}
	if input.NumStudents <= 0 {
		return newValidationError("num_students", msgStudentsInvalid)
	}
	return nil
}

func buildUnitIndex(ctx context.Context, units persistence.UnitRepository, rooms persistence.RoomRepository) (map[string]Unit, error) {
	roomList, err := rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	roomsByID := make(map[string]Room, len(roomList))
	for _, room := range roomList {
		roomsByID[room.ID] = toRoom(room)
	}

	unitList, err := units.ListUnits(ctx, persistence.UnitFilter{})
	if err != nil {
		return nil, err
	}
	index := make(map[string]Unit, len(unitList))
	for _, unit := range unitList {
		index[unit.ID] = toUnit(unit, roomsByID[unit.RoomID])
	}
	return index, nil
}

func toRoom(room persistence.Room) Room {
	return Room{ID: room.ID, Name: room.Name, Capacity: room.Capacity}
}

func toUnit(unit persistence.Unit, room Room) Unit {
	return Unit{ID: unit.ID, Room: room, Weekday: unit.Weekday, Period: unit.Period}
}

func toSchedule(record persistence.Schedule, unit Unit) Schedule {
	return Schedule{
		ID:           record.ID,
		Unit:         unit,
		Date:         booking.DateOnly(record.Date),
		Faculty:      Faculty(record.Faculty),
		Course:       record.Course,
		SubscriberID: record.SubscriberID,
		NumStudents:  record.NumStudents,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func toSchedules(records []persistence.Schedule, unitsByID map[string]Unit) []Schedule {
	schedules := make([]Schedule, 0, len(records))
	for _, record := range records {
		schedules = append(schedules, toSchedule(record, unitsByID[record.UnitID]))
	}
	return schedules
}

func toLogs(records []persistence.Log, unitsByID map[string]Unit) []Log {
	logs := make([]Log, 0, len(records))
	for _, record := range records {
		logs = append(logs, Log{
			ID:          record.ID,
			UserID:      record.UserID,
			CreatedAt:   record.CreatedAt,
			Type:        LogType(record.Type),
			Unit:        unitsByID[record.UnitID],
			Date:        booking.DateOnly(record.Date),
			Faculty:     Faculty(record.Faculty),
			Course:      record.Course,
			NumStudents: record.NumStudents,
		})
	}
	return logs
}
