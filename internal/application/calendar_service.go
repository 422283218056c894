package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/campus-reservation/internal/booking"
	"github.com/example/campus-reservation/internal/persistence"
)

// CalendarService computes the read models for browsing: the weekly
// free-slot overview, the single-day sheet and the per-period slot listing.
type CalendarService struct {
	schedules persistence.ScheduleRepository
	units     persistence.UnitRepository
	rooms     persistence.RoomRepository
	season    booking.Season
	now       func() time.Time
	cache     *overviewCache
	logger    *slog.Logger
}

// NewCalendarService wires dependencies for calendar aggregation.
func NewCalendarService(
	schedules persistence.ScheduleRepository,
	units persistence.UnitRepository,
	rooms persistence.RoomRepository,
	season booking.Season,
	now func() time.Time,
	logger *slog.Logger,
) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		schedules: schedules,
		units:     units,
		rooms:     rooms,
		season:    season,
		now:       now,
		cache:     newOverviewCache(0, 0, now),
		logger:    defaultLogger(logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// WeekOverview aggregates free and booked slot counts for the seven days
// starting at base, one row per period.
//
// A cell's free count starts at the number of units defined for its
// (weekday, period), drops by one for every reservation in the window, and
// is forced to zero for dates that have passed or fall outside the booking
// season. Locked mirrors the season gate only.
func (s *CalendarService) WeekOverview(ctx context.Context, base time.Time) (WeekOverview, error) {
	if s == nil {
		return WeekOverview{}, fmt.Errorf("CalendarService is nil")
	}

	base = booking.DateOnly(base)
	today := booking.DateOnly(s.now())

	cacheKey := overviewCacheKey(base, today)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	logger := s.loggerWith(ctx, "WeekOverview", "base", booking.FormatDate(base))

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = base.AddDate(0, 0, i)
	}
	startDay := days[0]
	endDay := days[len(days)-1]

	// Units per (weekday, period) across all rooms.
	unitList, err := s.units.ListUnits(ctx, persistence.UnitFilter{})
	if err != nil {
		return WeekOverview{}, err
	}
	slotCounts := [7][booking.NumPeriods + 1]int{}
	for _, unit := range unitList {
		if unit.Weekday < 0 || unit.Weekday > 6 || unit.Period < 1 || unit.Period > booking.NumPeriods {
			continue
		}
		slotCounts[unit.Weekday][unit.Period]++
	}

	unitPeriods := make(map[string]int, len(unitList))
	for _, unit := range unitList {
		unitPeriods[unit.ID] = unit.Period
	}

	rows := make([]CalendarRow, 0, booking.NumPeriods)
	cellIndex := make(map[string]*CalendarCell, booking.NumPeriods*7)
	for period := 1; period <= booking.NumPeriods; period++ {
		row := CalendarRow{Period: period, Cells: make([]CalendarCell, len(days))}
		for i, day := range days {
			row.Cells[i] = CalendarCell{
				Date:   day,
				Free:   slotCounts[booking.WeekdayIndex(day)][period],
				Locked: !s.season.IsAvailable(today, day),
			}
			cellIndex[cellKey(period, day)] = &row.Cells[i]
		}
		rows = append(rows, row)
	}

	scheduleList, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		DateFrom:  &startDay,
		DateUntil: &endDay,
	})
	if err != nil {
		return WeekOverview{}, err
	}
	for _, schedule := range scheduleList {
		period, ok := unitPeriods[schedule.UnitID]
		if !ok {
			continue
		}
		cell, ok := cellIndex[cellKey(period, booking.DateOnly(schedule.Date))]
		if !ok {
			continue
		}
		cell.Free--
		cell.Booked++
	}

	for _, row := range rows {
		for i := range row.Cells {
			cell := &row.Cells[i]
			if !cell.Date.After(today) || cell.Locked {
				cell.Free = 0
			}
			if cell.Free < 0 {
				cell.Free = 0
			}
		}
	}

	overview := WeekOverview{
		Days:     days,
		StartDay: startDay,
		EndDay:   endDay,
		Previous: startDay.AddDate(0, 0, -7),
		Next:     endDay.AddDate(0, 0, 1),
		Today:    today,
		Rows:     rows,
	}

	s.cache.Put(cacheKey, overview)
	logger.DebugContext(ctx, "week overview computed", "schedules", len(scheduleList))
	return overview, nil
}

// DaySheet lists every room's five periods for one date, marking each cell
// empty, open for booking, or taken by an existing reservation. Rooms appear
// in capacity order.
func (s *CalendarService) DaySheet(ctx context.Context, date time.Time) (DaySheet, error) {
	if s == nil {
		return DaySheet{}, fmt.Errorf("CalendarService is nil")
	}

	date = booking.DateOnly(date)
	today := booking.DateOnly(s.now())
	weekday := booking.WeekdayIndex(date)

	roomList, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return DaySheet{}, err
	}

	unitList, err := s.units.ListUnits(ctx, persistence.UnitFilter{Weekday: &weekday})
	if err != nil {
		return DaySheet{}, err
	}

	scheduleList, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{Date: &date})
	if err != nil {
		return DaySheet{}, err
	}
	bookedByUnit := make(map[string]persistence.Schedule, len(scheduleList))
	for _, schedule := range scheduleList {
		bookedByUnit[schedule.UnitID] = schedule
	}

	roomsByID := make(map[string]Room, len(roomList))
	rowIndex := make(map[string]int, len(roomList))
	rows := make([]DayRoomRow, 0, len(roomList))
	for i, room := range roomList {
		view := toRoom(room)
		roomsByID[room.ID] = view
		rowIndex[room.ID] = i
		rows = append(rows, DayRoomRow{Room: view, Cells: make([]DayCell, booking.NumPeriods)})
	}

	for _, record := range unitList {
		idx, ok := rowIndex[record.RoomID]
		if !ok || record.Period < 1 || record.Period > booking.NumPeriods {
			continue
		}
		unit := toUnit(record, roomsByID[record.RoomID])
		cell := &rows[idx].Cells[record.Period-1]
		if taken, ok := bookedByUnit[record.ID]; ok {
			schedule := toSchedule(taken, unit)
			cell.Schedule = &schedule
		} else {
			cell.Unit = &unit
		}
	}

	available := s.season.IsAvailable(today, date) && date.After(today)

	return DaySheet{
		Date:      date,
		Today:     today,
		Available: available,
		Rooms:     rows,
	}, nil
}

// PeriodSlots lists the units still open for one date and period, together
// with the reservations already taken for display. Past or unavailable dates
// are hidden from regular users; administrators may still browse them.
func (s *CalendarService) PeriodSlots(ctx context.Context, principal Principal, date time.Time, period int) (PeriodSlots, error) {
	if s == nil {
		return PeriodSlots{}, fmt.Errorf("CalendarService is nil")
	}

	date = booking.DateOnly(date)
	today := booking.DateOnly(s.now())

	if !principal.IsAdmin {
		if !date.After(today) {
			return PeriodSlots{}, ErrNotFound
		}
		if !s.season.IsAvailable(today, date) {
			return PeriodSlots{}, ErrNotFound
		}
	}

	weekday := booking.WeekdayIndex(date)

	// Outside the booking season no unit is offered for the slot.
	openUnits := make([]Unit, 0)
	unitSet := make(map[string]Unit)
	if s.season.IsAvailable(today, date) {
		unitList, err := s.units.ListUnits(ctx, persistence.UnitFilter{Weekday: &weekday, Period: &period})
		if err != nil {
			return PeriodSlots{}, err
		}
		roomList, err := s.rooms.ListRooms(ctx)
		if err != nil {
			return PeriodSlots{}, err
		}
		roomsByID := make(map[string]Room, len(roomList))
		for _, room := range roomList {
			roomsByID[room.ID] = toRoom(room)
		}
		for _, record := range unitList {
			unitSet[record.ID] = toUnit(record, roomsByID[record.RoomID])
		}
	}

	scheduleList, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{Date: &date})
	if err != nil {
		return PeriodSlots{}, err
	}
	booked := make([]Schedule, 0)
	for _, record := range scheduleList {
		unit, ok := unitSet[record.UnitID]
		if !ok {
			continue
		}
		booked = append(booked, toSchedule(record, unit))
		delete(unitSet, record.UnitID)
	}
	for _, unit := range unitSet {
		openUnits = append(openUnits, unit)
	}
	sortUnitsByRoom(openUnits)

	return PeriodSlots{
		Date:      date,
		Period:    period,
		OpenUnits: openUnits,
		Booked:    booked,
	}, nil
}

func sortUnitsByRoom(units []Unit) {
	sort.Slice(units, func(i, j int) bool {
		if units[i].Room.ID == units[j].Room.ID {
			return units[i].ID < units[j].ID
		}
		return units[i].Room.ID < units[j].Room.ID
	})
}

func cellKey(period int, date time.Time) string {
	return fmt.Sprintf("%d/%s", period, booking.FormatDate(date))
}
