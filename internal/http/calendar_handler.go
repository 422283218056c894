package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/booking"
)

type calendarService interface {
	WeekOverview(ctx context.Context, base time.Time) (application.WeekOverview, error)
	DaySheet(ctx context.Context, date time.Time) (application.DaySheet, error)
	PeriodSlots(ctx context.Context, principal application.Principal, date time.Time, period int) (application.PeriodSlots, error)
}

// CalendarHandler serves the browsing read models: the weekly overview, the
// single-day sheet and the per-period slot listing. Month/day path segments
// are resolved against the configured season year.
type CalendarHandler struct {
	service    calendarService
	seasonYear int
	now        func() time.Time
	responder  responder
	logger     *slog.Logger
}

func NewCalendarHandler(service calendarService, seasonYear int, now func() time.Time, logger *slog.Logger) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &CalendarHandler{
		service:    service,
		seasonYear: seasonYear,
		now:        now,
		responder:  newResponder(base),
		logger:     base,
	}
}

func (h *CalendarHandler) resolveDate(month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(h.seasonYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// Overview handles GET /calendar and GET /calendar/{month}/{day}.
func (h *CalendarHandler) Overview(w http.ResponseWriter, r *http.Request, month, day int) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	base := booking.DateOnly(h.now())
	if month != 0 || day != 0 {
		resolved, ok := h.resolveDate(month, day)
		if !ok {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDatePath)
			return
		}
		base = resolved
	}

	overview, err := h.service.WeekOverview(r.Context(), base)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeekOverviewDTO(overview))
}

// Day handles GET /days/{month}/{day}.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request, month, day int) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := h.resolveDate(month, day)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDatePath)
		return
	}

	sheet, err := h.service.DaySheet(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDaySheetDTO(sheet))
}

// Period handles GET /days/{month}/{day}/periods/{period}.
func (h *CalendarHandler) Period(w http.ResponseWriter, r *http.Request, month, day, period int) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := h.resolveDate(month, day)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDatePath)
		return
	}
	if period < 1 || period > booking.NumPeriods {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPeriodPath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	slots, err := h.service.PeriodSlots(r.Context(), principal, date, period)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPeriodSlotsDTO(slots))
}

type weekOverviewDTO struct {
	Days     []string         `json:"days"`
	StartDay string           `json:"start_day"`
	EndDay   string           `json:"end_day"`
	Previous string           `json:"previous"`
	Next     string           `json:"next"`
	Today    string           `json:"today"`
	Rows     []calendarRowDTO `json:"rows"`
}

type calendarRowDTO struct {
	Period int               `json:"period"`
	Cells  []calendarCellDTO `json:"cells"`
}

type calendarCellDTO struct {
	Date   string `json:"date"`
	Free   int    `json:"free"`
	Booked int    `json:"booked"`
	Locked bool   `json:"locked"`
}

func toWeekOverviewDTO(overview application.WeekOverview) weekOverviewDTO {
	days := make([]string, 0, len(overview.Days))
	for _, day := range overview.Days {
		days = append(days, booking.FormatDate(day))
	}

	rows := make([]calendarRowDTO, 0, len(overview.Rows))
	for _, row := range overview.Rows {
		cells := make([]calendarCellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, calendarCellDTO{
				Date:   booking.FormatDate(cell.Date),
				Free:   cell.Free,
				Booked: cell.Booked,
				Locked: cell.Locked,
			})
		}
		rows = append(rows, calendarRowDTO{Period: row.Period, Cells: cells})
	}

	return weekOverviewDTO{
		Days:     days,
		StartDay: booking.FormatDate(overview.StartDay),
		EndDay:   booking.FormatDate(overview.EndDay),
		Previous: booking.FormatDate(overview.Previous),
		Next:     booking.FormatDate(overview.Next),
		Today:    booking.FormatDate(overview.Today),
		Rows:     rows,
	}
}

type daySheetDTO struct {
	Date      string          `json:"date"`
	Today     string          `json:"today"`
	Available bool            `json:"available"`
	Rooms     []dayRoomRowDTO `json:"rooms"`
}

type dayRoomRowDTO struct {
	Room  roomDTO      `json:"room"`
	Cells []dayCellDTO `json:"cells"`
}

type dayCellDTO struct {
	Unit     *unitDTO     `json:"unit,omitempty"`
	Schedule *scheduleDTO `json:"schedule,omitempty"`
}

func toDaySheetDTO(sheet application.DaySheet) daySheetDTO {
	rooms := make([]dayRoomRowDTO, 0, len(sheet.Rooms))
	for _, row := range sheet.Rooms {
		cells := make([]dayCellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			dto := dayCellDTO{}
			if cell.Unit != nil {
				unit := toUnitDTO(*cell.Unit)
				dto.Unit = &unit
			}
			if cell.Schedule != nil {
				schedule := toScheduleDTO(*cell.Schedule)
				dto.Schedule = &schedule
			}
			cells = append(cells, dto)
		}
		rooms = append(rooms, dayRoomRowDTO{Room: toRoomDTO(row.Room), Cells: cells})
	}

	return daySheetDTO{
		Date:      booking.FormatDate(sheet.Date),
		Today:     booking.FormatDate(sheet.Today),
		Available: sheet.Available,
		Rooms:     rooms,
	}
}

type periodSlotsDTO struct {
	Date      string        `json:"date"`
	Period    int           `json:"period"`
	OpenUnits []unitDTO     `json:"open_units"`
	Booked    []scheduleDTO `json:"booked"`
}

func toPeriodSlotsDTO(slots application.PeriodSlots) periodSlotsDTO {
	open := make([]unitDTO, 0, len(slots.OpenUnits))
	for _, unit := range slots.OpenUnits {
		open = append(open, toUnitDTO(unit))
	}
	booked := make([]scheduleDTO, 0, len(slots.Booked))
	for _, schedule := range slots.Booked {
		booked = append(booked, toScheduleDTO(schedule))
	}
	return periodSlotsDTO{
		Date:      booking.FormatDate(slots.Date),
		Period:    slots.Period,
		OpenUnits: open,
		Booked:    booked,
	}
}
