package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/booking"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (application.Schedule, error)
	GetBookingForm(ctx context.Context, principal application.Principal, unitID string, date time.Time) (application.BookingForm, error)
	Get(ctx context.Context, principal application.Principal, scheduleID string) (application.ScheduleDetail, error)
	Update(ctx context.Context, params application.UpdateBookingParams) (application.Schedule, error)
	Delete(ctx context.Context, principal application.Principal, scheduleID string) error
	MyPage(ctx context.Context, principal application.Principal) (application.MyPageView, error)
}

// BookingHandler serves reservation reads and mutations. The month and day
// query parameters on the unit routes resolve against the season year, the
// same way the calendar paths do.
type BookingHandler struct {
	service    bookingService
	seasonYear int
	responder  responder
	logger     *slog.Logger
}

func NewBookingHandler(service bookingService, seasonYear int, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{
		service:    service,
		seasonYear: seasonYear,
		responder:  newResponder(base),
		logger:     base,
	}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) dateFromQuery(r *http.Request) (time.Time, bool) {
	month, errMonth := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("month")))
	day, errDay := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("day")))
	if errMonth != nil || errDay != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(h.seasonYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// Form handles GET /units/{id}/bookings?month=&day=.
func (h *BookingHandler) Form(w http.ResponseWriter, r *http.Request, unitID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(unitID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}
	date, ok := h.dateFromQuery(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDatePath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	form, err := h.service.GetBookingForm(r.Context(), principal, unitID, date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingFormDTO(form))
}

// Create handles POST /units/{id}/bookings?month=&day=.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, unitID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(unitID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}
	date, ok := h.dateFromQuery(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDatePath)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal: principal,
		UnitID:    unitID,
		Date:      date,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "schedule_id", schedule.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request, scheduleID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	detail, err := h.service.Get(r.Context(), principal, scheduleID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleDetailResponse{
		Schedule:  toScheduleDTO(detail.Schedule),
		CanEdit:   detail.CanEdit,
		Faculties: facultyNames(),
	})
}

// Update handles PUT /bookings/{id}.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, scheduleID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.Update(r.Context(), application.UpdateBookingParams{
		Principal:  principal,
		ScheduleID: scheduleID,
		Input:      req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Update", "schedule_id", schedule.ID).InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

// Delete handles DELETE /bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, scheduleID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), principal, scheduleID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "schedule_id", scheduleID).InfoContext(r.Context(), "reservation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// MyPage handles GET /me.
func (h *BookingHandler) MyPage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	view, err := h.service.MyPage(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, myPageResponse{
		Upcoming: toScheduleDTOs(view.Upcoming),
		Past:     toScheduleDTOs(view.Past),
		Logs:     toLogDTOs(view.Logs),
	})
}

type bookingRequest struct {
	Course      string `json:"course"`
	Faculty     string `json:"faculty"`
	NumStudents int    `json:"num_students"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		Course:      strings.TrimSpace(r.Course),
		Faculty:     application.Faculty(strings.TrimSpace(r.Faculty)),
		NumStudents: r.NumStudents,
	}
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}

type scheduleDetailResponse struct {
	Schedule  scheduleDTO `json:"schedule"`
	CanEdit   bool        `json:"can_edit"`
	Faculties []string    `json:"faculties"`
}

type bookingFormDTO struct {
	Unit      unitDTO      `json:"unit"`
	Date      string       `json:"date"`
	CanBook   bool         `json:"can_book"`
	Message   string       `json:"message,omitempty"`
	Existing  *scheduleDTO `json:"existing,omitempty"`
	Faculties []string     `json:"faculties"`
}

func toBookingFormDTO(form application.BookingForm) bookingFormDTO {
	dto := bookingFormDTO{
		Unit:    toUnitDTO(form.Unit),
		Date:    booking.FormatDate(form.Date),
		CanBook: form.CanBook,
		Message: form.Message,
	}
	if form.Existing != nil {
		existing := toScheduleDTO(*form.Existing)
		dto.Existing = &existing
	}
	dto.Faculties = make([]string, 0, len(form.Faculties))
	for _, faculty := range form.Faculties {
		dto.Faculties = append(dto.Faculties, string(faculty))
	}
	return dto
}

type myPageResponse struct {
	Upcoming []scheduleDTO `json:"upcoming"`
	Past     []scheduleDTO `json:"past"`
	Logs     []logDTO      `json:"logs"`
}

type roomDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{ID: room.ID, Name: room.Name, Capacity: room.Capacity}
}

type unitDTO struct {
	ID      string  `json:"id"`
	Room    roomDTO `json:"room"`
	Weekday int     `json:"weekday"`
	Period  int     `json:"period"`
}

func toUnitDTO(unit application.Unit) unitDTO {
	return unitDTO{
		ID:      unit.ID,
		Room:    toRoomDTO(unit.Room),
		Weekday: unit.Weekday,
		Period:  unit.Period,
	}
}

type scheduleDTO struct {
	ID           string  `json:"id"`
	Unit         unitDTO `json:"unit"`
	Date         string  `json:"date"`
	Faculty      string  `json:"faculty"`
	Course       string  `json:"course"`
	SubscriberID string  `json:"subscriber_id"`
	NumStudents  int     `json:"num_students"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toScheduleDTO(schedule application.Schedule) scheduleDTO {
	return scheduleDTO{
		ID:           schedule.ID,
		Unit:         toUnitDTO(schedule.Unit),
		Date:         booking.FormatDate(schedule.Date),
		Faculty:      string(schedule.Faculty),
		Course:       schedule.Course,
		SubscriberID: schedule.SubscriberID,
		NumStudents:  schedule.NumStudents,
		CreatedAt:    schedule.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    schedule.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toScheduleDTOs(schedules []application.Schedule) []scheduleDTO {
	out := make([]scheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		out = append(out, toScheduleDTO(schedule))
	}
	return out
}

type logDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CreatedAt   string  `json:"created_at"`
	Type        string  `json:"type"`
	Unit        unitDTO `json:"unit"`
	Date        string  `json:"date"`
	Faculty     string  `json:"faculty"`
	Course      string  `json:"course"`
	NumStudents int     `json:"num_students"`
}

func toLogDTO(entry application.Log) logDTO {
	return logDTO{
		ID:          entry.ID,
		UserID:      entry.UserID,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		Type:        string(entry.Type),
		Unit:        toUnitDTO(entry.Unit),
		Date:        booking.FormatDate(entry.Date),
		Faculty:     string(entry.Faculty),
		Course:      entry.Course,
		NumStudents: entry.NumStudents,
	}
}

func toLogDTOs(entries []application.Log) []logDTO {
	out := make([]logDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toLogDTO(entry))
	}
	return out
}

func facultyNames() []string {
	faculties := application.Faculties()
	out := make([]string, 0, len(faculties))
	for _, faculty := range faculties {
		out = append(out, string(faculty))
	}
	return out
}
