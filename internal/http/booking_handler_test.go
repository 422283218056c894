package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/booking"
)

func requestWithPrincipal(method, target string, body string, principal application.Principal) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(ContextWithPrincipal(req.Context(), principal))
}

func TestBookingHandlerCreate(t *testing.T) {
	var got application.CreateBookingParams
	service := &stubBookingService{
		createFn: func(ctx context.Context, params application.CreateBookingParams) (application.Schedule, error) {
			got = params
			return sampleSchedule(), nil
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodPost, "/units/unit-1/bookings?month=6&day=22",
		`{"course":"情報処理","faculty":"文学部","num_students":25}`, testPrincipal())
	rec := httptest.NewRecorder()
	handler.Create(rec, req, "unit-1")

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if got.UnitID != "unit-1" || got.Principal.UserID != "user-1" {
		t.Errorf("params = %+v, want unit-1 booked by user-1", got)
	}
	// Month and day resolve against the season year.
	if !got.Date.Equal(booking.Date(2021, time.June, 22)) {
		t.Errorf("params.Date = %v, want 2021-06-22", got.Date)
	}
	if got.Input.Course != "情報処理" || got.Input.Faculty != application.FacultyLetters || got.Input.NumStudents != 25 {
		t.Errorf("params.Input = %+v, want decoded booking fields", got.Input)
	}

	var body scheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Schedule.ID != "schedule-1" || body.Schedule.Date != "2021-06-22" {
		t.Errorf("body.Schedule = %+v, want schedule-1 on 2021-06-22", body.Schedule)
	}
}

func TestBookingHandlerCreateInvalidDateQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing parameters", "/units/unit-1/bookings"},
		{"month out of range", "/units/unit-1/bookings?month=13&day=1"},
		{"day overflows the month", "/units/unit-1/bookings?month=2&day=30"},
		{"not a number", "/units/unit-1/bookings?month=june&day=22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewBookingHandler(&stubBookingService{}, 2021, discardLogger())

			req := requestWithPrincipal(http.MethodPost, tt.target, `{"course":"情報処理"}`, testPrincipal())
			rec := httptest.NewRecorder()
			handler.Create(rec, req, "unit-1")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestBookingHandlerCreateValidationError(t *testing.T) {
	service := &stubBookingService{
		createFn: func(ctx context.Context, params application.CreateBookingParams) (application.Schedule, error) {
			return application.Schedule{}, &application.ValidationError{
				FieldErrors: map[string]string{"date": "予約可能期間外です。"},
			}
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodPost, "/units/unit-1/bookings?month=6&day=15",
		`{"course":"情報処理","faculty":"文学部","num_students":25}`, testPrincipal())
	rec := httptest.NewRecorder()
	handler.Create(rec, req, "unit-1")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if body := decodeError(t, rec); body.Errors["date"] != "予約可能期間外です。" {
		t.Errorf("errors = %+v, want the service message passed through", body.Errors)
	}
}

func TestBookingHandlerForm(t *testing.T) {
	service := &stubBookingService{
		formFn: func(ctx context.Context, principal application.Principal, unitID string, date time.Time) (application.BookingForm, error) {
			existing := sampleSchedule()
			return application.BookingForm{
				Unit:      sampleUnit(),
				Date:      date,
				CanBook:   false,
				Message:   "すでに予約されています",
				Existing:  &existing,
				Faculties: application.Faculties(),
			}, nil
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/units/unit-1/bookings?month=6&day=22", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.Form(rec, req, "unit-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body bookingFormDTO
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.CanBook || body.Message != "すでに予約されています" {
		t.Errorf("body = %+v, want taken slot with message", body)
	}
	if body.Existing == nil || body.Existing.ID != "schedule-1" {
		t.Errorf("body.Existing = %+v, want schedule-1", body.Existing)
	}
	if len(body.Faculties) != len(application.Faculties()) {
		t.Errorf("faculties = %d entries, want %d", len(body.Faculties), len(application.Faculties()))
	}
}

func TestBookingHandlerGet(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/bookings/schedule-1", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.Get(rec, req, "schedule-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body scheduleDetailResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Schedule.ID != "schedule-1" || !body.CanEdit {
		t.Errorf("body = %+v, want editable schedule-1", body)
	}
}

func TestBookingHandlerGetNotFound(t *testing.T) {
	service := &stubBookingService{
		getFn: func(ctx context.Context, principal application.Principal, scheduleID string) (application.ScheduleDetail, error) {
			return application.ScheduleDetail{}, application.ErrNotFound
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/bookings/schedule-9", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.Get(rec, req, "schedule-9")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBookingHandlerUpdate(t *testing.T) {
	var got application.UpdateBookingParams
	service := &stubBookingService{
		updateFn: func(ctx context.Context, params application.UpdateBookingParams) (application.Schedule, error) {
			got = params
			return sampleSchedule(), nil
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodPut, "/bookings/schedule-1",
		`{"course":"解析学","faculty":"経済学部","num_students":12}`, testPrincipal())
	rec := httptest.NewRecorder()
	handler.Update(rec, req, "schedule-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.ScheduleID != "schedule-1" || got.Input.Course != "解析学" || got.Input.Faculty != application.FacultyEconomics {
		t.Errorf("params = %+v, want decoded edit for schedule-1", got)
	}
}

func TestBookingHandlerDelete(t *testing.T) {
	deleted := ""
	service := &stubBookingService{
		deleteFn: func(ctx context.Context, principal application.Principal, scheduleID string) error {
			deleted = scheduleID
			return nil
		},
	}
	handler := NewBookingHandler(service, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodDelete, "/bookings/schedule-1", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.Delete(rec, req, "schedule-1")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if deleted != "schedule-1" {
		t.Errorf("deleted = %q, want schedule-1", deleted)
	}
}

func TestBookingHandlerMyPage(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, 2021, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/me", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.MyPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body myPageResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Upcoming) != 1 || body.Upcoming[0].ID != "schedule-1" {
		t.Errorf("body.Upcoming = %+v, want schedule-1", body.Upcoming)
	}
	if body.Past == nil || body.Logs == nil {
		t.Error("empty lists must encode as [] rather than null")
	}
}
