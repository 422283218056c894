package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/campus-reservation/internal/application"
)

func TestReportHandlerUsers(t *testing.T) {
	service := &stubReportService{
		summariesFn: func(ctx context.Context, principal application.Principal) (application.UserSummaries, error) {
			if !principal.IsAdmin {
				return application.UserSummaries{}, application.ErrNotFound
			}
			return application.UserSummaries{
				Users: []application.UserSummary{
					{User: application.User{ID: "user-1", Email: "user-1@keio.jp"}, UpcomingCount: 1, LogCount: 3},
				},
				NumUsers: 1,
				NumLogs:  3,
			}, nil
		},
	}
	handler := NewReportHandler(service, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/admin/users", "", adminPrincipal())
	rec := httptest.NewRecorder()
	handler.Users(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body userSummariesDTO
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.NumUsers != 1 || len(body.Users) != 1 || body.Users[0].LogCount != 3 {
		t.Errorf("body = %+v, want one row with three audit entries", body)
	}
}

func TestReportHandlerUsersHiddenFromNonAdmins(t *testing.T) {
	service := &stubReportService{
		summariesFn: func(ctx context.Context, principal application.Principal) (application.UserSummaries, error) {
			return application.UserSummaries{}, application.ErrNotFound
		},
	}
	handler := NewReportHandler(service, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/admin/users", "", testPrincipal())
	rec := httptest.NewRecorder()
	handler.Users(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestReportHandlerUser(t *testing.T) {
	service := &stubReportService{
		activityFn: func(ctx context.Context, principal application.Principal, userID string) (application.UserActivity, error) {
			if userID != "user-1" {
				return application.UserActivity{}, application.ErrNotFound
			}
			return application.UserActivity{
				User:     application.User{ID: "user-1", Email: "user-1@keio.jp", DisplayName: "利用者1"},
				Upcoming: []application.Schedule{sampleSchedule()},
			}, nil
		},
	}
	handler := NewReportHandler(service, discardLogger())

	req := requestWithPrincipal(http.MethodGet, "/admin/users/user-1", "", adminPrincipal())
	rec := httptest.NewRecorder()
	handler.User(rec, req, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body userActivityDTO
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User.ID != "user-1" || len(body.Upcoming) != 1 {
		t.Errorf("body = %+v, want user-1 with one upcoming reservation", body)
	}

	rec = httptest.NewRecorder()
	handler.User(rec, requestWithPrincipal(http.MethodGet, "/admin/users/user-9", "", adminPrincipal()), "user-9")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
