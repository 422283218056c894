package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-reservation/internal/application"
)

type reportService interface {
	UserSummaries(ctx context.Context, principal application.Principal) (application.UserSummaries, error)
	UserActivity(ctx context.Context, principal application.Principal, userID string) (application.UserActivity, error)
}

// ReportHandler serves the administrator reporting pages. Authorization is
// enforced by the service layer, which answers not-found for anyone else.
type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

// Users handles GET /admin/users.
func (h *ReportHandler) Users(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	summaries, err := h.service.UserSummaries(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserSummariesDTO(summaries))
}

// User handles GET /admin/users/{id}.
func (h *ReportHandler) User(w http.ResponseWriter, r *http.Request, userID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(userID) == "" {
		http.NotFound(w, r)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	activity, err := h.service.UserActivity(r.Context(), principal, userID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userActivityDTO{
		User:     toUserDTO(activity.User),
		Upcoming: toScheduleDTOs(activity.Upcoming),
		Past:     toScheduleDTOs(activity.Past),
		Logs:     toLogDTOs(activity.Logs),
	})
}

type userDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName}
}

type userSummaryDTO struct {
	User          userDTO `json:"user"`
	UpcomingCount int     `json:"upcoming_count"`
	PastCount     int     `json:"past_count"`
	LogCount      int     `json:"log_count"`
}

type userSummariesDTO struct {
	Users            []userSummaryDTO `json:"users"`
	NumUsers         int              `json:"num_users"`
	NumSchedules     int              `json:"num_schedules"`
	NumPastSchedules int              `json:"num_past_schedules"`
	NumLogs          int              `json:"num_logs"`
}

func toUserSummariesDTO(summaries application.UserSummaries) userSummariesDTO {
	users := make([]userSummaryDTO, 0, len(summaries.Users))
	for _, summary := range summaries.Users {
		users = append(users, userSummaryDTO{
			User:          toUserDTO(summary.User),
			UpcomingCount: summary.UpcomingCount,
			PastCount:     summary.PastCount,
			LogCount:      summary.LogCount,
		})
	}
	return userSummariesDTO{
		Users:            users,
		NumUsers:         summaries.NumUsers,
		NumSchedules:     summaries.NumSchedules,
		NumPastSchedules: summaries.NumPastSchedules,
		NumLogs:          summaries.NumLogs,
	}
}

type userActivityDTO struct {
	User     userDTO       `json:"user"`
	Upcoming []scheduleDTO `json:"upcoming"`
	Past     []scheduleDTO `json:"past"`
	Logs     []logDTO      `json:"logs"`
}
