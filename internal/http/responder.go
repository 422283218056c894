package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-reservation/internal/application"
)

var (
	errBadRequestBody      = errors.New("無効なリクエスト形式です。")
	errInvalidBookingID    = errors.New("無効な予約 ID です。")
	errInvalidDatePath     = errors.New("無効な日付です。")
	errInvalidPeriodPath   = errors.New("無効な時限です。")
	errInvalidUnitID       = errors.New("無効なコマ ID です。")
	errMissingSessionToken = errors.New("認証トークンを指定してください")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrEmailDomainNotAllowed),
		errors.Is(err, application.ErrAccountDisabled),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: authErrorCode(err),
			Message:   authErrorMessage(err),
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "指定されたリソースが見つかりません。"})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "入力内容に誤りがあります。",
				Errors:  fieldErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "入力内容に誤りがあります。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func authErrorCode(err error) string {
	switch {
	case errors.Is(err, application.ErrEmailDomainNotAllowed):
		return "AUTH_DOMAIN_NOT_ALLOWED"
	case errors.Is(err, application.ErrAccountDisabled):
		return "AUTH_ACCOUNT_DISABLED"
	case errors.Is(err, application.ErrSessionExpired):
		return "AUTH_SESSION_EXPIRED"
	case errors.Is(err, application.ErrSessionRevoked):
		return "AUTH_SESSION_REVOKED"
	default:
		return "AUTH_INVALID_CREDENTIALS"
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrEmailDomainNotAllowed):
		return "このメールアドレスのドメインではログインできません。"
	case errors.Is(err, application.ErrAccountDisabled):
		return "このアカウントは無効化されています。"
	case errors.Is(err, application.ErrSessionExpired):
		return "セッションの有効期限が切れています。再度ログインしてください。"
	case errors.Is(err, application.ErrSessionRevoked):
		return "セッションは失効しています。再度ログインしてください。"
	default:
		return "メールアドレスまたはパスワードが正しくありません"
	}
}

// Validation messages are produced in Japanese by the services, so the
// field map passes through unchanged.
func fieldErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		out[field] = msg
	}
	return out
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
