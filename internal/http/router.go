package http

import (
	"net/http"
	"strconv"
	"strings"
)

// RouterConfig wires the handlers and middleware into one HTTP surface.
// RequireSession guards every route except POST /sessions; Middleware wraps
// the whole router.
type RouterConfig struct {
	Auth           *AuthHandler
	Calendar       *CalendarHandler
	Bookings       *BookingHandler
	Reports        *ReportHandler
	RequireSession func(http.Handler) http.Handler
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.RequireSession == nil {
			return h
		}
		return cfg.RequireSession(h)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.Handle("/sessions/current", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		}))
	}

	if cfg.Calendar != nil {
		mux.Handle("/calendar", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Overview(w, r, 0, 0)
		}))
		mux.Handle("/calendar/", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			segments := pathSegments(r.URL.Path, "/calendar/")
			month, day, ok := monthDaySegments(segments)
			if !ok {
				http.NotFound(w, r)
				return
			}
			cfg.Calendar.Overview(w, r, month, day)
		}))
		mux.Handle("/days/", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			segments := pathSegments(r.URL.Path, "/days/")
			switch len(segments) {
			case 2:
				month, day, ok := monthDaySegments(segments)
				if !ok {
					http.NotFound(w, r)
					return
				}
				cfg.Calendar.Day(w, r, month, day)
			case 4:
				month, day, ok := monthDaySegments(segments[:2])
				if !ok || segments[2] != "periods" {
					http.NotFound(w, r)
					return
				}
				period, err := strconv.Atoi(segments[3])
				if err != nil {
					http.NotFound(w, r)
					return
				}
				cfg.Calendar.Period(w, r, month, day, period)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Bookings != nil {
		mux.Handle("/units/", protect(func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(r.URL.Path, "/units/")
			if len(segments) != 2 || segments[1] != "bookings" || segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.Form(w, r, segments[0])
			case http.MethodPost:
				cfg.Bookings.Create(w, r, segments[0])
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/bookings/", protect(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/bookings/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.Get(w, r, id)
			case http.MethodPut:
				cfg.Bookings.Update(w, r, id)
			case http.MethodDelete:
				cfg.Bookings.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
		mux.Handle("/me", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Bookings.MyPage(w, r)
		}))
	}

	if cfg.Reports != nil {
		mux.Handle("/admin/users", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Users(w, r)
		}))
		mux.Handle("/admin/users/", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			id := strings.TrimPrefix(r.URL.Path, "/admin/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			cfg.Reports.User(w, r, id)
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func pathSegments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func monthDaySegments(segments []string) (month, day int, ok bool) {
	if len(segments) < 2 {
		return 0, 0, false
	}
	month, errMonth := strconv.Atoi(segments[0])
	day, errDay := strconv.Atoi(segments[1])
	if errMonth != nil || errDay != nil {
		return 0, 0, false
	}
	return month, day, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
