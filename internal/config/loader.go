package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/campus-reservation/internal/booking"
)

// Config captures environment driven configuration values for the
// reservation service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	SessionSecret      string
	SessionTTL         time.Duration
	AdminEmails        []string
	AllowedEmailDomain string
	Season             booking.Season
}

// DefaultSeason returns the booking season used when no season dates are
// configured: the public window 6/3 to 7/10 with the limited early window
// 6/21 to 6/26.
func DefaultSeason(year int) booking.Season {
	return booking.Season{
		Year:         year,
		PublicStart:  time.Date(year, time.June, 3, 0, 0, 0, 0, time.UTC),
		PublicEnd:    time.Date(year, time.July, 10, 0, 0, 0, 0, time.UTC),
		LimitedStart: time.Date(year, time.June, 21, 0, 0, 0, 0, time.UTC),
		LimitedEnd:   time.Date(year, time.June, 26, 0, 0, 0, 0, time.UTC),
	}
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:roomreserve.db?_foreign_keys=on",
		SessionTTL:         24 * time.Hour,
		AllowedEmailDomain: "keio.jp",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMRESERVE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMRESERVE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMRESERVE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("ROOMRESERVE_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ROOMRESERVE_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMRESERVE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMRESERVE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if emails := strings.TrimSpace(os.Getenv("ROOMRESERVE_ADMIN_EMAILS")); emails != "" {
		for _, email := range strings.Split(emails, ",") {
			email = strings.TrimSpace(strings.ToLower(email))
			if email != "" {
				cfg.AdminEmails = append(cfg.AdminEmails, email)
			}
		}
	}

	if domain := strings.TrimSpace(os.Getenv("ROOMRESERVE_ALLOWED_EMAIL_DOMAIN")); domain != "" {
		cfg.AllowedEmailDomain = strings.ToLower(strings.TrimPrefix(domain, "@"))
	}

	year := time.Now().Year()
	if yearValue := strings.TrimSpace(os.Getenv("ROOMRESERVE_SEASON_YEAR")); yearValue != "" {
		parsed, err := strconv.Atoi(yearValue)
		if err != nil || parsed < 2000 {
			invalid = append(invalid, "ROOMRESERVE_SEASON_YEAR")
		} else {
			year = parsed
		}
	}
	cfg.Season = DefaultSeason(year)

	seasonDates := []struct {
		name   string
		target *time.Time
	}{
		{"ROOMRESERVE_PUBLIC_START", &cfg.Season.PublicStart},
		{"ROOMRESERVE_PUBLIC_END", &cfg.Season.PublicEnd},
		{"ROOMRESERVE_LIMITED_START", &cfg.Season.LimitedStart},
		{"ROOMRESERVE_LIMITED_END", &cfg.Season.LimitedEnd},
	}
	for _, entry := range seasonDates {
		value := strings.TrimSpace(os.Getenv(entry.name))
		if value == "" {
			continue
		}
		parsed, err := parseSeasonDate(value, year)
		if err != nil {
			invalid = append(invalid, entry.name)
			continue
		}
		*entry.target = parsed
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseSeasonDate accepts either a full civil date or a month-day pair that
// borrows the season year.
func parseSeasonDate(value string, year int) (time.Time, error) {
	if parsed, err := time.ParseInLocation(time.DateOnly, value, time.UTC); err == nil {
		return parsed, nil
	}
	parsed, err := time.ParseInLocation("01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}
