package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/config"
	httptransport "github.com/example/campus-reservation/internal/http"
	"github.com/example/campus-reservation/internal/logging"
	"github.com/example/campus-reservation/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelInfo, "roomreserve")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; the real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	users := sqlite.NewUserRepository(pool)
	rooms := sqlite.NewRoomRepository(pool)
	units := sqlite.NewUnitRepository(pool)
	schedules := sqlite.NewScheduleRepository(pool)
	logs := sqlite.NewLogRepository(pool)
	sessions := sqlite.NewSessionRepository(pool)

	authService := application.NewAuthService(users, sessions, nil, tokenGenerator, now, cfg.SessionTTL, cfg.AllowedEmailDomain, cfg.AdminEmails, logger)
	bookingService := application.NewBookingService(schedules, units, rooms, logs, cfg.Season, idGenerator, now, logger)
	calendarService := application.NewCalendarService(schedules, units, rooms, cfg.Season, now, logger)
	reportService := application.NewReportService(users, schedules, units, rooms, logs, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(authService, logger),
		Calendar:       httptransport.NewCalendarHandler(calendarService, cfg.Season.Year, now, logger),
		Bookings:       httptransport.NewBookingHandler(bookingService, cfg.Season.Year, logger),
		Reports:        httptransport.NewReportHandler(reportService, logger),
		RequireSession: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr, "season_year", cfg.Season.Year)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
