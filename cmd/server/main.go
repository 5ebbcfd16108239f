package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/api"
	"github.com/agendahub/booking-backend/internal/auth"
	"github.com/agendahub/booking-backend/internal/availability"
	"github.com/agendahub/booking-backend/internal/booking"
	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/config"
	"github.com/agendahub/booking-backend/internal/db"
	"github.com/agendahub/booking-backend/internal/metrics"
	"github.com/agendahub/booking-backend/internal/provider"
	"github.com/agendahub/booking-backend/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// The API server owns the schema; the worker binary only connects.
	if err := db.Migrate(cfg.DatabaseURL, "file://migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	clk := clock.System()

	userRepo := repository.NewPgUserRepository(pool)
	providerRepo := repository.NewPgProviderRepository(pool)
	scheduleRepo := repository.NewPgWorkScheduleRepository(pool)
	apptRepo := repository.NewPgAppointmentRepository(pool)

	issuer := auth.NewTokenIssuer(cfg.SecretKey, cfg.AccessTokenTTL)
	authSvc := auth.NewService(userRepo, issuer, cfg.RefreshTokenTTL, clk, logger)
	providerSvc := provider.NewService(providerRepo, clk, logger)
	avail := availability.NewEngine(scheduleRepo, apptRepo, clk, cfg.SlotDuration)

	onCreated, onCanceled, onConflict := m.BookingHooks()
	bookingSvc := booking.NewService(apptRepo, scheduleRepo, clk, cfg.SlotDuration, logger, booking.Hooks{
		OnCreated:  onCreated,
		OnCanceled: onCanceled,
		OnConflict: onConflict,
	})

	// ---- HTTP server ----
	router := api.NewRouter(authSvc, bookingSvc, providerSvc, avail, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
