package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/config"
	"github.com/agendahub/booking-backend/internal/db"
	"github.com/agendahub/booking-backend/internal/dispatch"
	"github.com/agendahub/booking-backend/internal/metrics"
	"github.com/agendahub/booking-backend/internal/relay"
	"github.com/agendahub/booking-backend/internal/repository"
	"github.com/agendahub/booking-backend/internal/requeue"
)

// queueDepthInterval is how often the dispatch queue depth gauge is sampled.
const queueDepthInterval = 5 * time.Second

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// The worker connects only; migrations belong to the API server.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	clk := clock.System()

	outboxRepo := repository.NewPgOutboxRepository(pool)
	messageRepo := repository.NewPgNotificationRepository(pool)
	apptRepo := repository.NewPgAppointmentRepository(pool)

	// ---- dispatch pipeline ----
	q := dispatch.NewQueue(cfg.DispatchQueueSize)
	limiter := dispatch.NewChannelLimiters(cfg.DispatchRateLimit)

	sender := dispatch.NewBreakerSender(
		dispatch.NewHTTPSender(cfg.SenderBaseURL, cfg.SenderAPIKey),
		cfg.CircuitFailMax,
		cfg.CircuitResetTimeout,
		logger,
		m.BreakerState.Set,
	)

	onSent, onFailed, onRequeued := m.DispatchHooks()
	workers := dispatch.NewPool(
		cfg.DispatchWorkers, q, messageRepo, sender, limiter, clk,
		dispatch.Config{
			RetryMaxAttempts:  cfg.RetryMaxAttempts,
			BackoffBase:       cfg.RetryBackoffBase,
			BackoffMax:        cfg.RetryBackoffMax,
			CircuitResetDelay: cfg.CircuitResetTimeout,
		},
		logger,
		dispatch.Hooks{OnSent: onSent, OnFailed: onFailed, OnRequeued: onRequeued},
	)
	workers.Start(ctx)

	// ---- outbox relay ----
	resolver := relay.AppointmentRecipientResolver(apptRepo)

	onPublished, onBacklog := m.RelayHooks()
	outboxRelay := relay.New(
		outboxRepo, resolver, q, clk,
		cfg.OutboxBatchSize, cfg.OutboxPollInterval, cfg.PlaceholderRecipient,
		logger,
		relay.Hooks{OnPublished: onPublished, OnBacklog: onBacklog},
	)
	go outboxRelay.Run(ctx)

	// ---- stuck requeuer ----
	onRevived, onDead := m.JanitorHooks()
	janitor := requeue.New(
		messageRepo, q, clk,
		cfg.RequeueStaleAfter, cfg.FailedMaxAttempts, cfg.RequeuePollInterval,
		logger,
		requeue.Hooks{OnRequeued: onRevived, OnDead: onDead},
	)
	go janitor.Run(ctx)

	// ---- queue depth gauge ----
	go func() {
		ticker := time.NewTicker(queueDepthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.DispatchQueueDepth.Set(float64(q.Depth()))
			}
		}
	}()

	// ---- health + metrics listener ----
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: ":" + cfg.WorkerMetricsPort, Handler: r}
	go func() {
		logger.Info("worker metrics listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	logger.Info("notification worker started",
		zap.Int("dispatch_workers", cfg.DispatchWorkers),
		zap.Duration("outbox_poll", cfg.OutboxPollInterval),
		zap.Duration("requeue_poll", cfg.RequeuePollInterval),
	)

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", zap.Error(err))
	}

	// Stop the tickers and workers, then wait for in-flight dispatches.
	cancel()
	workers.Wait()

	logger.Info("worker stopped cleanly")
}
