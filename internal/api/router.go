package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/api/handler"
	apimw "github.com/agendahub/booking-backend/internal/api/middleware"
	"github.com/agendahub/booking-backend/internal/auth"
	"github.com/agendahub/booking-backend/internal/availability"
	"github.com/agendahub/booking-backend/internal/booking"
	"github.com/agendahub/booking-backend/internal/provider"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	authSvc *auth.Service,
	bookingSvc *booking.Service,
	providerSvc *provider.Service,
	avail *availability.Engine,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ah := handler.NewAuthHandler(authSvc, logger)
	bh := handler.NewAppointmentHandler(bookingSvc, logger)
	ph := handler.NewProviderHandler(providerSvc, avail, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth surface.
		r.Post("/auth/signup", ah.Signup)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)
		r.Post("/auth/logout", ah.Logout)

		// Provider reads and availability are anonymous: browsing the
		// catalog and checking free slots must not require an account.
		r.Get("/providers", ph.List)
		r.Get("/providers/{id}", ph.Get)
		r.Get("/providers/{id}/availability", ph.Availability)
		r.Get("/providers/{id}/work-hours", ph.ListWorkHours)

		// Everything below requires a bearer access token.
		r.Group(func(r chi.Router) {
			r.Use(apimw.Auth(authSvc))

			r.Post("/appointments", bh.Create)
			r.Get("/appointments", bh.List)
			r.Delete("/appointments/{id}", bh.Cancel)

			r.Post("/providers", ph.Create)
			r.Patch("/providers/{id}", ph.Update)
			r.Post("/providers/{id}/work-hours", ph.AddWorkHour)
			r.Delete("/providers/{id}/work-hours/{whid}", ph.DeleteWorkHour)
		})
	})

	return r
}
