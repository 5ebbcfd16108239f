package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	BookingsCreated  prometheus.Counter
	BookingsCanceled prometheus.Counter
	SlotConflicts    prometheus.Counter

	OutboxPublished prometheus.Counter
	OutboxBacklog   prometheus.Gauge

	NotificationsSent     prometheus.Counter
	NotificationsFailed   prometheus.Counter
	NotificationsRequeued prometheus.Counter
	DispatchLatency       prometheus.Histogram
	DispatchQueueDepth    prometheus.Gauge
	BreakerState          prometheus.Gauge
	DeadNotifications     prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of appointments booked.",
		}),
		BookingsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_canceled_total",
			Help: "Total number of appointments canceled.",
		}),
		SlotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_slot_conflicts_total",
			Help: "Total number of bookings rejected by the slot uniqueness index.",
		}),

		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Total number of outbox events drained by the relay.",
		}),
		OutboxBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_backlog",
			Help: "Unpublished outbox events at the last relay tick.",
		}),

		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of dispatch invocations that ended in FAILED.",
		}),
		NotificationsRequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_requeued_total",
			Help: "Total number of messages put back to QUEUED by breaker or janitor.",
		}),
		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_dispatch_seconds",
			Help:    "End-to-end dispatch latency from dequeue to sender ack.",
			Buckets: prometheus.DefBuckets,
		}),
		DispatchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Message ids currently waiting in the dispatch queue.",
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
		DeadNotifications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_dead",
			Help: "FAILED rows at or above the attempts ceiling (terminal DLQ).",
		}),
	}

	reg.MustRegister(
		m.BookingsCreated,
		m.BookingsCanceled,
		m.SlotConflicts,
		m.OutboxPublished,
		m.OutboxBacklog,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsRequeued,
		m.DispatchLatency,
		m.DispatchQueueDepth,
		m.BreakerState,
		m.DeadNotifications,
	)

	return m
}

// BookingHooks returns the callbacks the booking service expects.
// Centralises the prometheus observation calls so the services stay
// metrics-agnostic.
func (m *Metrics) BookingHooks() (onCreated, onCanceled, onConflict func()) {
	return m.BookingsCreated.Inc, m.BookingsCanceled.Inc, m.SlotConflicts.Inc
}

// DispatchHooks returns the callbacks the dispatch pool expects.
func (m *Metrics) DispatchHooks() (
	onSent func(latency time.Duration),
	onFailed func(),
	onRequeued func(),
) {
	onSent = func(latency time.Duration) {
		m.NotificationsSent.Inc()
		m.DispatchLatency.Observe(latency.Seconds())
	}
	return onSent, m.NotificationsFailed.Inc, m.NotificationsRequeued.Inc
}

// RelayHooks returns the callbacks the outbox relay expects.
func (m *Metrics) RelayHooks() (onPublished, onBacklog func(n int)) {
	onPublished = func(n int) { m.OutboxPublished.Add(float64(n)) }
	onBacklog = func(n int) { m.OutboxBacklog.Set(float64(n)) }
	return
}

// JanitorHooks returns the callbacks the stuck requeuer expects.
func (m *Metrics) JanitorHooks() (onRequeued, onDead func(n int)) {
	onRequeued = func(n int) { m.NotificationsRequeued.Add(float64(n)) }
	onDead = func(n int) { m.DeadNotifications.Set(float64(n)) }
	return
}
