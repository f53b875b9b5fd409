// Package metrics expose Prometheus counters of the application lifecycle,
// the notification ledger and the live channel.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobportal"

// Collector holds every metric of the service. A nil *Collector is valid
// and records nothing.
type Collector struct {
	applicationsSubmitted prometheus.Counter
	applicationDecisions  *prometheus.CounterVec
	notificationsCreated  prometheus.Counter
	notificationsFailed   prometheus.Counter
	liveSessions          prometheus.Gauge
	liveEventsPublished   prometheus.Counter
	liveEventsDropped     prometheus.Counter
}

// NewCollector create the metrics and register them on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		applicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Number of applications successfully submitted.",
		}),
		applicationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_decisions_total",
			Help:      "Number of employer decisions applied, by resulting status.",
		}, []string{"status"}),
		notificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Number of notification records written to the ledger.",
		}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Number of notification records that could not be written.",
		}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Number of live channel sessions currently joined.",
		}),
		liveEventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_published_total",
			Help:      "Number of events published to the live channel.",
		}),
		liveEventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_dropped_total",
			Help:      "Number of live events dropped because a session could not keep up.",
		}),
	}

	reg.MustRegister(
		c.applicationsSubmitted,
		c.applicationDecisions,
		c.notificationsCreated,
		c.notificationsFailed,
		c.liveSessions,
		c.liveEventsPublished,
		c.liveEventsDropped,
	)
	return c
}

// ApplicationSubmitted count a created application
func (c *Collector) ApplicationSubmitted() {
	if c == nil {
		return
	}
	c.applicationsSubmitted.Inc()
}

// ApplicationDecided count a successful status transition
func (c *Collector) ApplicationDecided(status string) {
	if c == nil {
		return
	}
	c.applicationDecisions.WithLabelValues(status).Inc()
}

// NotificationCreated count a ledger write
func (c *Collector) NotificationCreated() {
	if c == nil {
		return
	}
	c.notificationsCreated.Inc()
}

// NotificationFailed count a failed ledger write
func (c *Collector) NotificationFailed() {
	if c == nil {
		return
	}
	c.notificationsFailed.Inc()
}

// SetLiveSessions set number of joined sessions
func (c *Collector) SetLiveSessions(n int) {
	if c == nil {
		return
	}
	c.liveSessions.Set(float64(n))
}

// LiveEventPublished count a published live event
func (c *Collector) LiveEventPublished() {
	if c == nil {
		return
	}
	c.liveEventsPublished.Inc()
}

// LiveEventDropped count an event a session did not receive
func (c *Collector) LiveEventDropped() {
	if c == nil {
		return
	}
	c.liveEventsDropped.Inc()
}

// Handler serve metrics gathered by g in Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
