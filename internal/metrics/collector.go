// Package metrics exposes the dashboard's health as Prometheus metrics.
//
// A nil *Collector is valid and records nothing, so components take one
// unconditionally and tests can leave it out.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the groundctl metric set.
type Collector struct {
	messagesTotal      *prometheus.CounterVec
	staleDroppedTotal  prometheus.Counter
	reconnectsTotal    prometheus.Counter
	fetchErrorsTotal   *prometheus.CounterVec
	launchesTotal      *prometheus.CounterVec
	streamState        *prometheus.GaugeVec
	bufferedEvents     prometheus.Gauge
	sessionsKnown      prometheus.Gauge
	secondsSinceUpdate prometheus.Gauge
	arrivalGap         *prometheus.GaugeVec
}

// streamStates lists every label value of groundctl_stream_state.
var streamStates = []string{"disconnected", "connecting", "connected", "unsubscribed"}

// NewCollector creates a collector registered with the default registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Use this in tests to avoid polluting the global registry.
func NewCollectorWithRegistry(registry prometheus.Registerer) *Collector {
	c := &Collector{
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundctl_stream_messages_total",
				Help: "Stream messages applied to the buffer, by kind",
			},
			[]string{"kind"},
		),
		staleDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groundctl_stream_stale_dropped_total",
				Help: "Updates discarded because they belong to a torn-down subscription",
			},
		),
		reconnectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groundctl_stream_reconnects_total",
				Help: "Reconnect attempts after a stream failure",
			},
		),
		fetchErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundctl_fetch_errors_total",
				Help: "Failed backend requests, by endpoint",
			},
			[]string{"endpoint"},
		),
		launchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundctl_launch_requests_total",
				Help: "Launch commands sent, by reported status code (0 = transport failure)",
			},
			[]string{"status_code"},
		),
		streamState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "groundctl_stream_state",
				Help: "1 for the current stream state, 0 otherwise",
			},
			[]string{"state"},
		),
		bufferedEvents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundctl_buffered_events",
				Help: "Events currently held for the selected session",
			},
		),
		sessionsKnown: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundctl_sessions_known",
				Help: "Sessions reported by the backend",
			},
		),
		secondsSinceUpdate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundctl_seconds_since_update",
				Help: "Seconds since the last applied message (-1 before the first)",
			},
		),
		arrivalGap: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "groundctl_arrival_gap_seconds",
				Help: "Inter-arrival gap of stream messages, by quantile",
			},
			[]string{"quantile"},
		),
	}

	registry.MustRegister(
		c.messagesTotal,
		c.staleDroppedTotal,
		c.reconnectsTotal,
		c.fetchErrorsTotal,
		c.launchesTotal,
		c.streamState,
		c.bufferedEvents,
		c.sessionsKnown,
		c.secondsSinceUpdate,
		c.arrivalGap,
	)

	c.secondsSinceUpdate.Set(-1)
	c.SetStreamState("unsubscribed")
	return c
}

// MessageApplied counts one snapshot or event applied to the buffer.
func (c *Collector) MessageApplied(kind string) {
	if c == nil {
		return
	}
	c.messagesTotal.WithLabelValues(kind).Inc()
}

// StaleDropped counts one discarded stale-generation update.
func (c *Collector) StaleDropped() {
	if c == nil {
		return
	}
	c.staleDroppedTotal.Inc()
}

// Reconnect counts one reconnect attempt.
func (c *Collector) Reconnect() {
	if c == nil {
		return
	}
	c.reconnectsTotal.Inc()
}

// FetchError counts one failed request to endpoint ("events", "sessions").
func (c *Collector) FetchError(endpoint string) {
	if c == nil {
		return
	}
	c.fetchErrorsTotal.WithLabelValues(endpoint).Inc()
}

// LaunchSent counts one launch command by its reported status code.
func (c *Collector) LaunchSent(statusCode int) {
	if c == nil {
		return
	}
	c.launchesTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetStreamState marks state as current and every other state as not.
func (c *Collector) SetStreamState(state string) {
	if c == nil {
		return
	}
	for _, s := range streamStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.streamState.WithLabelValues(s).Set(v)
	}
}

// SetBuffered records the buffer length.
func (c *Collector) SetBuffered(n int) {
	if c == nil {
		return
	}
	c.bufferedEvents.Set(float64(n))
}

// SetSessions records how many sessions are known.
func (c *Collector) SetSessions(n int) {
	if c == nil {
		return
	}
	c.sessionsKnown.Set(float64(n))
}

// SetSecondsSinceUpdate records staleness. ok=false means no message yet.
func (c *Collector) SetSecondsSinceUpdate(seconds int, ok bool) {
	if c == nil {
		return
	}
	if !ok {
		c.secondsSinceUpdate.Set(-1)
		return
	}
	c.secondsSinceUpdate.Set(float64(seconds))
}

// SetArrivalGaps records the inter-arrival quantiles.
func (c *Collector) SetArrivalGaps(p50, p95 time.Duration) {
	if c == nil {
		return
	}
	c.arrivalGap.WithLabelValues("0.5").Set(p50.Seconds())
	c.arrivalGap.WithLabelValues("0.95").Set(p95.Seconds())
}
