// Package metrics defines the custom Prometheus metrics of the console
// gateway. Request-level HTTP metrics come from echoprometheus; everything
// here is about sessions, navigation and the backend link.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "network", "server" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ForcedLogoutsTotal counts sessions ended because the backend rejected the
// live token. Concurrent rejections of the same token count once.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of sessions cleared after a backend 401.",
	},
)

// TokenRefreshesTotal counts refresh attempts.
// Label:
//   - result: "success", "expired", "stale" or "error"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of bearer token refreshes, by result.",
	},
	[]string{"result"},
)

// ── Navigation metrics ────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - area: first path segment of the evaluated route
//   - decision: "allowed", "denied_unauthenticated" or "denied_forbidden"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by area and outcome.",
	},
	[]string{"area", "decision"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures round trips to the AGROCEAN API.
// Labels:
//   - method: HTTP method
//   - status: response code, or "error" when no response arrived
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the backend API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// ObserveBackend matches backend.ObserveFunc.
func ObserveBackend(method string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	BackendRequestDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

// ── Live channel metrics ──────────────────────────────────────────────────────

// UnreadAlerts is the last unread alert count pushed to the operator.
var UnreadAlerts = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unread_alerts",
		Help:      "Unread alert count last reported by the backend.",
	},
)

// StreamSubscribers tracks open /session/stream websocket connections.
var StreamSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Number of connected session stream websockets.",
	},
)
