// Package metrics defines and registers the custom Prometheus metrics of the
// auth service. It is the single source of truth for metric names, labels and
// help strings.
//
// All metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Login / password ─────────────────────────────────────────────────────────

// LoginAttemptsTotal counts calls to Authenticate.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PasswordChangesTotal counts password change requests.
// Label:
//   - result: "success", "invalid_argument", "invalid_credentials", "conflict" or "error"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change requests, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts bearer token resolutions performed by the access guard.
// Label:
//   - result: "valid", "invalid_token", "missing_subject", "unknown_subject", "inactive" or "error"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of bearer token validations, by result.",
	},
	[]string{"result"},
)

// HashDuration measures time spent in the pepper + adaptive hash pipeline.
// Label:
//   - operation: "hash" or "verify"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hash_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation"},
)

// ── Audit trail ──────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because their worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped due to a full dispatcher queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Profile cache ────────────────────────────────────────────────────────────

// ProfileCacheTotal counts profile cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ProfileCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_total",
		Help:      "Total number of profile cache lookups, labelled by result.",
	},
	[]string{"result"},
)
