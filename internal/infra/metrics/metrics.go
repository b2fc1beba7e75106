// Package metrics provides Prometheus metrics for the achievement engine:
// counters for recorded activities, badge unlocks, and awarded points, plus
// store-failure and degraded-mode visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Activities ─────────────────────────────────────────────────────────────

// ActivitiesRecorded tracks recorded activities by type.
var ActivitiesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "koru",
	Name:      "activities_recorded_total",
	Help:      "Total activities recorded.",
}, []string{"activity"})

// PointsAwarded tracks total points awarded across all users.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "koru",
	Name:      "points_awarded_total",
	Help:      "Total points awarded.",
}, []string{"activity"})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesUnlocked tracks badge unlocks by badge ID.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "koru",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"badge"})

// ─── Store ──────────────────────────────────────────────────────────────────

// StoreErrors tracks store failures by operation.
var StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "koru",
	Name:      "store_errors_total",
	Help:      "Total record store errors.",
}, []string{"op"})

// DegradedFallbacks counts operations served from defaults because
// persistence is unavailable or disabled.
var DegradedFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "koru",
	Name:      "degraded_fallbacks_total",
	Help:      "Operations answered in degraded mode without touching storage.",
})

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsActive tracks currently live achievement sessions.
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "koru",
	Name:      "sessions_active",
	Help:      "Number of active achievement sessions.",
})

// NotificationsPending tracks queued badge notifications.
var NotificationsPending = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "koru",
	Name:      "badge_notifications_pending",
	Help:      "Badge notifications queued and not yet dismissed.",
})
