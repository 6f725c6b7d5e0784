// Package metrics defines the custom Prometheus metrics of the expense tracker
// auth core. Collectors are registered with the default registry on package
// initialisation and exposed by the router at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expensetracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: "success", "validation", "duplicate" or "storage"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "authentication" or "storage"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SessionVerificationsTotal counts session token checks.
// Label:
//   - result: "valid" or "invalid"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session verifications, by result.",
	},
	[]string{"result"},
)

// ── Session hygiene ───────────────────────────────────────────────────────────

// SessionsReapedTotal counts expired sessions removed by the background sweep.
var SessionsReapedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_reaped_total",
		Help:      "Total number of expired sessions deleted by the reaper.",
	},
)

// ReaperErrorsTotal counts sweeps that failed.
var ReaperErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_reaper_errors_total",
		Help:      "Total number of failed session reaper sweeps.",
	},
)

// ── Profile cache ─────────────────────────────────────────────────────────────

// UserCacheLookupsTotal counts profile cache lookups.
// Label:
//   - result: "hit" or "miss"
var UserCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_lookups_total",
		Help:      "Total number of user profile cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Expense metrics ───────────────────────────────────────────────────────────

// ExpensesCreatedTotal counts expenses recorded through the API.
var ExpensesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_created_total",
		Help:      "Total number of expenses created.",
	},
)
