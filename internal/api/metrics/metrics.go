// Package metrics defines and registers all custom Prometheus metrics for
// the registration API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registration"

// AccountsCreatedTotal counts successful first-time registrations.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of new accounts created.",
	},
)

// AccountsReconciledTotal counts registrations resolved by updating the
// confirmation flags of an existing account instead of creating a new one.
var AccountsReconciledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_reconciled_total",
		Help:      "Total number of registrations reconciled against an existing account.",
	},
)

// ConflictsTotal counts rejected duplicate registrations.
// Label:
//   - subject: which identity key collided ("email", "username", "both")
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_total",
		Help:      "Total number of registrations rejected as duplicates, by collided key.",
	},
	[]string{"subject"},
)

// UploadsRejectedTotal counts identity documents rejected by the media-type
// whitelist.
// Label:
//   - media_type: the declared media type of the rejected upload
var UploadsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Total number of identity documents rejected for unsupported media type.",
	},
	[]string{"media_type"},
)

// ValidationFailuresTotal counts submissions with missing required fields.
var ValidationFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of submissions rejected for missing required fields.",
	},
)

// RegistrationDuration measures how long one registration takes end-to-end.
// Label:
//   - outcome: "created", "reconciled", or "error"
var RegistrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "duration_seconds",
		Help:      "Duration of registration processing from parse to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"outcome"},
)
