package command

import "github.com/prometheus/client_golang/prometheus"

var (
	reservationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservations_total",
			Help: "Total number of reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	commitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_commits_total",
			Help: "Total number of reservations committed to hard allocations",
		},
	)

	releasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_releases_total",
			Help: "Total number of reservations released back to the available pool",
		},
	)

	intakeUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_intake_units_total",
			Help: "Total units added to the available pool by intake kind",
		},
		[]string{"kind"},
	)

	versionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_version_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts retried",
		},
	)

	reserveLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_reserve_duration_seconds",
			Help:    "Duration of reserve command handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(reservationOutcomes)
	prometheus.MustRegister(commitsTotal)
	prometheus.MustRegister(releasesTotal)
	prometheus.MustRegister(intakeUnits)
	prometheus.MustRegister(versionConflicts)
	prometheus.MustRegister(reserveLatency)
}
