// Package metrics exposes the server's prometheus metrics and the
// HTTP service serving them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zksmt"

// Metrics used in monitoring service.
var (
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of handled requests by type and result",
			Name:      "requests_total",
			Namespace: namespace,
		},
		[]string{"type", "result"},
	)
	verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of proof verifications by routine and outcome",
			Name:      "verifications_total",
			Namespace: namespace,
		},
		[]string{"routine", "result"},
	)
	treeEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of entries in the tree",
			Name:      "tree_entries",
			Namespace: namespace,
		},
	)
)

func init() {
	prometheus.MustRegister(requests, verifications, treeEntries)
}

// AddRequest counts a handled request of the given type.
// result is one of "success", "malformed", "unauthorized" and "directory".
func AddRequest(reqType, result string) {
	requests.WithLabelValues(reqType, result).Inc()
}

// AddVerification counts one run of a verification routine.
func AddVerification(routine string, valid bool) {
	result := "rejected"
	if valid {
		result = "accepted"
	}
	verifications.WithLabelValues(routine, result).Inc()
}

// SetTreeEntries updates the tree size gauge.
func SetTreeEntries(n int) {
	treeEntries.Set(float64(n))
}
