// internal/interest/metrics.go

package interest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	interestsExpressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_expressed_total",
			Help: "Total number of interest expressions",
		},
		[]string{"outcome"}, // created, reactivated, existing
	)

	interestTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_transitions_total",
			Help: "Total number of interest status transitions",
		},
		[]string{"to"},
	)

	answersSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interest_answers_submitted_total",
			Help: "Total number of screening answers submitted",
		},
	)

	screeningCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interest_screening_completed_total",
			Help: "Total number of interests reaching full unlock",
		},
	)

	waliUnlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interest_wali_contact_unlocks_total",
			Help: "Total number of mutual acceptances unlocking wali contact",
		},
	)
)

func recordExpressed(outcome string) {
	interestsExpressedTotal.WithLabelValues(outcome).Inc()
}

func recordTransition(to Status) {
	interestTransitionsTotal.WithLabelValues(string(to)).Inc()
}

func recordAnswer() {
	answersSubmittedTotal.Inc()
}

func recordCompletion() {
	screeningCompletedTotal.Inc()
}

func recordWaliUnlock() {
	waliUnlocksTotal.Inc()
}
