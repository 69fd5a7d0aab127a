// internal/flags/metrics.go

package flags

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flag_analyses_generated_total",
			Help: "Total flag analyses generated, by result",
		},
		[]string{"result"},
	)

	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flag_analysis_cache_hits_total",
			Help: "Total flag analysis reads served from cache",
		},
	)

	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flag_verdicts_total",
			Help: "Total per-answer verdicts, by verdict",
		},
		[]string{"verdict"},
	)

	judgeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flag_judge_failures_total",
			Help: "Total failed judge calls",
		},
	)

	judgeLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flag_judge_latency_seconds",
			Help:    "Wall-clock latency of individual judge calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func recordGenerated(result string) {
	analysesGeneratedTotal.WithLabelValues(result).Inc()
}

func recordCacheHit() {
	cacheHitsTotal.Inc()
}

func recordVerdict(v Verdict) {
	verdictsTotal.WithLabelValues(string(v)).Inc()
}

func recordJudgeFailure() {
	judgeFailuresTotal.Inc()
}

func observeJudgeLatency(d time.Duration) {
	judgeLatencySeconds.Observe(d.Seconds())
}
