package generator

import "github.com/prometheus/client_golang/prometheus"

var (
	tokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "androgpt",
			Subsystem: "generation",
			Name:      "tokens_total",
			Help:      "Total number of tokens generated",
		},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "androgpt",
			Subsystem: "generation",
			Name:      "sessions_total",
			Help:      "Completed generation sessions by stop reason",
		},
		[]string{"reason"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "androgpt",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of generation sessions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	encodingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "androgpt",
			Subsystem: "generation",
			Name:      "encoding_errors_total",
			Help:      "Malformed byte sequences skipped during transcoding",
		},
	)
)

func init() {
	prometheus.MustRegister(tokensTotal, generationsTotal, generationDuration, encodingErrorsTotal)
}
