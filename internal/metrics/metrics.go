package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ritualos_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ritualos_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	CompletionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ritualos_completions_total",
			Help: "Recorded micro-action completions",
		},
		[]string{"status", "version"},
	)

	GenerationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ritualos_generation_fallbacks_total",
			Help: "Ritual generations resolved by the deterministic fallback",
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(ReqCount, ReqDuration, CompletionCount, GenerationFallbacks)
}
