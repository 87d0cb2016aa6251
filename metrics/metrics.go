package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxquery_routes_total",
			Help: "Number of questions answered per route",
		},
		[]string{"route"},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxquery_llm_requests_total",
			Help: "Text-generation calls by prompt template and outcome",
		},
		[]string{"template", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taxquery_llm_request_duration_seconds",
			Help:    "Latency of text-generation calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"template"},
	)

	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxquery_db_queries_total",
			Help: "Generated SQL executions by outcome",
		},
		[]string{"status"},
	)

	ForecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxquery_forecasts_total",
			Help: "Forecast answers by metric",
		},
		[]string{"metric"},
	)

	SessionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taxquery_sessions_rejected_total",
			Help: "Turns rejected because the session was busy",
		},
	)
)
