package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvm_errors_total",
			Help: "Total number of logged errors by type.",
		},
		[]string{"type"},
	)
	PollAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvm_snapshot_poll_attempts_total",
			Help: "Snapshot status requests by outcome.",
		},
		[]string{"outcome"},
	)
	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cvm_job_data_pipeline_duration_seconds",
			Help:    "Duration of a job data request from submit to persistence.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"result"},
	)
	PipelineStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "cvm_job_data_step_duration_seconds",
			Help:       "Duration of each step of the job data pipeline.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	StoredRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvm_job_records_total",
			Help: "Job records handled by the persistence step by outcome.",
		},
		[]string{"outcome"},
	)
	FallbackRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cvm_job_fallback_records_total",
			Help: "Number of synthesized fallback job records.",
		},
	)
	AnalysesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvm_resume_analyses_total",
			Help: "Résumé analyses by result.",
		},
		[]string{"result"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvm_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cvm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ErrorsCounter,
			PollAttempts,
			PipelineDuration,
			PipelineStepDuration,
			StoredRecords,
			FallbackRecords,
			AnalysesCounter,
			HTTPRequestsTotal,
			HTTPRequestDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
