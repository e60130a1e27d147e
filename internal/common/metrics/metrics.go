package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifier_verifications_total",
			Help: "Total number of certificate verifications by final status",
		},
		[]string{"status", "route"},
	)

	VerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "verifier_verification_duration_seconds",
			Help: "Duration of a full certificate verification in seconds",
		},
		[]string{"route"},
	)

	CheckScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verifier_check_score",
			Help:    "Normalized score produced by each forensic check",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"check"},
	)

	CheckFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifier_check_failures_total",
			Help: "Total number of forensic check failures by check and error code",
		},
		[]string{"check", "error_code"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
