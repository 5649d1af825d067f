// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
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

	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visa_assessments_total",
			Help: "Completed visa assessments by assessor and band",
		},
		[]string{"assessor", "band"},
	)

	AssessmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visa_assessment_failures_total",
			Help: "Failed visa assessments by assessor and error code",
		},
		[]string{"assessor", "error_code"},
	)

	AssessorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visa_assessor_fallbacks_total",
			Help: "Assessments answered by the local assessor after a remote failure",
		},
		[]string{"from"},
	)

	DocumentChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visa_document_checks_total",
			Help: "Document validations by document and verdict",
		},
		[]string{"document", "ok"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visa_http_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "status"},
	)
)

// JobTimer tracks one job from activation to completion.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Done records the job outcome. An empty errorCode means the job completed.
func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}
