package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	gradesCommitted     *prometheus.CounterVec
	gradeOutOfRange     prometheus.Counter
	aiGradingFailures   *prometheus.CounterVec
	bulkJobsTotal       *prometheus.CounterVec
	bulkItemsTotal      *prometheus.CounterVec
	bulkJobsInFlight    prometheus.Gauge
	aiGradingLatency    prometheus.Histogram
	gradingEventsFailed prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edusphere_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		gradesCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_grades_committed_total",
			Help: "Grades written to submissions, by grader.",
		}, []string{"graded_by"})

		gradeOutOfRange = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edusphere_ai_grade_out_of_range_total",
			Help: "AI grades committed above the assignment total points.",
		})

		aiGradingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_ai_grading_failures_total",
			Help: "AI grading attempts that did not commit, by mode.",
		}, []string{"mode"})

		bulkJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_bulk_grading_jobs_total",
			Help: "Bulk grading jobs by lifecycle event.",
		}, []string{"event"})

		bulkItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edusphere_bulk_grading_items_total",
			Help: "Submissions processed by bulk grading, by outcome.",
		}, []string{"outcome"})

		bulkJobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edusphere_bulk_grading_jobs_in_flight",
			Help: "Bulk grading jobs currently running.",
		})

		aiGradingLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "edusphere_ai_grading_duration_seconds",
			Help:    "End-to-end duration of grading one submission with the model.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		})

		gradingEventsFailed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edusphere_grading_events_failed_total",
			Help: "Grading events that could not be published.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradesCommitted,
			gradeOutOfRange,
			aiGradingFailures,
			bulkJobsTotal,
			bulkItemsTotal,
			bulkJobsInFlight,
			aiGradingLatency,
			gradingEventsFailed,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradesCommitted counts persisted grades labelled by grader.
func GradesCommitted() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesCommitted
}

// GradeOutOfRange counts AI grades above the assignment total.
func GradeOutOfRange() prometheus.Counter {
	RegisterMetrics()
	return gradeOutOfRange
}

// AIGradingFailures counts AI grading attempts that aborted.
func AIGradingFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return aiGradingFailures
}

// BulkJobs counts bulk job lifecycle events.
func BulkJobs() *prometheus.CounterVec {
	RegisterMetrics()
	return bulkJobsTotal
}

// BulkItems counts bulk grading outcomes per submission.
func BulkItems() *prometheus.CounterVec {
	RegisterMetrics()
	return bulkItemsTotal
}

// BulkJobsInFlight tracks running bulk jobs.
func BulkJobsInFlight() prometheus.Gauge {
	RegisterMetrics()
	return bulkJobsInFlight
}

// AIGradingLatency observes single-submission AI grading time.
func AIGradingLatency() prometheus.Histogram {
	RegisterMetrics()
	return aiGradingLatency
}

// GradingEventsFailed counts failed grading event publications.
func GradingEventsFailed() prometheus.Counter {
	RegisterMetrics()
	return gradingEventsFailed
}
