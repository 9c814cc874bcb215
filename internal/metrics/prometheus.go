package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxLabelLen = 64

// exports Recorder events on its own registry
type PrometheusRecorder struct {
	registry *prometheus.Registry

	jobs            *prometheus.CounterVec
	jobDuration     prometheus.Histogram
	polls           *prometheus.CounterVec
	quotaRejections *prometheus.CounterVec
}

// registers the try-on collectors plus the go and process collectors
func NewPrometheus() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "iburba",
				Subsystem: "tryon",
				Name:      "jobs_total",
				Help:      "Total try-on jobs by terminal status",
			},
			[]string{"status"},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "iburba",
				Subsystem: "tryon",
				Name:      "job_duration_seconds",
				Help:      "Wall-clock duration of completed try-on jobs",
				Buckets:   []float64{1, 3, 6, 10, 15, 20, 30, 45, 60, 90},
			},
		),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "iburba",
				Subsystem: "tryon",
				Name:      "polls_total",
				Help:      "Total remote status polls by observed state",
			},
			[]string{"state"},
		),
		quotaRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "iburba",
				Subsystem: "quota",
				Name:      "rejections_total",
				Help:      "Total admissions rejected by quota scope",
			},
			[]string{"scope"},
		),
	}

	r.registry.MustRegister(
		r.jobs,
		r.jobDuration,
		r.polls,
		r.quotaRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// serves the registry in the prometheus exposition format
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *PrometheusRecorder) IncTryonJob(status string) {
	r.jobs.WithLabelValues(sanitizeLabel(status)).Inc()
}

func (r *PrometheusRecorder) ObserveTryonDuration(duration time.Duration) {
	r.jobDuration.Observe(duration.Seconds())
}

func (r *PrometheusRecorder) IncTryonPoll(state string) {
	r.polls.WithLabelValues(sanitizeLabel(state)).Inc()
}

func (r *PrometheusRecorder) IncQuotaRejection(scope string) {
	r.quotaRejections.WithLabelValues(sanitizeLabel(scope)).Inc()
}

func sanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}

	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}

	return s
}
