package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns its own registry so several instances can coexist in tests.
type Recorder struct {
	registry       *prometheus.Registry
	reportsCreated prometheus.Counter
	verdicts       *prometheus.CounterVec
	narratives     *prometheus.CounterVec
	projections    prometheus.Counter
	scores         *prometheus.HistogramVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		reportsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideascope_reports_created_total",
			Help: "Total number of feasibility reports created",
		}),
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ideascope_verdicts_total",
			Help: "Verdicts issued per mode",
		}, []string{"mode", "verdict"}),
		narratives: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ideascope_narrative_requests_total",
			Help: "Narrative generation outcomes per provider",
		}, []string{"provider", "status"}),
		projections: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideascope_projections_total",
			Help: "Total number of revenue projections computed",
		}),
		scores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ideascope_feasibility_score",
			Help:    "Distribution of feasibility scores per mode",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"mode"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ideascope_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (r *Recorder) ReportCreated() {
	r.reportsCreated.Inc()
}

// ScoreObserved records one mode's score and verdict.
func (r *Recorder) ScoreObserved(mode, verdict string, score int) {
	r.verdicts.WithLabelValues(mode, verdict).Inc()
	r.scores.WithLabelValues(mode).Observe(float64(score))
}

func (r *Recorder) NarrativeRequest(provider, status string) {
	r.narratives.WithLabelValues(provider, status).Inc()
}

func (r *Recorder) ProjectionComputed() {
	r.projections.Inc()
}

func (r *Recorder) HTTPRequest(route, method string, status int, elapsed time.Duration) {
	r.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
