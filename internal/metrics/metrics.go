package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run holds the counters of one command invocation. Each run has its own
// registry so nothing leaks between runs or tests.
type Run struct {
	reg      *prometheus.Registry
	kind     string
	start    time.Time
	Records  *prometheus.CounterVec
	Pages    *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Images   *prometheus.CounterVec
	Duration prometheus.Gauge
}

func NewRun(job, kind string) *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"job": job}

	return &Run{
		reg:   reg,
		kind:  kind,
		start: time.Now(),
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrapper_records_total",
			Help:        "Records processed by outcome.",
			ConstLabels: labels,
		}, []string{"kind", "outcome"}),
		Pages: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrapper_pages_total",
			Help:        "Listing pages visited by result.",
			ConstLabels: labels,
		}, []string{"kind", "result"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrapper_errors_total",
			Help:        "Errors by stage.",
			ConstLabels: labels,
		}, []string{"stage"}),
		Images: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrapper_images_total",
			Help:        "Images handled by the blob mirror by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		Duration: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "scrapper_run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
	}
}

func (r *Run) Outcome(outcome string) {
	r.Records.WithLabelValues(r.kind, outcome).Inc()
}

func (r *Run) Page(result string) {
	r.Pages.WithLabelValues(r.kind, result).Inc()
}

func (r *Run) Error(stage string) {
	r.Errors.WithLabelValues(stage).Inc()
}

func (r *Run) Image(result string) {
	r.Images.WithLabelValues(result).Inc()
}

func (r *Run) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile records the run duration and writes every metric to path
// in the format read by node_exporter's textfile collector. An empty path
// is a no-op.
func (r *Run) WriteTextfile(path string) error {
	r.Duration.Set(time.Since(r.start).Seconds())
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
