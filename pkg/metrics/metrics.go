// Package metrics records pipeline stage timings and failures with
// Prometheus and exposes them over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Sonify-Go/pkg/music"
)

// Stages implements music.Observer.
type Stages struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

var _ music.Observer = (*Stages)(nil)

// New registers the stage collectors, along with the Go runtime and
// process collectors, on a fresh registry.
func New() *Stages {
	s := &Stages{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sonify",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sonify",
			Name:      "stage_failures_total",
			Help:      "Pipeline stage failures by error kind.",
		}, []string{"stage", "kind"}),
	}
	s.registry.MustRegister(
		s.duration,
		s.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// ObserveStage records elapsed for stage and counts err by kind.
func (s *Stages) ObserveStage(stage string, elapsed time.Duration, err error) {
	s.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		s.failures.WithLabelValues(stage, kindLabel(err)).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Stages) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func kindLabel(err error) string {
	switch music.Kind(err) {
	case music.ErrUpstreamAuth:
		return "upstream_auth"
	case music.ErrUpstreamWeather:
		return "upstream_weather"
	case music.ErrMoodInference:
		return "mood_inference"
	case music.ErrUpstreamSearch:
		return "upstream_search"
	case music.ErrNoPlaylistFound:
		return "no_playlist_found"
	default:
		return "other"
	}
}
