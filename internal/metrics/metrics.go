// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for denoising runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"denoise/internal/log"
)

// Recorder groups the collectors registered for one process.
type Recorder struct {
	gatherer prometheus.Gatherer

	Runs       *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	NoiseRatio prometheus.Histogram
	Active     prometheus.Gauge
}

// NewRecorder registers the collectors on reg. Pass prometheus.NewRegistry()
// in tests to stay isolated from the default registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: reg,

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "denoise_runs_total",
			Help: "Completed denoising runs by method and adaptive branch",
		}, []string{"method", "branch"}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "denoise_errors_total",
			Help: "Failed denoising runs by method and error type",
		}, []string{"method", "error_type"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "denoise_duration_seconds",
			Help:    "Engine processing time per run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method"}),

		NoiseRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "denoise_noise_ratio",
			Help:    "High-band noise ratio measured by the adaptive method",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1.0},
		}),

		Active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "denoise_runs_active",
			Help: "Runs currently in progress",
		}),
	}
}

// ObserveRun records a successful run. An empty branch is reported as "none".
func (r *Recorder) ObserveRun(method, branch string, elapsed time.Duration, noiseRatio float64, adaptive bool) {
	if r == nil {
		return
	}
	if branch == "" {
		branch = "none"
	}
	r.Runs.WithLabelValues(method, branch).Inc()
	r.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
	if adaptive {
		r.NoiseRatio.Observe(noiseRatio)
	}
}

// ObserveError records a failed run.
func (r *Recorder) ObserveError(method, errorType string) {
	if r == nil {
		return
	}
	r.Errors.WithLabelValues(method, errorType).Inc()
}

// Track increments the active gauge and returns a func that decrements it.
func (r *Recorder) Track() func() {
	if r == nil {
		return func() {}
	}
	r.Active.Inc()
	return r.Active.Dec
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("metrics: serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
