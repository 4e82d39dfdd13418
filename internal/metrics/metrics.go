// Package metrics holds the Prometheus collectors recorded during a run.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder owns a private registry and the collectors registered on it.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	providerAPICalls   *prometheus.CounterVec
	providerAPILatency *prometheus.HistogramVec
	remoteCommands     *prometheus.CounterVec
	remoteAttempts     prometheus.Histogram
	nodesLaunched      *prometheus.CounterVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		providerAPICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hdpctl",
				Subsystem: "provider",
				Name:      "api_calls_total",
				Help:      "Total number of cloud provider API calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		providerAPILatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hdpctl",
				Subsystem: "provider",
				Name:      "api_latency_seconds",
				Help:      "Latency of cloud provider API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"operation"},
		),
		remoteCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hdpctl",
				Subsystem: "remote",
				Name:      "commands_total",
				Help:      "Total number of remote operations by final result",
			},
			[]string{"result"},
		),
		remoteAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "hdpctl",
				Subsystem: "remote",
				Name:      "command_attempts",
				Help:      "Attempts needed per remote operation",
				Buckets:   []float64{1, 2, 3},
			},
		),
		nodesLaunched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hdpctl",
				Subsystem: "nodes",
				Name:      "launched_total",
				Help:      "Total number of instances requested by role",
			},
			[]string{"role"},
		),
	}

	r.registry.MustRegister(
		r.providerAPICalls,
		r.providerAPILatency,
		r.remoteCommands,
		r.remoteAttempts,
		r.nodesLaunched,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAPICall records one provider call that started at start.
func (r *Recorder) ObserveAPICall(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.providerAPICalls.WithLabelValues(operation, result(err)).Inc()
	r.providerAPILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveRemoteCommand records the outcome of one retried remote operation.
func (r *Recorder) ObserveRemoteCommand(attempts int, err error) {
	if r == nil {
		return
	}
	r.remoteCommands.WithLabelValues(result(err)).Inc()
	r.remoteAttempts.Observe(float64(attempts))
}

// AddNodesLaunched counts n instances requested for role.
func (r *Recorder) AddNodesLaunched(role string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.nodesLaunched.WithLabelValues(role).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, log logr.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server stopped")
		}
	}()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
