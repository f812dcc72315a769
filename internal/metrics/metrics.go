// Package metrics exposes prometheus instrumentation for the media
// caches, the narration pipeline and backend calls.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celestialwok_cache_lookups_total",
			Help: "Media cache lookups by cache and result",
		},
		[]string{"cache", "result"}, // result: "hit" or "miss"
	)

	narrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celestialwok_narrations_total",
			Help: "Narration requests by outcome",
		},
		[]string{"outcome"}, // "played", "dropped", "absent", "failed"
	)

	backendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "celestialwok_backend_request_duration_seconds",
			Help:    "Generative backend request duration by operation",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"op", "status"},
	)

	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celestialwok_session_transitions_total",
			Help: "Session state transitions by target state",
		},
		[]string{"state"},
	)
)

// RecordCacheLookup counts a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordNarration counts a narration outcome.
func RecordNarration(outcome string) {
	narrations.WithLabelValues(outcome).Inc()
}

// RecordBackendCall observes one backend round trip.
func RecordBackendCall(op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	backendDuration.WithLabelValues(op, status).Observe(d.Seconds())
}

// RecordTransition counts a session entering the given state.
func RecordTransition(state string) {
	transitions.WithLabelValues(state).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
