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
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_api_requests_total",
		Help: "Requests issued to the content API, by method and outcome kind.",
	}, []string{"method", "outcome"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_api_request_duration_seconds",
		Help:    "Latency of content API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backoffice_api_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_cache_hits_total",
		Help: "Reads served from a fresh cache entry.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_cache_misses_total",
		Help: "Reads that required a fetch.",
	})

	CacheJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_cache_joined_loads_total",
		Help: "Reads that joined a fetch already in flight for the same key.",
	})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_cache_invalidations_total",
		Help: "Cache keys marked stale by mutations.",
	})

	SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_session_transitions_total",
		Help: "Session state transitions.",
	}, []string{"from", "to"})

	PhotoBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_photo_embed_bytes",
		Help:    "Size of files embedded as data URLs.",
		Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
	})
)

// Serve exposes the default registry on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

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
