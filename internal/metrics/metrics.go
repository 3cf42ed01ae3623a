package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation_service",
			Name:      "reservation_created_total",
			Help:      "Count of reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reservationUpdated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation_service",
			Name:      "reservation_updated_total",
			Help:      "Count of reservation updates by outcome.",
		},
		[]string{"outcome"},
	)

	reservationCanceled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservation_service",
			Name:      "reservation_canceled_total",
			Help:      "Count of reservations canceled by their owners.",
		},
	)

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation_service",
			Name:      "auth_attempts_total",
			Help:      "Count of register and login attempts by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation_service",
			Name:      "cache_lookups_total",
			Help:      "Count of cache lookups by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reservation_service",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationUpdated, reservationCanceled,
			authAttempts, cacheLookups, httpRequests)
	})
}

func IncReservationCreated(outcome string) {
	reservationCreated.WithLabelValues(outcome).Inc()
}

func IncReservationUpdated(outcome string) {
	reservationUpdated.WithLabelValues(outcome).Inc()
}

func IncReservationCanceled() {
	reservationCanceled.Inc()
}

func IncAuthAttempt(action, outcome string) {
	authAttempts.WithLabelValues(action, outcome).Inc()
}

func IncCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// StartServer serves /metrics on port until ctx is done.
func StartServer(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	log.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server error")
	}
}
