package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postboard/internal/store"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	actionsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "store",
			Name:      "actions_total",
			Help:      "Actions dispatched to session stores.",
		},
		[]string{"type"},
	)

	liveStores = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "postboard",
			Subsystem: "store",
			Name:      "live",
			Help:      "Session stores currently held in memory.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "postboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(actionsDispatched, liveStores, httpRequests, httpDuration)
}

// Handler exposes Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// StoreMiddleware counts dispatched actions by type.
func StoreMiddleware() store.Middleware {
	return func(next store.DispatchFunc) store.DispatchFunc {
		return func(a store.Action) {
			actionsDispatched.WithLabelValues(a.Type()).Inc()
			next(a)
		}
	}
}

func SetLiveStores(n int) { liveStores.Set(float64(n)) }

// unmatchedRoute labels requests no route matched, keeping the label set bounded.
const unmatchedRoute = "unmatched"

// InstrumentHTTP records request counts and latency by chi route pattern.
func InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
