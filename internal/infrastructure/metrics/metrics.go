package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gym_ledger"

// Metrics — счётчики сервиса на отдельном реестре.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	partialFailures *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	remoteDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by outcome.",
		}, []string{"op", "outcome"}),
		partialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_partial_failures_total",
			Help:      "Operations that left the remote store inconsistent and opened a reconciliation.",
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_store_request_duration_seconds",
			Help:      "Remote store calls by collection and status. Status 0 is a transport failure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "collection", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operations,
		m.partialFailures,
		m.httpRequests,
		m.httpDuration,
		m.remoteDuration,
	)

	return m
}

// ObserveOperation считает операцию журнала с классом ошибки в качестве исхода.
func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, e.Classify(err)).Inc()
}

func (m *Metrics) IncPartialFailure(op string) {
	m.partialFailures.WithLabelValues(op).Inc()
}

// ObserveRemote подходит как remotestore.Observer.
func (m *Metrics) ObserveRemote(method, collection string, status int, elapsed time.Duration) {
	m.remoteDuration.WithLabelValues(method, collection, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler отдаёт /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
