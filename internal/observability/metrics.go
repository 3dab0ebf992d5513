package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec
	buildDuration   *prometheus.HistogramVec
	stockUnits      prometheus.Gauge
	stockValue      prometheus.Gauge
	activeAlerts    *prometheus.GaugeVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmadesk_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pharmadesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmadesk_analytics_cache_requests_total",
		Help: "Analytics cache lookups by view and result.",
	}, []string{"view", "result"})
	build := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pharmadesk_analytics_build_duration_seconds",
		Help:    "Time spent deriving analytics views on cache misses.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"view"})
	units := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pharmadesk_stock_units",
		Help: "Units on hand across all batches at the last alert scan.",
	})
	value := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pharmadesk_stock_value",
		Help: "Stock value at selling price at the last alert scan.",
	})
	alerts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pharmadesk_stock_alerts",
		Help: "Active stock alerts by severity at the last alert scan.",
	}, []string{"severity"})
	registry.MustRegister(requests, duration, cache, build, units, value, alerts)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		cacheRequests:   cache,
		buildDuration:   build,
		stockUnits:      units,
		stockValue:      value,
		activeAlerts:    alerts,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveCache counts an analytics cache lookup.
func (m *Metrics) ObserveCache(view string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(view, result).Inc()
}

// ObserveBuild records how long a view took to derive.
func (m *Metrics) ObserveBuild(view string, d time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.WithLabelValues(view).Observe(d.Seconds())
}

// SetInventory publishes the stock gauges. Callers pass every severity so stale
// series drop back to zero.
func (m *Metrics) SetInventory(units int, value float64, alerts map[string]int) {
	if m == nil {
		return
	}
	m.stockUnits.Set(float64(units))
	m.stockValue.Set(value)
	for sev, n := range alerts {
		m.activeAlerts.WithLabelValues(sev).Set(float64(n))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
