package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cardchat"

// Registry holds the application metrics.
type Registry struct {
	reg *prometheus.Registry

	TokensIssued      prometheus.Counter
	TokenValidations  *prometheus.CounterVec   // result
	RateLimitDecision *prometheus.CounterVec   // limiter, result
	RateLimitErrors   *prometheus.CounterVec   // limiter
	RequestsTotal     *prometheus.CounterVec   // route, method, status
	RequestDuration   *prometheus.HistogramVec // route
	UpstreamDuration  *prometheus.HistogramVec // provider, result
	ChatCacheHits     prometheus.Counter
	BuildInfo         *prometheus.GaugeVec // version, commit
}

// NewRegistry creates and registers all application metrics.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "csrf",
		Name:      "tokens_issued_total",
		Help:      "CSRF tokens issued.",
	})
	r.TokenValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "csrf",
		Name:      "validations_total",
		Help:      "CSRF token validations by result.",
	}, []string{"result"})
	r.RateLimitDecision = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limit decisions by limiter and result.",
	}, []string{"limiter", "result"})
	r.RateLimitErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "errors_total",
		Help:      "Counter store failures; the request was let through.",
	}, []string{"limiter"})
	r.RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	r.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	r.UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the model, speech and storage providers.",
		Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8, 16, 32},
	}, []string{"provider", "result"})
	r.ChatCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "cache_hits_total",
		Help:      "Chat replies served from the answer cache.",
	})
	r.BuildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build metadata; the value is always 1.",
	}, []string{"version", "commit"})

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.TokensIssued,
		r.TokenValidations,
		r.RateLimitDecision,
		r.RateLimitErrors,
		r.RequestsTotal,
		r.RequestDuration,
		r.UpstreamDuration,
		r.ChatCacheHits,
		r.BuildInfo,
	)
	return r
}

// Registerer exposes the underlying registry for component metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns the /metrics HTTP handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one call to an external provider.
func (r *Registry) ObserveUpstream(provider string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.UpstreamDuration.WithLabelValues(provider, result).Observe(elapsed.Seconds())
}

// ObserveRateLimit records a limiter decision.
func (r *Registry) ObserveRateLimit(limiter string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	r.RateLimitDecision.WithLabelValues(limiter, result).Inc()
}
