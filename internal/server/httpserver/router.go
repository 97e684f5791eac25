package httpserver

import (
	"net/http"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/httpserver/handler"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

// Route labels used in logs and metrics.
const (
	RouteCSRFToken = "csrf_token"
	RouteChat      = "chat"
	RouteHealth    = "health"
	RouteReady     = "ready"
	RouteMetrics   = "metrics"
	RouteRoot      = "root"
	RouteNotFound  = "not_found"
)

// DefaultMaxBody is the request body cap used when none is configured.
const DefaultMaxBody = 16 << 10

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Tokens issues CSRF tokens for GET /api/csrf-token.
	Tokens handler.TokenIssuer

	// Checker validates CSRF tokens on POST /api/chat.
	Checker TokenChecker

	// Chat answers POST /api/chat.
	Chat handler.ChatReplier

	// GlobalLimiter applies to every API request. Optional.
	GlobalLimiter Limiter

	// ChatLimiter applies to POST /api/chat only. Optional.
	ChatLimiter Limiter

	Metrics *metric.Registry
	Logger  logger.Logger

	// Ready lists named readiness checks for GET /ready.
	Ready map[string]handler.ReadinessCheck

	// CORSOrigins is the list of allowed CORS origins (empty = allow all).
	CORSOrigins []string

	// TrustProxy honours X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	// MaxBody caps request bodies in bytes.
	MaxBody int64

	// Version is reported by the health endpoints.
	Version string
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	h := handler.New(handler.Config{
		Tokens:  cfg.Tokens,
		Chat:    cfg.Chat,
		Metrics: metrics,
		Logger:  log,
		Ready:   cfg.Ready,
		Version: cfg.Version,
	})

	global := func(route string, extra ...Middleware) []Middleware {
		mws := []Middleware{Observe(route, log, metrics)}
		if cfg.GlobalLimiter != nil {
			mws = append(mws, RateLimit(cfg.GlobalLimiter, log, metrics))
		}
		return append(mws, extra...)
	}

	chatChain := global(RouteChat, Methods(http.MethodPost), MaxBody(maxBody))
	if cfg.ChatLimiter != nil {
		chatChain = append(chatChain, RateLimit(cfg.ChatLimiter, log, metrics))
	}
	chatChain = append(chatChain, CSRF(cfg.Checker, log, metrics))

	mux := http.NewServeMux()

	// Registered without a method so that the 405 body and Allow header
	// come from Methods rather than from ServeMux.
	mux.Handle("/api/csrf-token", Chain(
		http.HandlerFunc(h.HandleCSRFToken),
		global(RouteCSRFToken, Methods(http.MethodGet))...,
	))
	mux.Handle("/api/chat", Chain(http.HandlerFunc(h.HandleChat), chatChain...))

	// Operational endpoints are not rate limited.
	mux.Handle("GET /health", Chain(http.HandlerFunc(h.HandleHealth), Observe(RouteHealth, log, metrics)))
	mux.Handle("GET /ready", Chain(http.HandlerFunc(h.HandleReady), Observe(RouteReady, log, metrics)))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("GET /{$}", Chain(http.HandlerFunc(h.HandleRoot), global(RouteRoot)...))
	mux.Handle("/", Chain(http.HandlerFunc(h.HandleNotFound), Observe(RouteNotFound, log, metrics)))

	return Chain(mux,
		RequestID(),
		ClientIP(cfg.TrustProxy),
		Recover(log),
		CORS(cfg.CORSOrigins),
	)
}
