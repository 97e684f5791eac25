package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/httpserver/handler"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

// Header names.
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderCSRFToken          = "X-CSRF-Token"
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// maxRequestIDLength bounds client supplied request IDs.
const maxRequestIDLength = 64

type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost one.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Limiter decides whether a client may proceed.
type Limiter interface {
	Name() string
	Allow(ctx context.Context, clientKey string) (domain.Decision, error)
}

// TokenChecker validates CSRF tokens and reports why one was rejected.
type TokenChecker interface {
	Check(raw string) error
}

// RequestID adds a unique request ID to each request.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = "req-" + ulid.Make().String()
			}

			w.Header().Set(HeaderRequestID, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP resolves the client address once and stores it in the context.
// Forwarding headers are honoured only when trustProxy is set.
func ClientIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r, trustProxy)
			next.ServeHTTP(w, r.WithContext(logger.WithClientIP(r.Context(), ip)))
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					handler.WriteError(w, http.StatusInternalServerError, domain.ErrInternal)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Observe logs each finished request and records it under route.
func Observe(route string, log logger.Logger, metrics *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			startTime, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
			if !ok {
				startTime = time.Now()
			}
			duration := time.Since(startTime)

			if metrics != nil {
				metrics.ObserveRequest(route, r.Method, wrapped.statusCode, duration)
			}

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", logger.ClientIPFromContext(r.Context()),
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests with 204.
func CORS(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := len(allowedOrigins) == 0
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token, X-Request-ID")
				h.Set("Access-Control-Expose-Headers", strings.Join([]string{
					HeaderRequestID, HeaderRetryAfter,
					HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset,
				}, ", "))
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Methods rejects requests whose method is not listed with 405.
// HEAD is not implied by GET.
func Methods(allowed ...string) Middleware {
	allow := strings.Join(allowed, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, m := range allowed {
				if r.Method == m {
					next.ServeHTTP(w, r)
					return
				}
			}
			handler.WriteMethodNotAllowed(w, allow)
		})
	}
}

// MaxBody caps the request body at n bytes.
func MaxBody(n int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit counts the request against limiter and answers 429 when the
// client is over its limit. Store failures let the request through.
func RateLimit(limiter Limiter, log logger.Logger, metrics *metric.Registry) Middleware {
	name := limiter.Name()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientIP := logger.ClientIPFromContext(ctx)

			d, err := limiter.Allow(ctx, clientIP)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request",
					"limiter", name,
					"request_id", logger.RequestIDFromContext(ctx),
					"error", err,
				)
				if metrics != nil {
					metrics.RateLimitErrors.WithLabelValues(name).Inc()
				}
				next.ServeHTTP(w, r)
				return
			}
			if metrics != nil {
				metrics.ObserveRateLimit(name, d.Allowed)
			}

			setRateLimitHeaders(w.Header(), d)

			if !d.Allowed {
				retry := d.RetryAfterSeconds()
				w.Header().Set(HeaderRetryAfter, strconv.FormatInt(retry, 10))
				log.Warn("rate limit exceeded",
					"limiter", name,
					"request_id", logger.RequestIDFromContext(ctx),
					"client_ip", clientIP,
					"retry_after", retry,
				)
				handler.WriteJSON(w, http.StatusTooManyRequests, handler.RateLimitResponse{
					Error:      domain.ErrRateLimited.Message,
					Code:       domain.CodeRateLimited,
					RetryAfter: retry,
					Limit:      d.Limit,
					Remaining:  d.Remaining,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(h http.Header, d domain.Decision) {
	h.Set(HeaderRateLimitLimit, strconv.FormatInt(d.Limit, 10))
	h.Set(HeaderRateLimitRemaining, strconv.FormatInt(d.Remaining, 10))
	if !d.ResetAt.IsZero() {
		reset := d.ResetAt.Unix()
		if d.ResetAt.Nanosecond() > 0 {
			reset++
		}
		h.Set(HeaderRateLimitReset, strconv.FormatInt(reset, 10))
	}
}

// CSRF rejects requests that do not carry a valid token in the
// X-CSRF-Token header or the JSON body field csrfToken. The body is
// restored for the next handler.
func CSRF(checker TokenChecker, log logger.Logger, metrics *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderCSRFToken)
			source := "header"
			if raw == "" {
				var err error
				raw, err = tokenFromBody(r)
				if err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						handler.WriteError(w, http.StatusRequestEntityTooLarge, domain.ErrInvalidInput.WithDetails("request body too large"))
						return
					}
					handler.WriteError(w, http.StatusBadRequest, domain.ErrInvalidInput.WithDetails("invalid request body"))
					return
				}
				source = "body"
			}

			if err := checker.Check(raw); err != nil {
				reason := domain.GetErrorCode(err)
				if metrics != nil {
					metrics.TokenValidations.WithLabelValues(strings.ToLower(reason)).Inc()
				}
				logger.L(r.Context()).Warn("CSRF token rejected",
					"reason", reason,
					"source", source,
					"token", domain.MaskCSRFToken(raw),
					"path", r.URL.Path,
				)
				handler.WriteError(w, http.StatusForbidden, domain.PublicCSRFError(err))
				return
			}

			if metrics != nil {
				metrics.TokenValidations.WithLabelValues("valid").Inc()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromBody reads the whole body, extracts csrfToken and puts the
// bytes back. A body that is not a JSON object yields no token.
func tokenFromBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	data, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))

	var probe struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", nil
	}
	return probe.CSRFToken, nil
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// getClientIP extracts the client IP from the request.
//
// With trustProxy the right-most X-Forwarded-For entry wins: it is the one
// appended by the proxy in front of us. Entries to its left come from the
// client and cannot be used as a rate-limit key.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := lastForwardedFor(r.Header.Values("X-Forwarded-For")); ip != "" {
			return ip
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	// Use net.SplitHostPort to correctly handle IPv6 addresses like [::1]:8080
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// lastForwardedFor returns the last non-empty hop across all
// X-Forwarded-For header lines.
func lastForwardedFor(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		parts := strings.Split(values[i], ",")
		for j := len(parts) - 1; j >= 0; j-- {
			if ip := strings.TrimSpace(parts[j]); ip != "" {
				return ip
			}
		}
	}
	return ""
}
