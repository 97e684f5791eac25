package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// Defaults for upstream clients.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 2
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 3 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 1 << 10
)

// ClientConfig configures NewHTTPClient.
type ClientConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Logger receives retry attempts. Nil disables retry logging.
	Logger logger.Logger
}

// NewHTTPClient returns a retrying client. Zero fields take defaults;
// a negative RetryMax disables retries.
func NewHTTPClient(cfg ClientConfig) *retryablehttp.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax == 0 {
		cfg.RetryMax = DefaultRetryMax
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = DefaultRetryWaitMin
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = DefaultRetryWaitMax
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = cfg.Timeout

	c := &retryablehttp.Client{
		HTTPClient:   hc,
		RetryWaitMin: cfg.RetryWaitMin,
		RetryWaitMax: cfg.RetryWaitMax,
		RetryMax:     cfg.RetryMax,
		Backoff:      retryablehttp.RateLimitLinearJitterBackoff,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	// Logger is an interface; assigning a nil logger.Logger would make it non-nil.
	if cfg.Logger != nil {
		c.Logger = retryablehttp.LeveledLogger(cfg.Logger)
	}
	return c
}

// APIError is a non-2xx upstream response.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// CheckResponse returns an *APIError for non-2xx responses, keeping the
// start of the body for diagnostics. The body is not closed.
func CheckResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
	}
}

// NewJSONRequest builds a POST request carrying body as JSON.
func NewJSONRequest(ctx context.Context, url string, body []byte) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
