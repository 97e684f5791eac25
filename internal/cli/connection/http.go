package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultTimeout bounds a single CLI request. Chat replies can take a while
// when speech is requested.
const DefaultTimeout = 60 * time.Second

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// WithTLSConfig sets the TLS config used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if t, ok := c.client.Transport.(*http.Transport); ok {
			t.TLSClientConfig = cfg
		}
	}
}

// NewHTTPClient creates a client for server. A missing scheme means http.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	hc := cleanhttp.DefaultClient()
	hc.Timeout = DefaultTimeout

	c := &HTTPClient{
		baseURL:   baseURL,
		client:    hc,
		userAgent: "cardchat-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// Post performs a POST request with a JSON body and extra headers.
func (c *HTTPClient) Post(ctx context.Context, path string, body any, header http.Header) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, header)
}

// Do sends a request. A non-nil body is encoded as JSON.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.client.Do(req)
}

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s (retry after %ds)", msg, e.RetryAfter)
	}
	return msg
}

// ParseResponse decodes a JSON body into target and closes it.
// Responses with status >= 400 become *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error      string `json:"error"`
			Code       string `json:"code"`
			RetryAfter int    `json:"retryAfter"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
			apiErr.RetryAfter = body.RetryAfter
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
