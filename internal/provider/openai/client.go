// Package openai implements service.Completer over the OpenAI chat
// completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

// ProviderName labels upstream metrics and errors.
const ProviderName = "openai"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrEmptyCompletion is returned when the API answers without any choices.
var ErrEmptyCompletion = errors.New("openai: empty completion")

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string

	// RPS bounds outgoing requests per second. Zero disables the throttle.
	RPS float64

	HTTP    provider.ClientConfig
	Metrics *metric.Registry
	Logger  logger.Logger
}

// Client calls POST {BaseURL}/chat/completions.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	metrics *metric.Registry
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTP.Logger == nil {
		cfg.HTTP.Logger = cfg.Logger
	}

	c := &Client{
		http:    provider.NewHTTPClient(cfg.HTTP),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		metrics: cfg.Metrics,
	}
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return c, nil
}

// Complete implements service.Completer.
func (c *Client) Complete(ctx context.Context, p domain.Prompt) (text string, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveUpstream(ProviderName, err, time.Since(start))
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("openai: throttle: %w", err)
		}
	}

	body, err := json.Marshal(completionRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		MaxTokens: p.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := provider.NewJSONRequest(ctx, c.baseURL+"/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return "", err
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
