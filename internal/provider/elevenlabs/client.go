// Package elevenlabs implements service.Synthesizer over the ElevenLabs
// text-to-speech API.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

const (
	ProviderName   = "elevenlabs"
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	DefaultVoice   = "EXAVITQu4vr4xnSDxMaL"
	DefaultModel   = "eleven_multilingual_v2"

	audioMPEG     = "audio/mpeg"
	maxAudioBytes = 10 << 20
)

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Voice   string
	Model   string

	HTTP    provider.ClientConfig
	Metrics *metric.Registry
	Logger  logger.Logger
}

// Client calls POST {BaseURL}/text-to-speech/{voice}.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	voice   string
	model   string
	metrics *metric.Registry
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	LanguageCode  string        `json:"language_code,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTP.Logger == nil {
		cfg.HTTP.Logger = cfg.Logger
	}
	return &Client{
		http:    provider.NewHTTPClient(cfg.HTTP),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		voice:   cfg.Voice,
		model:   cfg.Model,
		metrics: cfg.Metrics,
	}, nil
}

// Synthesize implements service.Synthesizer. language is a BCP 47 tag;
// only its primary subtag is sent.
func (c *Client) Synthesize(ctx context.Context, text, language string) (audio *domain.Audio, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveUpstream(ProviderName, err, time.Since(start))
		}
	}()

	body, err := json.Marshal(speechRequest{
		Text:          text,
		ModelID:       c.model,
		LanguageCode:  primaryTag(language),
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}

	req, err := provider.NewJSONRequest(ctx, c.baseURL+"/text-to-speech/"+url.PathEscape(c.voice), body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", audioMPEG)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("elevenlabs: empty audio")
	}
	if len(data) > maxAudioBytes {
		return nil, errors.New("elevenlabs: audio exceeds size limit")
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = audioMPEG
	}
	return &domain.Audio{Data: data, ContentType: ct}, nil
}

func primaryTag(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}
