package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/token"
)

// Completer produces a model reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, p domain.Prompt) (string, error)
}

// Synthesizer turns reply text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (*domain.Audio, error)
}

// AudioStore persists synthesized speech and returns a URL the browser can fetch.
type AudioStore interface {
	Put(ctx context.Context, key string, audio *domain.Audio) (string, error)
}

// ProfileSource returns the profile document the assistant answers from.
type ProfileSource interface {
	Profile() []byte
}

// StaticProfile is a ProfileSource over fixed bytes.
type StaticProfile []byte

// Profile implements ProfileSource.
func (p StaticProfile) Profile() []byte { return p }

// ChatConfig holds configuration for ChatService.
type ChatConfig struct {
	// Model is the completion model name (default: gpt-4).
	Model string

	// MaxTokens bounds the reply length (default: 150).
	MaxTokens int

	// CacheSize is the number of cached answers; 0 disables the cache.
	CacheSize int

	// CacheTTL is how long a cached answer is served (default: 10m).
	CacheTTL time.Duration
}

// DefaultChatConfig returns default configuration.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Model:     "gpt-4",
		MaxTokens: 150,
		CacheSize: 256,
		CacheTTL:  10 * time.Minute,
	}
}

// ChatService answers visitor questions about the profile owner.
type ChatService struct {
	cfg         ChatConfig
	profile     ProfileSource
	completer   Completer
	synthesizer Synthesizer // optional
	audio       AudioStore  // optional
	cache       *expirable.LRU[string, string]
	now         func() time.Time
}

// ChatOption customizes a ChatService.
type ChatOption func(*ChatService)

// WithSynthesizer enables speech replies.
func WithSynthesizer(s Synthesizer) ChatOption {
	return func(c *ChatService) { c.synthesizer = s }
}

// WithAudioStore uploads speech instead of inlining it as a data URL.
func WithAudioStore(s AudioStore) ChatOption {
	return func(c *ChatService) { c.audio = s }
}

// WithChatClock replaces the wall clock.
func WithChatClock(now func() time.Time) ChatOption {
	return func(c *ChatService) { c.now = now }
}

// NewChatService creates a ChatService.
func NewChatService(cfg ChatConfig, profile ProfileSource, completer Completer, opts ...ChatOption) (*ChatService, error) {
	if profile == nil {
		return nil, fmt.Errorf("chat: profile source is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("chat: completer is required")
	}
	def := DefaultChatConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}

	s := &ChatService{
		cfg:       cfg,
		profile:   profile,
		completer: completer,
		now:       time.Now,
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SpeechEnabled reports whether a synthesizer is configured.
func (s *ChatService) SpeechEnabled() bool {
	return s.synthesizer != nil
}

// Reply answers req. Speech failures degrade to a text-only reply.
func (s *ChatService) Reply(ctx context.Context, req *domain.ChatRequest) (*domain.ChatReply, error) {
	msg, err := domain.SanitizeMessage(req.Message)
	if err != nil {
		return nil, err
	}
	lang := normalizeLanguage(req.Language)
	log := logger.L(ctx)

	reply := &domain.ChatReply{Timestamp: s.now().UTC()}

	key := cacheKey(lang, msg)
	if s.cache != nil {
		if text, ok := s.cache.Get(key); ok {
			reply.Text = text
			reply.Cached = true
		}
	}

	if !reply.Cached {
		text, err := s.completer.Complete(ctx, domain.Prompt{
			System:    buildSystemPrompt(s.profile.Profile(), lang),
			User:      msg,
			Model:     s.cfg.Model,
			MaxTokens: s.cfg.MaxTokens,
		})
		if err != nil {
			var de *domain.DomainError
			if errors.As(err, &de) {
				return nil, de
			}
			return nil, domain.ErrUpstream.WithDetails("completion").WithCause(err)
		}
		reply.Text = strings.TrimSpace(text)
		if s.cache != nil && reply.Text != "" {
			s.cache.Add(key, reply.Text)
		}
	}

	if req.Audio && s.synthesizer != nil && reply.Text != "" {
		url, err := s.speak(ctx, reply.Text, lang)
		if err != nil {
			log.Warn("speech synthesis failed, replying with text only", "error", err)
		} else {
			reply.AudioURL = url
		}
	}

	return reply, nil
}

func (s *ChatService) speak(ctx context.Context, text, lang string) (string, error) {
	audio, err := s.synthesizer.Synthesize(ctx, text, lang)
	if err != nil {
		return "", err
	}
	if s.audio == nil {
		return "data:" + audio.ContentType + ";base64," + base64.StdEncoding.EncodeToString(audio.Data), nil
	}
	key := fmt.Sprintf("audio/%d-%s.mp3", s.now().UnixMilli(), ulid.Make().String())
	return s.audio.Put(ctx, key, audio)
}

func cacheKey(lang, msg string) string {
	return token.Hash(lang + "\x00" + strings.ToLower(msg))
}

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "en"
	}
	return lang
}

const systemPromptTemplate = `You are the assistant on a personal portfolio site. Answer visitor questions about the person described in the profile below, speaking about them in the third person. Keep answers short and friendly. If the profile does not cover a question, say so and suggest using the contact details instead.

Reply in the language with tag %q.

Profile:
%s`

func buildSystemPrompt(profile []byte, lang string) string {
	return fmt.Sprintf(systemPromptTemplate, lang, profile)
}
