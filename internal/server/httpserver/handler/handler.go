package handler

import (
	"context"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

// TokenIssuer mints CSRF tokens.
type TokenIssuer interface {
	Issue() (*domain.IssuedToken, error)
}

// ChatReplier answers visitor questions.
type ChatReplier interface {
	Reply(ctx context.Context, req *domain.ChatRequest) (*domain.ChatReply, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Config holds the collaborators of Handler.
type Config struct {
	Tokens  TokenIssuer
	Chat    ChatReplier
	Metrics *metric.Registry
	Logger  logger.Logger

	// Ready lists named dependency checks run by GET /ready.
	Ready map[string]ReadinessCheck

	// Version is reported by the health endpoints.
	Version string
}

// Handler serves the cardchat HTTP endpoints.
type Handler struct {
	tokens  TokenIssuer
	chat    ChatReplier
	metrics *metric.Registry
	logger  logger.Logger
	ready   map[string]ReadinessCheck
	version string
	now     func() time.Time
}

// New creates a Handler.
func New(cfg Config) *Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	m := cfg.Metrics
	if m == nil {
		m = metric.NewRegistry()
	}
	return &Handler{
		tokens:  cfg.Tokens,
		chat:    cfg.Chat,
		metrics: m,
		logger:  l,
		ready:   cfg.Ready,
		version: cfg.Version,
		now:     time.Now,
	}
}
