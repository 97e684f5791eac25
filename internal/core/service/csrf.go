package service

import (
	"errors"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/token"
)

// MinSecretLength is the shortest accepted signing secret in bytes.
const MinSecretLength = 32

// ErrEmptySecret is returned when a CSRFService is built without a secret.
var ErrEmptySecret = errors.New("csrf: signing secret is empty")

// CSRFConfig holds configuration for CSRFService.
type CSRFConfig struct {
	// Secret keys the HMAC. Read-only after construction.
	Secret []byte

	// TTL is how long a token stays valid (default: 15m).
	TTL time.Duration
}

// CSRFOption customizes a CSRFService.
type CSRFOption func(*CSRFService)

// WithClock replaces the wall clock. Used by tests to pin time.
func WithClock(now func() time.Time) CSRFOption {
	return func(s *CSRFService) {
		s.now = now
	}
}

// WithNonceSource replaces the nonce generator.
func WithNonceSource(fn func() (string, error)) CSRFOption {
	return func(s *CSRFService) {
		s.nonce = fn
	}
}

// CSRFService issues and validates signed anti-forgery tokens.
//
// It keeps no per-token state: a token stays valid, and may be replayed,
// until its TTL elapses.
type CSRFService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	nonce  func() (string, error)
}

// NewCSRFService creates a CSRFService. The secret is copied.
func NewCSRFService(cfg CSRFConfig, opts ...CSRFOption) (*CSRFService, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultCSRFTTL
	}

	s := &CSRFService{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    ttl,
		now:    time.Now,
		nonce:  token.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *CSRFService) TTL() time.Duration {
	return s.ttl
}

// Issue mints a new token stamped with the current time.
func (s *CSRFService) Issue() (*domain.IssuedToken, error) {
	issuedAt := s.now().UnixMilli()

	nonce, err := s.nonce()
	if err != nil {
		return nil, domain.ErrInternal.WithDetails("generate nonce").WithCause(err)
	}

	tok := domain.CSRFToken{
		IssuedAt:  issuedAt,
		Nonce:     nonce,
		Signature: token.Sign(s.secret, domain.SignedPayload(issuedAt, nonce)),
	}

	return &domain.IssuedToken{
		Token:     tok.String(),
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + s.ttl.Milliseconds(),
		ExpiresIn: int64(s.ttl / time.Second),
	}, nil
}

// Validate reports whether raw is well-formed, fresh and authentic.
// It never panics on malformed input.
func (s *CSRFService) Validate(raw string) bool {
	return s.Check(raw) == nil
}

// Check is Validate with the failure reason: ErrCSRFTokenMissing,
// ErrCSRFTokenMalformed, ErrCSRFTokenExpired or ErrCSRFTokenInvalid.
func (s *CSRFService) Check(raw string) error {
	tok, err := domain.ParseCSRFToken(raw)
	if err != nil {
		return err
	}
	if tok.Expired(s.now(), s.ttl) {
		return domain.ErrCSRFTokenExpired
	}
	if !token.Verify(s.secret, tok.Payload(), tok.Signature) {
		return domain.ErrCSRFTokenInvalid
	}
	return nil
}
