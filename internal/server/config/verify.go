// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// MinSecretLength is the minimum signing secret length accepted in production.
const MinSecretLength = 32

// placeholderSecrets are values that shipped in sample configs and must
// never sign tokens in production.
var placeholderSecrets = []string{
	"digital-business-card-secret-key-2024",
	"changeme",
	"change-me",
	"secret",
	"your-secret-here",
	"your-csrf-secret",
}

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyApp(&cfg.App); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security, cfg.App.IsProduction()); err != nil {
		return err
	}
	if err := verifyRateLimit(&cfg.RateLimit); err != nil {
		return err
	}
	if err := verifyChat(&cfg.Chat); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

// VerifySecret checks a resolved signing secret for the given environment.
// An empty secret is accepted outside production; callers generate one.
func VerifySecret(secret string, production bool) error {
	if secret == "" {
		if production {
			return errors.New("security.csrf.secret is required in production")
		}
		return nil
	}
	if !production {
		return nil
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("security.csrf.secret must be at least %d bytes in production", MinSecretLength)
	}
	if isPlaceholder(secret) {
		return errors.New("security.csrf.secret is a placeholder value")
	}
	return nil
}

func isPlaceholder(secret string) bool {
	s := strings.ToLower(strings.TrimSpace(secret))
	for _, p := range placeholderSecrets {
		if s == p {
			return true
		}
	}
	return false
}

func verifyApp(cfg *AppSection) error {
	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
		return nil
	default:
		return fmt.Errorf("app.env must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if cfg.HTTP.ReadTimeout < 0 || cfg.HTTP.WriteTimeout < 0 {
		return errors.New("server.http timeouts must not be negative")
	}
	if cfg.HTTP.MaxBody <= 0 {
		return errors.New("server.http.maxbody must be positive")
	}
	if (cfg.HTTP.TLSCert == "") != (cfg.HTTP.TLSKey == "") {
		return errors.New("server.http.tlscert and server.http.tlskey must be set together")
	}
	return nil
}

func verifySecurity(cfg *SecuritySection, production bool) error {
	if cfg.CSRF.TTL <= 0 {
		return errors.New("security.csrf.ttl must be positive")
	}
	// The secret is fetched later when it lives in Secrets Manager.
	if cfg.CSRF.Secret == "" && cfg.CSRF.SecretID != "" {
		return nil
	}
	return VerifySecret(cfg.CSRF.Secret, production)
}

func verifyRateLimit(cfg *RateLimitSection) error {
	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.Redis.Addr == "" {
			return errors.New("ratelimit.redis.addr is required for the redis store")
		}
		if cfg.Redis.Timeout <= 0 {
			return errors.New("ratelimit.redis.timeout must be positive")
		}
	case StoreBadger:
		if cfg.Badger.Dir == "" {
			return errors.New("ratelimit.badger.dir is required for the badger store")
		}
	default:
		return fmt.Errorf("ratelimit.store must be memory, redis or badger, got %q", cfg.Store)
	}

	switch cfg.Unidentified {
	case "shared", "open":
	default:
		return fmt.Errorf("ratelimit.unidentified must be shared or open, got %q", cfg.Unidentified)
	}

	if err := verifyLimiter("chat", cfg.Chat); err != nil {
		return err
	}
	return verifyLimiter("global", cfg.Global)
}

func verifyLimiter(name string, cfg LimiterConfig) error {
	if cfg.Max < 1 {
		return fmt.Errorf("ratelimit.%s.max must be at least 1", name)
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("ratelimit.%s.window must be positive", name)
	}
	return nil
}

func verifyChat(cfg *ChatSection) error {
	if cfg.Model == "" {
		return errors.New("chat.model is required")
	}
	if cfg.MaxTokens < 1 {
		return errors.New("chat.maxtokens must be at least 1")
	}
	if cfg.CacheSize < 0 {
		return errors.New("chat.cachesize must not be negative")
	}
	if cfg.CacheSize > 0 && cfg.CacheTTL <= 0 {
		return errors.New("chat.cachettl must be positive when the cache is enabled")
	}
	if cfg.UpstreamRPS < 0 {
		return errors.New("chat.upstreamrps must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not recognised", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Format)
	}
	return nil
}
