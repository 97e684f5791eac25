// Package config defines the server configuration structure.
package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.App.Env != EnvDevelopment {
		t.Errorf("App.Env = %q, want %q", cfg.App.Env, EnvDevelopment)
	}
	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Security.CSRF.TTL != 15*time.Minute {
		t.Errorf("CSRF.TTL = %v, want 15m", cfg.Security.CSRF.TTL)
	}

	// Limiter defaults
	if cfg.RateLimit.Chat.Max != 10 || cfg.RateLimit.Chat.Window != time.Minute {
		t.Errorf("chat limiter = %d/%v, want 10/1m", cfg.RateLimit.Chat.Max, cfg.RateLimit.Chat.Window)
	}
	if cfg.RateLimit.Global.Max != 100 || cfg.RateLimit.Global.Window != 15*time.Minute {
		t.Errorf("global limiter = %d/%v, want 100/15m", cfg.RateLimit.Global.Max, cfg.RateLimit.Global.Window)
	}
	if cfg.RateLimit.Store != "memory" {
		t.Errorf("RateLimit.Store = %q, want memory", cfg.RateLimit.Store)
	}
	if cfg.RateLimit.Unidentified != "shared" {
		t.Errorf("RateLimit.Unidentified = %q, want shared", cfg.RateLimit.Unidentified)
	}

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestDefault_Verifies(t *testing.T) {
	if err := Verify(Default()); err != nil {
		t.Fatalf("Verify(Default()) = %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Security.CSRF.Secret = "super-secret-key-1234567890"
	cfg.Chat.OpenAI.APIKey = "sk-test-1234"
	cfg.AWS.SecretAccessKey = "aws-secret"

	sanitized := Sanitize(cfg)

	// Original should be unchanged
	if cfg.Security.CSRF.Secret != "super-secret-key-1234567890" {
		t.Error("Original config should not be modified")
	}

	if sanitized.Security.CSRF.Secret == cfg.Security.CSRF.Secret {
		t.Error("Sanitized config should mask the CSRF secret")
	}
	if len(sanitized.Security.CSRF.Secret) != len(cfg.Security.CSRF.Secret) {
		t.Errorf("Masked secret length = %d, want %d", len(sanitized.Security.CSRF.Secret), len(cfg.Security.CSRF.Secret))
	}
	if sanitized.Chat.OpenAI.APIKey != "sk********34" {
		t.Errorf("OpenAI.APIKey = %q", sanitized.Chat.OpenAI.APIKey)
	}
	if strings.Contains(sanitized.AWS.SecretAccessKey, "secret") {
		t.Errorf("AWS secret leaked: %q", sanitized.AWS.SecretAccessKey)
	}
}

func TestSanitize_EmptyKey(t *testing.T) {
	sanitized := Sanitize(Default())

	if sanitized.Security.CSRF.Secret != "" {
		t.Error("Empty secret should remain empty")
	}
	if sanitized.Chat.Speech.APIKey != "" {
		t.Error("Empty API key should remain empty")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"a", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"abcdef", "ab**ef"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		result := maskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestVerify(t *testing.T) {
	strong := strings.Repeat("k", MinSecretLength)

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"default", func(*ServerConfig) {}, ""},
		{"unknown env", func(c *ServerConfig) { c.App.Env = "staging" }, "app.env"},
		{"empty addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "server.http.addr"},
		{"zero max body", func(c *ServerConfig) { c.Server.HTTP.MaxBody = 0 }, "maxbody"},
		{"zero ttl", func(c *ServerConfig) { c.Security.CSRF.TTL = 0 }, "ttl"},
		{"tls cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCert = "cert.pem" }, "tlskey"},
		{"unknown store", func(c *ServerConfig) { c.RateLimit.Store = "etcd" }, "ratelimit.store"},
		{"redis without addr", func(c *ServerConfig) {
			c.RateLimit.Store = "redis"
			c.RateLimit.Redis.Addr = ""
		}, "ratelimit.redis.addr"},
		{"badger without dir", func(c *ServerConfig) {
			c.RateLimit.Store = "badger"
			c.RateLimit.Badger.Dir = ""
		}, "ratelimit.badger.dir"},
		{"unknown policy", func(c *ServerConfig) { c.RateLimit.Unidentified = "deny" }, "unidentified"},
		{"chat max zero", func(c *ServerConfig) { c.RateLimit.Chat.Max = 0 }, "ratelimit.chat.max"},
		{"global window zero", func(c *ServerConfig) { c.RateLimit.Global.Window = 0 }, "ratelimit.global.window"},
		{"no model", func(c *ServerConfig) { c.Chat.Model = "" }, "chat.model"},
		{"negative rps", func(c *ServerConfig) { c.Chat.UpstreamRPS = -1 }, "upstreamrps"},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},

		{"production without secret", func(c *ServerConfig) { c.App.Env = EnvProduction }, "required"},
		{"production short secret", func(c *ServerConfig) {
			c.App.Env = EnvProduction
			c.Security.CSRF.Secret = "short"
		}, "at least"},
		{"production placeholder", func(c *ServerConfig) {
			c.App.Env = EnvProduction
			c.Security.CSRF.Secret = "digital-business-card-secret-key-2024"
		}, "placeholder"},
		{"production strong secret", func(c *ServerConfig) {
			c.App.Env = EnvProduction
			c.Security.CSRF.Secret = strong
		}, ""},
		{"production secret id", func(c *ServerConfig) {
			c.App.Env = EnvProduction
			c.Security.CSRF.SecretID = "cardchat/csrf"
		}, ""},
		{"development short secret", func(c *ServerConfig) { c.Security.CSRF.Secret = "dev" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerifySecret(t *testing.T) {
	if err := VerifySecret("", false); err != nil {
		t.Errorf("VerifySecret(empty, dev) = %v, want nil", err)
	}
	if err := VerifySecret("Digital-Business-Card-Secret-Key-2024", true); err == nil {
		t.Error("placeholder check should ignore case")
	}
	if err := VerifySecret(strings.Repeat("x", MinSecretLength-1), true); err == nil {
		t.Error("secret one byte short should be rejected")
	}
}
