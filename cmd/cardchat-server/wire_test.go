package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/config"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

func testLogger() logger.Logger {
	l, _ := logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
	return l
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("CARDCHAT_RATELIMIT_CHAT_MAX", "3")
	t.Setenv("CSRF_SECRET", "legacy-secret")

	cfg, err := loadConfig(flags{
		envFile: filepath.Join(t.TempDir(), "missing.env"),
		addr:    ":9999",
	})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.RateLimit.Chat.Max != 3 {
		t.Errorf("chat max = %d, want 3", cfg.RateLimit.Chat.Max)
	}
	if cfg.Security.CSRF.Secret != "legacy-secret" {
		t.Errorf("secret = %q, want legacy alias value", cfg.Security.CSRF.Secret)
	}
	if cfg.Server.HTTP.Addr != ":9999" {
		t.Errorf("addr = %q, want flag value", cfg.Server.HTTP.Addr)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CARDCHAT_RATELIMIT_STORE", "etcd")

	if _, err := loadConfig(flags{}); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("loadConfig() error = %v", err)
	}
}

func TestResolveSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("configured", func(t *testing.T) {
		cfg := config.Default()
		cfg.Security.CSRF.Secret = "dev-secret"
		got, err := resolveSecret(ctx, cfg, testLogger())
		if err != nil || string(got) != "dev-secret" {
			t.Errorf("resolveSecret() = %q, %v", got, err)
		}
	})

	t.Run("generated in development", func(t *testing.T) {
		cfg := config.Default()
		a, err := resolveSecret(ctx, cfg, testLogger())
		if err != nil {
			t.Fatal(err)
		}
		b, _ := resolveSecret(ctx, cfg, testLogger())
		if len(a) != devSecretBytes || string(a) == string(b) {
			t.Errorf("generated secrets should be random and %d bytes", devSecretBytes)
		}
	})

	t.Run("production placeholder", func(t *testing.T) {
		cfg := config.Default()
		cfg.App.Env = config.EnvProduction
		cfg.Security.CSRF.Secret = "digital-business-card-secret-key-2024"
		if _, err := resolveSecret(ctx, cfg, testLogger()); err == nil {
			t.Error("placeholder secret should be rejected in production")
		}
	})

	t.Run("production missing", func(t *testing.T) {
		cfg := config.Default()
		cfg.App.Env = config.EnvProduction
		if _, err := resolveSecret(ctx, cfg, testLogger()); err == nil {
			t.Error("missing secret should be rejected in production")
		}
	})
}

func TestJanitorInterval(t *testing.T) {
	cfg := config.Default()
	if got := janitorInterval(cfg); got != time.Minute {
		t.Errorf("janitorInterval() = %v, want 1m", got)
	}
	cfg.RateLimit.Global.Window = 30 * time.Second
	if got := janitorInterval(cfg); got != 30*time.Second {
		t.Errorf("janitorInterval() = %v, want 30s", got)
	}
}

func TestNewCounterStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := newCounterStore(ctx, config.Default(), testLogger(), metric.NewRegistry())
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		if s.janitor == nil || s.ping != nil {
			t.Error("memory store should have a janitor and no ping")
		}
	})

	t.Run("badger", func(t *testing.T) {
		cfg := config.Default()
		cfg.RateLimit.Store = config.StoreBadger
		cfg.RateLimit.Badger.Dir = t.TempDir()

		s, err := newCounterStore(ctx, cfg, testLogger(), metric.NewRegistry())
		if err != nil {
			t.Fatal(err)
		}
		c, err := s.Increment(ctx, "k", time.Minute, time.Now())
		if err != nil || c.Count != 1 {
			t.Errorf("Increment() = %+v, %v", c, err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestNewLimiters(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Chat.Max = 2
	cfg.RateLimit.Unidentified = string(domain.UnidentifiedOpen)

	s, err := newCounterStore(context.Background(), cfg, testLogger(), metric.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	chat, global, err := newLimiters(cfg, s)
	if err != nil {
		t.Fatal(err)
	}
	if chat.Name() != service.LimiterChat || chat.Limit() != 2 {
		t.Errorf("chat limiter = %s/%d", chat.Name(), chat.Limit())
	}
	if global.Name() != service.LimiterGlobal || global.Window() != 15*time.Minute {
		t.Errorf("global limiter = %s/%v", global.Name(), global.Window())
	}
}

func TestNewChatService_Unconfigured(t *testing.T) {
	cfg := config.Default()
	svc, err := newChatService(cfg, service.StaticProfile(`{}`), metric.NewRegistry(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if svc.SpeechEnabled() {
		t.Error("speech should be disabled without an api key")
	}

	_, err = svc.Reply(context.Background(), &domain.ChatRequest{Message: "hello there"})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Reply() error = %v, want ErrUnavailable", err)
	}
}

func TestNewChatService_Configured(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.OpenAI.APIKey = "sk-test"
	cfg.Chat.Speech.APIKey = "xi-test"
	cfg.AWS.Bucket = "cards"

	svc, err := newChatService(cfg, service.StaticProfile(`{}`), metric.NewRegistry(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !svc.SpeechEnabled() {
		t.Error("speech should be enabled with an api key")
	}
}

func TestLoadKeyPair_Disabled(t *testing.T) {
	kp, err := loadKeyPair(config.HTTPConfig{})
	if err != nil || kp != nil {
		t.Fatalf("loadKeyPair() = %v, %v, want nil, nil", kp, err)
	}
}

func TestLoadKeyPair_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := loadKeyPair(config.HTTPConfig{
		TLSCert: filepath.Join(dir, "server.crt"),
		TLSKey:  filepath.Join(dir, "server.key"),
	})
	if err == nil {
		t.Fatal("loadKeyPair() expected error for missing files")
	}
}
