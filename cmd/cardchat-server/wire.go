package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/confloader"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/tlsroots"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider/awsx"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider/elevenlabs"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider/openai"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/config"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage/memory"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage/redisstore"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/token"
)

// devSecretBytes is the size of the secret generated when none is configured
// outside production.
const devSecretBytes = 32

// counterStore bundles the selected CounterStore with its lifecycle hooks.
type counterStore struct {
	service.CounterStore
	close   func() error
	ping    func(context.Context) error
	janitor func(ctx context.Context, interval time.Duration)
}

func (s *counterStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *counterStore) startJanitor(ctx context.Context, interval time.Duration) {
	if s.janitor != nil && interval > 0 {
		go s.janitor(ctx, interval)
	}
}

func newCounterStore(ctx context.Context, cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry) (*counterStore, error) {
	rl := cfg.RateLimit
	switch rl.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     rl.Redis.Addr,
			Password: rl.Redis.Password,
			DB:       rl.Redis.DB,
		})
		s, err := redisstore.New(ctx, client,
			redisstore.WithPrefix(rl.Redis.Prefix),
			redisstore.WithTimeout(rl.Redis.Timeout))
		if err != nil {
			client.Close()
			return nil, err
		}
		log.Info("rate limit store ready", "store", "redis", "addr", rl.Redis.Addr)
		return &counterStore{CounterStore: s, close: s.Close, ping: s.Ping}, nil

	case config.StoreBadger:
		s, err := storage.NewBadgerStore(storage.DefaultBadgerConfig(rl.Badger.Dir), log)
		if err != nil {
			return nil, err
		}
		s.RegisterMetrics(metrics.Registerer())
		log.Info("rate limit store ready", "store", "badger", "dir", rl.Badger.Dir)
		return &counterStore{CounterStore: s, close: s.Close}, nil

	default:
		s := memory.New()
		log.Info("rate limit store ready", "store", "memory")
		return &counterStore{CounterStore: s, janitor: s.RunJanitor}, nil
	}
}

// janitorInterval sweeps at the pace of the shortest window.
func janitorInterval(cfg *config.ServerConfig) time.Duration {
	d := cfg.RateLimit.Chat.Window
	if g := cfg.RateLimit.Global.Window; g > 0 && (d <= 0 || g < d) {
		d = g
	}
	return d
}

func newLimiters(cfg *config.ServerConfig, store service.CounterStore) (chat, global *service.RateLimiter, err error) {
	policy := domain.UnidentifiedPolicy(cfg.RateLimit.Unidentified)

	chatCfg := service.ChatRateLimitConfig()
	chatCfg.Max = cfg.RateLimit.Chat.Max
	chatCfg.Window = cfg.RateLimit.Chat.Window
	chatCfg.Unidentified = policy
	if chat, err = service.NewRateLimiter(chatCfg, store); err != nil {
		return nil, nil, err
	}

	globalCfg := service.GlobalRateLimitConfig()
	globalCfg.Max = cfg.RateLimit.Global.Max
	globalCfg.Window = cfg.RateLimit.Global.Window
	globalCfg.Unidentified = policy
	if global, err = service.NewRateLimiter(globalCfg, store); err != nil {
		return nil, nil, err
	}
	return chat, global, nil
}

func awsConfig(cfg *config.ServerConfig) awsx.Config {
	return awsx.Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	}
}

// resolveSecret returns the CSRF signing secret. A configured secret wins;
// otherwise it is read from Secrets Manager when an id is set. Outside
// production a missing secret is replaced by a random one.
func resolveSecret(ctx context.Context, cfg *config.ServerConfig, log logger.Logger) ([]byte, error) {
	csrf := cfg.Security.CSRF
	secret := csrf.Secret

	if secret == "" && csrf.SecretID != "" {
		loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		b, err := awsx.NewSecretLoader(awsConfig(cfg)).Load(loadCtx, csrf.SecretID)
		if err != nil {
			return nil, fmt.Errorf("load csrf secret: %w", err)
		}
		secret = string(b)
		log.Info("csrf secret loaded from secrets manager", "secret_id", csrf.SecretID)
	}

	if err := config.VerifySecret(secret, cfg.App.IsProduction()); err != nil {
		return nil, err
	}
	if secret != "" {
		return []byte(secret), nil
	}

	b, err := token.GenerateBytes(devSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("generate csrf secret: %w", err)
	}
	log.Warn("no csrf secret configured, using a random one; tokens will not survive a restart",
		"fingerprint", hex.EncodeToString(b[:4]))
	return b, nil
}

// unconfiguredCompleter answers every prompt with ErrUnavailable.
type unconfiguredCompleter struct{}

func (unconfiguredCompleter) Complete(context.Context, domain.Prompt) (string, error) {
	return "", domain.ErrUnavailable.WithDetails("chat completion is not configured")
}

func newChatService(cfg *config.ServerConfig, profile service.ProfileSource, metrics *metric.Registry, log logger.Logger) (*service.ChatService, error) {
	chatCfg := cfg.Chat

	var completer service.Completer = unconfiguredCompleter{}
	if chatCfg.OpenAI.APIKey != "" {
		c, err := openai.New(openai.Config{
			APIKey:  chatCfg.OpenAI.APIKey,
			BaseURL: chatCfg.OpenAI.BaseURL,
			RPS:     chatCfg.UpstreamRPS,
			HTTP:    provider.ClientConfig{Timeout: cfg.Server.HTTP.WriteTimeout / 2},
			Metrics: metrics,
			Logger:  log,
		})
		if err != nil {
			return nil, err
		}
		completer = c
	} else {
		log.Warn("chat.openai.apikey is not set; /api/chat will answer 503")
	}

	var opts []service.ChatOption
	if chatCfg.Speech.Enabled && chatCfg.Speech.APIKey != "" {
		synth, err := elevenlabs.New(elevenlabs.Config{
			APIKey:  chatCfg.Speech.APIKey,
			BaseURL: chatCfg.Speech.BaseURL,
			Voice:   chatCfg.Speech.Voice,
			Metrics: metrics,
			Logger:  log,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithSynthesizer(synth))

		if cfg.AWS.Bucket != "" {
			store, err := awsx.NewAudioStore(awsConfig(cfg), cfg.AWS.Bucket, awsx.WithAudioMetrics(metrics))
			if err != nil {
				return nil, err
			}
			opts = append(opts, service.WithAudioStore(store))
		}
	}

	return service.NewChatService(service.ChatConfig{
		Model:     chatCfg.Model,
		MaxTokens: chatCfg.MaxTokens,
		CacheSize: chatCfg.CacheSize,
		CacheTTL:  chatCfg.CacheTTL,
	}, profile, completer, opts...)
}

// loadKeyPair returns nil when TLS is not configured.
func loadKeyPair(cfg config.HTTPConfig) (*tlsroots.KeyPair, error) {
	if !cfg.TLSEnabled() {
		return nil, nil
	}
	return tlsroots.LoadKeyPair(cfg.TLSCert, cfg.TLSKey)
}

// watchFiles reloads the profile document when it changes, re-applies
// log.level when the config file changes and swaps in a renewed
// certificate when keyPair is non-nil.
func watchFiles(configFile string, profile *storage.FileProfile, keyPair *tlsroots.KeyPair, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}

	if err := w.Watch(profile.Path(), func(path string) {
		if err := profile.Reload(); err != nil {
			log.Error("profile reload failed", "path", path, "error", err)
			return
		}
		log.Info("profile reloaded", "path", path)
	}); err != nil {
		w.Stop()
		return nil, err
	}

	if configFile != "" {
		if err := w.Watch(configFile, func(path string) {
			cfg := config.Default()
			if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
				log.Error("config reload failed", "path", path, "error", err)
				return
			}
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level updated", "level", cfg.Log.Level)
		}); err != nil {
			w.Stop()
			return nil, err
		}
	}

	if keyPair != nil {
		reload := func(path string) {
			if err := keyPair.Reload(); err != nil {
				// A half-written pair fails here and succeeds on the next event.
				log.Warn("certificate reload failed", "path", path, "error", err)
				return
			}
			log.Info("certificate reloaded", "path", path, "not_after", keyPair.NotAfter())
		}
		certFile, keyFile := keyPair.Files()
		for _, path := range []string{certFile, keyFile} {
			if err := w.Watch(path, reload); err != nil {
				w.Stop()
				return nil, err
			}
		}
	}
	return w, nil
}
