package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/buildinfo"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/confloader"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/shutdown"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/config"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/httpserver"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/httpserver/handler"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configFile string
	envFile    string
	addr       string
}

func run() error {
	var (
		f           flags
		showVersion bool
	)
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&f.envFile, "env-file", ".env", "Path to a dotenv file; missing files are ignored")
	flag.StringVar(&f.addr, "addr", "", "Listen address, overrides server.http.addr")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println("cardchat-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting cardchat-server",
		"version", info.Version,
		"commit", buildinfo.ShortCommit(),
		"env", cfg.App.Env,
		"config", f.configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	secret, err := resolveSecret(ctx, cfg, log)
	if err != nil {
		return err
	}

	metrics := metric.NewRegistry()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit).Set(1)

	sh := shutdown.NewHandler(shutdownTimeout)
	sh.SetLogger(log)

	counters, err := newCounterStore(ctx, cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init rate limit store: %w", err)
	}
	sh.OnShutdown("ratelimit-store", func(context.Context) error {
		return counters.Close()
	})
	counters.startJanitor(ctx, janitorInterval(cfg))

	chatLimiter, globalLimiter, err := newLimiters(cfg, counters)
	if err != nil {
		return err
	}

	csrf, err := service.NewCSRFService(service.CSRFConfig{Secret: secret, TTL: cfg.Security.CSRF.TTL})
	if err != nil {
		return fmt.Errorf("init csrf: %w", err)
	}

	profile, err := storage.NewFileProfile(cfg.Chat.Profile)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	chat, err := newChatService(cfg, profile, metrics, log)
	if err != nil {
		return fmt.Errorf("init chat: %w", err)
	}

	ready := map[string]handler.ReadinessCheck{
		"profile": func(context.Context) error {
			if len(profile.Profile()) == 0 {
				return errors.New("profile is empty")
			}
			return nil
		},
	}
	if counters.ping != nil {
		ready["ratelimit_store"] = counters.ping
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Tokens:        csrf,
		Checker:       csrf,
		Chat:          chat,
		GlobalLimiter: globalLimiter,
		ChatLimiter:   chatLimiter,
		Metrics:       metrics,
		Logger:        log,
		Ready:         ready,
		CORSOrigins:   cfg.Server.HTTP.CORSOrigins,
		TrustProxy:    cfg.Server.HTTP.TrustProxy,
		MaxBody:       cfg.Server.HTTP.MaxBody,
		Version:       info.Version,
	})

	keyPair, err := loadKeyPair(cfg.Server.HTTP)
	if err != nil {
		return fmt.Errorf("load tls key pair: %w", err)
	}

	watcher, err := watchFiles(f.configFile, profile, keyPair, log)
	if err != nil {
		log.Warn("file watcher disabled", "error", err)
	} else {
		watcher.StartAsync()
		sh.OnShutdown("watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}

	opts := httpserver.Options{
		Addr:         cfg.Server.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}
	if keyPair != nil {
		opts.TLSConfig = keyPair.ServerConfig()
	}
	srv := httpserver.New(opts)
	sh.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr, "tls", srv.TLS())
		if err := srv.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	if err := sh.WaitContext(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the config file, legacy and prefixed
// environment variables, then command-line overrides.
func loadConfig(f flags) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithEnvFile(f.envFile)}
	if f.configFile != "" {
		opts = append(opts, confloader.WithConfigFile(f.configFile))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if f.addr != "" {
		cfg.Server.HTTP.Addr = f.addr
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	lc.Output = os.Stdout
	lc.File = cfg.Log.File

	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}
