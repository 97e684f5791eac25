// Package config defines the server configuration structure.
package config

import "time"

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Counter store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreBadger = "badger"
)

// Default configuration values.
const (
	DefaultEnv = EnvDevelopment

	DefaultHTTPAddr     = ":3001"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultMaxBody      = 16 << 10

	DefaultCSRFTTL = 15 * time.Minute

	DefaultRateLimitStore = StoreMemory
	DefaultUnidentified   = "shared"
	DefaultChatMax        = 10
	DefaultChatWindow     = time.Minute
	DefaultGlobalMax      = 100
	DefaultGlobalWindow   = 15 * time.Minute
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisPrefix    = "cardchat:rl:"
	DefaultRedisTimeout   = 500 * time.Millisecond
	DefaultBadgerDir      = "./data/ratelimit"

	DefaultProfilePath = "./profile.json"
	DefaultModel       = "gpt-4"
	DefaultMaxTokens   = 150
	DefaultCacheSize   = 256
	DefaultCacheTTL    = 10 * time.Minute
	DefaultUpstreamRPS = 5
	DefaultOpenAIURL   = "https://api.openai.com/v1"
	DefaultSpeechURL   = "https://api.elevenlabs.io/v1"
	DefaultVoice       = "EXAVITQu4vr4xnSDxMaL"

	DefaultAWSRegion = "us-east-1"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		App: AppSection{
			Env: DefaultEnv,
		},
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				CORSOrigins:  []string{"*"},
				MaxBody:      DefaultMaxBody,
			},
		},
		Security: SecuritySection{
			CSRF: CSRFConfig{
				TTL: DefaultCSRFTTL,
			},
		},
		RateLimit: RateLimitSection{
			Store:        DefaultRateLimitStore,
			Unidentified: DefaultUnidentified,
			Chat: LimiterConfig{
				Max:    DefaultChatMax,
				Window: DefaultChatWindow,
			},
			Global: LimiterConfig{
				Max:    DefaultGlobalMax,
				Window: DefaultGlobalWindow,
			},
			Redis: RedisStoreConfig{
				Addr:    DefaultRedisAddr,
				Prefix:  DefaultRedisPrefix,
				Timeout: DefaultRedisTimeout,
			},
			Badger: BadgerStoreConfig{
				Dir: DefaultBadgerDir,
			},
		},
		Chat: ChatSection{
			Profile:     DefaultProfilePath,
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			CacheSize:   DefaultCacheSize,
			CacheTTL:    DefaultCacheTTL,
			UpstreamRPS: DefaultUpstreamRPS,
			OpenAI: OpenAIConfig{
				BaseURL: DefaultOpenAIURL,
			},
			Speech: SpeechConfig{
				Enabled: true,
				Voice:   DefaultVoice,
				BaseURL: DefaultSpeechURL,
			},
		},
		AWS: AWSSection{
			Region: DefaultAWSRegion,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
