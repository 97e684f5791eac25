// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for cardchat-server.
type ServerConfig struct {
	App       AppSection       `koanf:"app"`
	Server    ServerSection    `koanf:"server"`
	Security  SecuritySection  `koanf:"security"`
	RateLimit RateLimitSection `koanf:"ratelimit"`
	Chat      ChatSection      `koanf:"chat"`
	AWS       AWSSection       `koanf:"aws"`
	Log       LogSection       `koanf:"log"`
}

// AppSection holds deployment-wide settings.
type AppSection struct {
	// Env is "development" or "production".
	Env string `koanf:"env"`
}

// IsProduction reports whether the server runs in production mode.
func (a AppSection) IsProduction() bool {
	return a.Env == EnvProduction
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`

	// TrustProxy makes client IP resolution honour the right-most
	// X-Forwarded-For hop, then X-Real-IP.
	TrustProxy bool `koanf:"trustproxy"`

	// CORSOrigins lists allowed origins. "*" allows any origin.
	CORSOrigins []string `koanf:"corsorigins"`

	// MaxBody caps request bodies in bytes.
	MaxBody int64 `koanf:"maxbody"`

	// TLSCert and TLSKey enable HTTPS. Both or neither must be set.
	TLSCert string `koanf:"tlscert"`
	TLSKey  string `koanf:"tlskey"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// SecuritySection configures security settings.
type SecuritySection struct {
	CSRF CSRFConfig `koanf:"csrf"`
}

// CSRFConfig configures CSRF token signing.
type CSRFConfig struct {
	Secret string `koanf:"secret"`

	// SecretID names an AWS Secrets Manager secret holding the signing
	// secret. Used when Secret is empty.
	SecretID string `koanf:"secretid"`

	TTL time.Duration `koanf:"ttl"`
}

// RateLimitSection configures the request limiters and their store.
type RateLimitSection struct {
	// Store selects the counter backend: memory, redis or badger.
	Store string `koanf:"store"`

	// Unidentified is the policy for requests without a client address:
	// shared or open.
	Unidentified string `koanf:"unidentified"`

	Chat   LimiterConfig     `koanf:"chat"`
	Global LimiterConfig     `koanf:"global"`
	Redis  RedisStoreConfig  `koanf:"redis"`
	Badger BadgerStoreConfig `koanf:"badger"`
}

// LimiterConfig configures one fixed-window limiter.
type LimiterConfig struct {
	Max    int64         `koanf:"max"`
	Window time.Duration `koanf:"window"`
}

// RedisStoreConfig configures the Redis counter store.
type RedisStoreConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	Timeout  time.Duration `koanf:"timeout"`
}

// BadgerStoreConfig configures the embedded Badger counter store.
type BadgerStoreConfig struct {
	Dir string `koanf:"dir"`
}

// ChatSection configures the chat endpoint and its collaborators.
type ChatSection struct {
	// Profile is the path of the JSON profile document.
	Profile   string        `koanf:"profile"`
	Model     string        `koanf:"model"`
	MaxTokens int           `koanf:"maxtokens"`
	CacheSize int           `koanf:"cachesize"`
	CacheTTL  time.Duration `koanf:"cachettl"`

	// UpstreamRPS throttles calls to the completion API. 0 disables.
	UpstreamRPS float64 `koanf:"upstreamrps"`

	OpenAI OpenAIConfig `koanf:"openai"`
	Speech SpeechConfig `koanf:"speech"`
}

// OpenAIConfig configures the completion client.
type OpenAIConfig struct {
	APIKey  string `koanf:"apikey"`
	BaseURL string `koanf:"baseurl"`
}

// SpeechConfig configures the speech synthesis client.
type SpeechConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"apikey"`
	Voice   string `koanf:"voice"`
	BaseURL string `koanf:"baseurl"`
}

// AWSSection configures the AWS clients (audio bucket, secrets).
type AWSSection struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"accesskeyid"`
	SecretAccessKey string `koanf:"secretaccesskey"`

	// Bucket receives synthesized audio. Empty means audio is inlined.
	Bucket string `koanf:"bucket"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}
