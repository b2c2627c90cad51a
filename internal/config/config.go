package config

import (
	"errors"
	"fmt"
	"fraudwatch/pkg/suite"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the chat platform, link
// resolution, sanctions, the ops HTTP server and the scam oracle rules.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// Discord contains chat platform credentials and moderation behavior
	Discord struct {
		// Token is the bot authentication token
		Token string `env:"DISCORD_TOKEN" yaml:"token"`
		// Channel is the audit channel receiving fraud notifications
		Channel string `env:"DISCORD_CHANNEL" yaml:"channel"`
		// Ban enables punitive action (warning DM + ban) on top of notifications
		Ban bool `env:"DISCORD_BAN" yaml:"ban"`
		// DM is the warning sent to an author before the ban; empty disables it
		DM string `env:"DISCORD_DM" yaml:"dm"`
		// SafeRoles are role IDs whose holders are never scanned
		SafeRoles []string `env:"DISCORD_SAFE_ROLES" env-separator:"," yaml:"safeRoles"`
		// BanReason is recorded in the guild audit log
		BanReason string `env:"DISCORD_BAN_REASON" env-default:"Fraud." yaml:"banReason"`
		// DeleteMessageDays is the message history window removed with the ban (0-7)
		DeleteMessageDays int `env:"DISCORD_DELETE_MESSAGE_DAYS" env-default:"1" yaml:"deleteMessageDays"`
		// Status is shown as the bot's "watching" activity
		Status string `env:"DISCORD_STATUS" env-default:"for fraud" yaml:"status"`
	} `yaml:"discord"`

	// Resolver contains redirect resolution settings
	Resolver struct {
		// Disabled skips redirect resolution; extracted URLs are classified as written
		Disabled bool `env:"RESOLVER_DISABLED" yaml:"disabled"`
		// DNSTimeout bounds a single DNS exchange
		DNSTimeout time.Duration `env:"RESOLVER_DNS_TIMEOUT" env-default:"200ms" yaml:"dnsTimeout"`
		// DNSLifetime bounds the whole DNS lookup
		DNSLifetime time.Duration `env:"RESOLVER_DNS_LIFETIME" env-default:"200ms" yaml:"dnsLifetime"`
		// HeadTimeout bounds the HEAD probe
		HeadTimeout time.Duration `env:"RESOLVER_HEAD_TIMEOUT" env-default:"3s" yaml:"headTimeout"`
		// ProbesPerSecond limits outbound probes; 0 means unlimited
		ProbesPerSecond float64 `env:"RESOLVER_PROBES_PER_SECOND" env-default:"20" yaml:"probesPerSecond"`
		// ProbeBurst is the number of probes allowed at once
		ProbeBurst int `env:"RESOLVER_PROBE_BURST" env-default:"10" yaml:"probeBurst"`
		// UserAgent is sent with probes
		UserAgent string `env:"RESOLVER_USER_AGENT" yaml:"userAgent"`
	} `yaml:"resolver"`

	// Classifier contains verdict memoization settings
	Classifier struct {
		// VerdictCacheSize is the number of verdicts memoized; 0 disables memoization
		VerdictCacheSize int `env:"CLASSIFIER_VERDICT_CACHE_SIZE" env-default:"1024" yaml:"verdictCacheSize"`
		// VerdictCacheTTL is how long a verdict is reused
		VerdictCacheTTL time.Duration `env:"CLASSIFIER_VERDICT_CACHE_TTL" env-default:"10m" yaml:"verdictCacheTTL"`
	} `yaml:"classifier"`

	// Sanction contains cooldown settings
	Sanction struct {
		// Cooldown is how long a sanctioned author is ignored
		Cooldown time.Duration `env:"SANCTION_COOLDOWN" env-default:"60s" yaml:"cooldown"`
		// MaxEntries bounds the number of authors in cooldown at once
		MaxEntries int `env:"SANCTION_MAX_ENTRIES" env-default:"10000" yaml:"maxEntries"`
	} `yaml:"sanction"`

	// HTTP contains the ops server configuration
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Suite holds the scam oracle rules
	Suite suite.Config `yaml:"suite"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing work to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// ErrMissingCredentials is returned by ValidateRun when the bot cannot connect.
var ErrMissingCredentials = errors.New("discord token and channel are required")

// Load receives the path for yaml config file and returns a filled Config struct.
// Variables from a .env file in the working directory, if any, are loaded
// into the environment first; they never override variables already set.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// ValidateRun checks the settings required to connect to the platform.
func (c *Config) ValidateRun() error {
	if c.Discord.Token == "" || c.Discord.Channel == "" {
		return ErrMissingCredentials
	}
	if c.Discord.DeleteMessageDays < 0 || c.Discord.DeleteMessageDays > 7 {
		return fmt.Errorf("deleteMessageDays must be within [0, 7], got %d", c.Discord.DeleteMessageDays)
	}
	if c.Sanction.Cooldown <= 0 {
		return fmt.Errorf("sanction cooldown must be positive, got %s", c.Sanction.Cooldown)
	}

	return nil
}
