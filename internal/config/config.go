// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Resolve  ResolveConfig  `yaml:"resolve" mapstructure:"resolve"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ResolveConfig tunes the orchestrator and the retry/timeout envelope.
type ResolveConfig struct {
	MaxConcurrent      int  `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxAttempts        int  `yaml:"max_attempts" mapstructure:"max_attempts"`
	AttemptTimeoutSecs int  `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	RenderTimeoutSecs  int  `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	RetryDelaySecs     int  `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	MetricOnly         bool `yaml:"metric_only" mapstructure:"metric_only"`
	SettleMillis       int  `yaml:"settle_millis" mapstructure:"settle_millis"`
}

// RenderConfig holds the headless-render service settings.
type RenderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetchConfig configures the static HTTP fetcher.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// RegistryConfig configures the in-memory job registry.
type RegistryConfig struct {
	RetentionHours int `yaml:"retention_hours" mapstructure:"retention_hours"`
}

// StoreConfig configures the optional job-history store. An empty path
// disables history.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AttemptTimeout returns the envelope's base per-attempt deadline.
func (c ResolveConfig) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutSecs) * time.Second
}

// RenderTimeout returns the per-attempt deadline rendering strategies
// request.
func (c ResolveConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSecs) * time.Second
}

// RetryDelay returns the base inter-attempt delay.
func (c ResolveConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TOOLSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("resolve.max_concurrent", 5)
	v.SetDefault("resolve.max_attempts", 3)
	v.SetDefault("resolve.attempt_timeout_secs", 15)
	v.SetDefault("resolve.render_timeout_secs", 90)
	v.SetDefault("resolve.retry_delay_secs", 2)
	v.SetDefault("resolve.metric_only", true)
	v.SetDefault("resolve.settle_millis", 3000)
	v.SetDefault("render.base_url", "http://localhost:3000")
	v.SetDefault("render.key", "")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("registry.retention_hours", 24)
	v.SetDefault("store.path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
