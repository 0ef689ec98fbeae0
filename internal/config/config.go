package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/star/tlehist/internal/logging"
)

// Source kinds.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Config materialises application configuration.
type Config struct {
	Logging logging.Config `mapstructure:"logging"`
	Source  SourceConfig   `mapstructure:"source"`
	Fetch   FetchConfig    `mapstructure:"fetch"`
	Engine  EngineConfig   `mapstructure:"engine"`
	Server  ServerConfig   `mapstructure:"server"`
	Auth    AuthConfig     `mapstructure:"auth"`
}

// SourceConfig selects where snapshots are read from.
type SourceConfig struct {
	Kind          string   `mapstructure:"kind"`
	Root          string   `mapstructure:"root"`
	BaseURL       string   `mapstructure:"base_url"`
	S3            S3Config `mapstructure:"s3"`
	ManifestNames []string `mapstructure:"manifest_names"`
	ProbeTimes    []string `mapstructure:"probe_times"`
}

// S3Config locates snapshots in a bucket.
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// FetchConfig bounds snapshot retrieval.
type FetchConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBytes    int64         `mapstructure:"max_bytes"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the HTTP source circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests"`
}

// EngineConfig governs change detection.
type EngineConfig struct {
	Workers         int `mapstructure:"workers"`
	DateConcurrency int `mapstructure:"date_concurrency"`
	MaxRangeDays    int `mapstructure:"max_range_days"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string        `mapstructure:"addr"`
	TrustProxy         bool          `mapstructure:"trust_proxy"`
	MaxConcurrentPerIP int           `mapstructure:"max_concurrent_per_ip"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// Load builds configuration from file, environment, and defaults.
// Environment variables use the TLEHIST_ prefix, e.g. TLEHIST_SOURCE_ROOT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TLEHIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tlehist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.source", false)

	v.SetDefault("source.kind", SourceDir)
	v.SetDefault("source.root", "./data")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.s3.bucket", "")
	v.SetDefault("source.s3.prefix", "")
	v.SetDefault("source.s3.region", "")
	v.SetDefault("source.s3.endpoint", "")
	v.SetDefault("source.s3.use_path_style", false)
	v.SetDefault("source.manifest_names", []string{"index.json", "index.yaml"})
	v.SetDefault("source.probe_times", []string{
		"000000", "060000", "120000", "180000",
		"013008", "073008", "133008", "193008",
	})

	v.SetDefault("fetch.concurrency", 8)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.max_bytes", 50*1024*1024)
	v.SetDefault("fetch.breaker.max_requests", 3)
	v.SetDefault("fetch.breaker.interval", "30s")
	v.SetDefault("fetch.breaker.timeout", "30s")
	v.SetDefault("fetch.breaker.failure_threshold", 0.6)
	v.SetDefault("fetch.breaker.min_requests", 10)

	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.date_concurrency", 4)
	v.SetDefault("engine.max_range_days", 93)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.max_concurrent_per_ip", 2)
	v.SetDefault("server.request_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token", "")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceDir:
		if c.Source.Root == "" {
			return fmt.Errorf("source.root is required for the dir source")
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for the http source")
		}
	case SourceS3:
		if c.Source.S3.Bucket == "" {
			return fmt.Errorf("source.s3.bucket is required for the s3 source")
		}
	default:
		return fmt.Errorf("source.kind must be one of dir, http, s3 (got %q)", c.Source.Kind)
	}

	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be greater than zero")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be greater than zero")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be greater than zero")
	}
	if t := c.Fetch.Breaker.FailureThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("fetch.breaker.failure_threshold must be in (0, 1]")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be greater than zero")
	}
	if c.Engine.DateConcurrency <= 0 {
		return fmt.Errorf("engine.date_concurrency must be greater than zero")
	}
	if c.Engine.MaxRangeDays < 0 {
		return fmt.Errorf("engine.max_range_days cannot be negative")
	}
	if c.Server.MaxConcurrentPerIP <= 0 {
		return fmt.Errorf("server.max_concurrent_per_ip must be greater than zero")
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth.token is required when auth is enabled")
	}
	return nil
}
