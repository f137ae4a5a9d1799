// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Worker source kinds.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Source   SourceConfig   `mapstructure:"source"`
	DB       DBConfig       `mapstructure:"db"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// UpstreamConfig points at the backend that serves the worker collection.
type UpstreamConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	WorkersPath string        `mapstructure:"workers_path"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBodySize int           `mapstructure:"max_body_bytes"`
}

// SourceConfig selects where workers are read from.
type SourceConfig struct {
	Kind string `mapstructure:"kind"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORKERLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("upstream.base_url", "http://localhost:3001")
	v.SetDefault("upstream.workers_path", "/api/workers")
	v.SetDefault("upstream.user_agent", "workerlist/0.1")
	v.SetDefault("upstream.timeout", "15s")
	v.SetDefault("upstream.max_body_bytes", 10*1024*1024)
	v.SetDefault("source.kind", SourceHTTP)
	v.SetDefault("db.table", "workers")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream.timeout must be >= 0")
	}
	switch c.Source.Kind {
	case SourceHTTP:
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("upstream.base_url is required for the http source")
		}
	case SourcePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres source")
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceHTTP, SourcePostgres, c.Source.Kind)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// RequestTimeout is the per-request budget of the HTTP server.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
