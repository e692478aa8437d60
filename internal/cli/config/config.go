// Package config loads testbench settings from testbench.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/logging"
	"github.com/labbench/testbench/internal/web/cache"
)

// EnvPrefix is prepended to every environment override, e.g.
// TESTBENCH_SERVER_PORT for server.port.
const EnvPrefix = "TESTBENCH"

// Config represents the testbench configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	APIPrefix    string        `mapstructure:"api_prefix"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig selects the unit system cache backend.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// EventsConfig enables NATS publishing when NATSURL is set.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", events.DefaultSubjectPrefix)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatJSON)
}

// Load reads the file at path, or testbench.yaml from the working directory
// when path is empty, then applies environment overrides. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("testbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	prefix := cfg.Server.APIPrefix
	if prefix != "" {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", prefix)
		}
		if strings.HasSuffix(prefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", prefix)
		}
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	switch cfg.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got: %s", cache.BackendMemory, cache.BackendRedis, cfg.Cache.Backend)
	}
	return nil
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// CacheOptions converts the cache section for cache.New.
func (c *Config) CacheOptions() cache.Config {
	opts := cache.DefaultConfig()
	opts.Backend = c.Cache.Backend
	opts.TTL = c.Cache.TTL
	opts.RedisAddr = c.Cache.RedisAddr
	opts.RedisPassword = c.Cache.RedisPassword
	opts.RedisDB = c.Cache.RedisDB
	return opts
}

// Logging converts the log section for logging.New.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
