package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/spf13/viper"
)

const envPrefix = "SHADOW_SOCIAL"

// CacheBackend selects the property value cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// ServerConfig holds all configuration for the server. Keys map to
// SHADOW_SOCIAL_<KEY> environment variables.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	PublicURL string `mapstructure:"PUBLIC_URL"` // Used to build the OAuth redirect URL
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	TraceExporter   string `mapstructure:"TRACE_EXPORTER"` // "none" or "stdout"

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	CacheBackend CacheBackend  `mapstructure:"CACHE_BACKEND"`
	CacheMaxTTL  time.Duration `mapstructure:"CACHE_MAX_TTL"`
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	RedisDB      int           `mapstructure:"REDIS_DB"`
	RedisPrefix  string        `mapstructure:"REDIS_PREFIX"`

	StateTTL time.Duration `mapstructure:"STATE_TTL"`

	FacebookAppID     string   `mapstructure:"FACEBOOK_APP_ID"`
	FacebookAppSecret string   `mapstructure:"FACEBOOK_APP_SECRET"`
	FacebookScopes    []string `mapstructure:"FACEBOOK_SCOPES"`
	FacebookLongLived bool     `mapstructure:"FACEBOOK_LONG_LIVED"`
}

// FacebookApp returns the Facebook app settings.
func (c *ServerConfig) FacebookApp() *domain.FacebookAppConfig {
	return &domain.FacebookAppConfig{
		AppID:     c.FacebookAppID,
		AppSecret: c.FacebookAppSecret,
		Scopes:    append([]string(nil), c.FacebookScopes...),
	}
}

// RedirectURL is the callback registered with the Facebook app.
func (c *ServerConfig) RedirectURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/facebook/oauth/callback"
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// searches the default locations.
func LoadConfigFile(path string) (*ServerConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/shadow-social/")
		v.AddConfigPath("$HOME/.shadow-social")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "shadow-social")
	v.SetDefault("TRACE_EXPORTER", "none")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "shadow_social")
	v.SetDefault("CACHE_BACKEND", string(CacheMemory))
	v.SetDefault("CACHE_MAX_TTL", "1h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "shadow-social")
	v.SetDefault("STATE_TTL", "10m")
	v.SetDefault("FACEBOOK_APP_ID", "")
	v.SetDefault("FACEBOOK_APP_SECRET", "")
	v.SetDefault("FACEBOOK_SCOPES", []string{"email", domain.ScopePagesShowList})
	v.SetDefault("FACEBOOK_LONG_LIVED", true)

	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults and env vars only.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	switch cfg.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	switch cfg.TraceExporter {
	case "none", "stdout":
	default:
		return nil, fmt.Errorf("unsupported TRACE_EXPORTER %q", cfg.TraceExporter)
	}

	return &cfg, nil
}
