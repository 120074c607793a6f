// Package config loads the service configuration.
//
// Sources, lowest precedence first:
//
//	built-in defaults
//	config.yaml (current directory or ./config, or an explicit path)
//	.env file (copied into the process environment)
//	SNIPPET_* environment variables, e.g. SNIPPET_DATABASE_DSN
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "SNIPPET"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// BaseURL is the externally visible address used in snip links.
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type HighlightConfig struct {
	Style     string `mapstructure:"style"`
	CacheSize int    `mapstructure:"cache_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/snippet.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "lms")
	v.SetDefault("highlight.style", "github")
	v.SetDefault("highlight.cache_size", 512)
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. With an empty path, a missing config.yaml is
// not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the service cannot start without. The JWT secret
// is only checked by the components that need it.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}
