// server/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	JWTSecret     string        `yaml:"jwt_secret"`
	ClockSkew     time.Duration `yaml:"clock_skew"`
	WebhookSecret string        `yaml:"webhook_secret"`

	AllowOrigins string `yaml:"allow_origins"`
	LogLevel     string `yaml:"log_level"`
	Pretty       bool   `yaml:"pretty"`
}

// Load reads the optional YAML file at path, then lets environment
// variables override every field. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:         "8080",
		ClockSkew:    60 * time.Second,
		AllowOrigins: "*",
		LogLevel:     "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if v := os.Getenv("LUMINA_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("CLOCK_SKEW_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CLOCK_SKEW_SECONDS: %w", err)
		}
		cfg.ClockSkew = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Pretty = v == "true" || v == "1"
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (DATABASE_URL)")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required (JWT_SECRET)")
	}

	return cfg, nil
}
