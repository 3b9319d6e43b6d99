package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port        int           `yaml:"port"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StoreConfig struct {
	DataDir string `yaml:"data_dir"`
}

type AuthConfig struct {
	SecretKey        string `yaml:"secret_key"`
	AdminPassword    string `yaml:"admin_password"`
	DefaultGrantDays int    `yaml:"default_grant_days"`
	BindUA           bool   `yaml:"bind_ua"`
	AdminTokenHours  int    `yaml:"admin_token_hours"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	Backend string      `yaml:"backend"` // memory | redis
	Redis   RedisConfig `yaml:"redis"`
}

type ContentConfig struct {
	FreePreviewQuestions int `yaml:"free_preview_questions"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Content   ContentConfig   `yaml:"content"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Auth.SecretKey == "" {
		return nil, errors.New("auth.secret_key is required")
	}
	if cfg.Auth.AdminPassword == "" {
		return nil, errors.New("auth.admin_password is required")
	}
	if cfg.RateLimit.Backend == "redis" && cfg.RateLimit.Redis.URL == "" {
		return nil, errors.New("rate_limit.redis.url is required for the redis backend")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.LockTimeout <= 0 {
		cfg.Server.LockTimeout = 5 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data"
	}
	if cfg.Auth.DefaultGrantDays <= 0 {
		cfg.Auth.DefaultGrantDays = 3
	}
	if cfg.Auth.AdminTokenHours <= 0 {
		cfg.Auth.AdminTokenHours = 12
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.Content.FreePreviewQuestions <= 0 {
		cfg.Content.FreePreviewQuestions = 3
	}
}
