package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. PORTFOLIO_AUTH_SIGNING_KEY.
const envPrefix = "PORTFOLIO"

// Settings is the full runtime configuration.
type Settings struct {
	Port      string            `mapstructure:"port" validate:"required"`
	DB        DBSettings        `mapstructure:"db"`
	Log       LogSettings       `mapstructure:"log"`
	Auth      AuthSettings      `mapstructure:"auth"`
	CORS      CORSSettings      `mapstructure:"cors"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Chat      ChatSettings      `mapstructure:"chat"`
	Activity  ActivitySettings  `mapstructure:"activity"`
	Janitor   JanitorSettings   `mapstructure:"janitor"`
}

type DBSettings struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LogSettings mirrors the logger package knobs. File is optional; empty means stdout only.
type LogSettings struct {
	Level      string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `mapstructure:"max_backups" validate:"omitempty,min=1,max=50"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"omitempty,min=1,max=365"`
}

type AuthSettings struct {
	SigningKey string        `mapstructure:"signing_key" validate:"required,min=16"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"required"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`
}

// RateLimitSettings uses the limiter "<limit>-<period>" format, e.g. "10-M".
type RateLimitSettings struct {
	Public string `mapstructure:"public" validate:"required"`
}

type ChatSettings struct {
	Retention    time.Duration `mapstructure:"retention"`
	HistoryLimit int           `mapstructure:"history_limit" validate:"min=1,max=1000"`
}

type ActivitySettings struct {
	Retention time.Duration `mapstructure:"retention"`
}

type JanitorSettings struct {
	Interval time.Duration `mapstructure:"interval" validate:"required"`
}

// Validate checks that all fields in Settings are valid
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for Settings: %w", err)
	}
	if s.Log.File != "" && s.Log.MaxSizeMB == 0 {
		return errors.New("log.max_size_mb is required when log.file is set")
	}
	return nil
}

// setDefaults registers fallbacks for every key so a sparse config file still validates.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "portfolio.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("rate_limit.public", "10-M")
	v.SetDefault("chat.retention", 90*24*time.Hour)
	v.SetDefault("chat.history_limit", 200)
	v.SetDefault("activity.retention", 180*24*time.Hour)
	v.SetDefault("janitor.interval", time.Hour)
}

// Load reads configs/<name>.yml from dir (if present), then .env and PORTFOLIO_* variables.
func Load(dir, name string) (*Settings, error) {
	// .env is optional; missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(dir)
	v.SetConfigName(name)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
