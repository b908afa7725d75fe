// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StripeConfig struct {
	SecretKey     string        `yaml:"secret_key"`
	WebhookSecret string        `yaml:"webhook_secret"`
	SuccessURL    string        `yaml:"success_url"`
	CancelURL     string        `yaml:"cancel_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

// PricingConfig holds the defaults written into the pricing row when none exists yet.
type PricingConfig struct {
	Currency          string `yaml:"currency"`
	MonthlyPriceCents int64  `yaml:"monthly_price_cents"`
	YearlyPriceCents  int64  `yaml:"yearly_price_cents"`
}

type ChatConfig struct {
	FreeDailyLimit int `yaml:"free_daily_limit"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Chat     ChatConfig     `yaml:"chat"`
	Auth     AuthConfig     `yaml:"auth"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (optional), loads .env if present and
// applies environment overrides on top. The returned value is not mutated afterwards.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployments
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Pricing.MonthlyPriceCents < 1 || cfg.Pricing.YearlyPriceCents < 1 {
		return nil, errors.New("pricing defaults must be at least 1 minor unit")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.Stripe.Timeout <= 0 {
		cfg.Stripe.Timeout = 10 * time.Second
	}
	base := fmt.Sprintf("http://localhost:%d/api/v1/subscriptions", cfg.HTTP.Port)
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = base + "/success"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = base + "/cancel"
	}

	cfg.Pricing.Currency = strings.ToLower(strings.TrimSpace(cfg.Pricing.Currency))
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "usd"
	}
	if cfg.Pricing.MonthlyPriceCents == 0 {
		cfg.Pricing.MonthlyPriceCents = 999
	}
	if cfg.Pricing.YearlyPriceCents == 0 {
		cfg.Pricing.YearlyPriceCents = 9999
	}
	if cfg.Chat.FreeDailyLimit <= 0 {
		cfg.Chat.FreeDailyLimit = 10
	}
}

// applyEnv overrides file values with the environment variables used by the
// deployment manifests. Empty variables are ignored.
func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("DATABASE_URL", &cfg.Database.URL)
	str("REDIS_URL", &cfg.Redis.URL)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("STRIPE_SECRET_KEY", &cfg.Stripe.SecretKey)
	str("STRIPE_WEBHOOK_SECRET", &cfg.Stripe.WebhookSecret)
	str("STRIPE_SUCCESS_URL", &cfg.Stripe.SuccessURL)
	str("STRIPE_CANCEL_URL", &cfg.Stripe.CancelURL)
	str("STRIPE_CURRENCY", &cfg.Pricing.Currency)
	str("LOG_LEVEL", &cfg.Log.Level)

	ints := []struct {
		key string
		set func(int64)
	}{
		{"PORT", func(v int64) { cfg.HTTP.Port = int(v) }},
		{"STRIPE_MONTHLY_PRICE_CENTS", func(v int64) { cfg.Pricing.MonthlyPriceCents = v }},
		{"STRIPE_YEARLY_PRICE_CENTS", func(v int64) { cfg.Pricing.YearlyPriceCents = v }},
		{"CHAT_FREE_DAILY_LIMIT", func(v int64) { cfg.Chat.FreeDailyLimit = int(v) }},
	}
	for _, e := range ints {
		raw := strings.TrimSpace(os.Getenv(e.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", e.key, err)
		}
		e.set(v)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
