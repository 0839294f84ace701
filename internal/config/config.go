package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StripeSecretKey                  string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	AdminEmails                      string        `mapstructure:"ADMIN_EMAILS"` // comma separated
	RedisURL                         string        `mapstructure:"REDIS_URL"`
	PlanCacheTTL                     time.Duration `mapstructure:"PLAN_CACHE_TTL"`
	RabbitMQURL                      string        `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange                 string        `mapstructure:"RABBITMQ_EXCHANGE"`
	GiftSweepCron                    string        `mapstructure:"GIFT_SWEEP_CRON"`
	SessionCookieSecure              bool          `mapstructure:"SESSION_COOKIE_SECURE"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"CLIENT_URL",
	"ADMIN_EMAILS",
	"REDIS_URL",
	"PLAN_CACHE_TTL",
	"RABBITMQ_URL",
	"RABBITMQ_EXCHANGE",
	"GIFT_SWEEP_CRON",
	"SESSION_COOKIE_SECURE",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PLAN_CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_EXCHANGE", "qacart.events")
	v.SetDefault("GIFT_SWEEP_CRON", "@hourly")
	v.SetDefault("SESSION_COOKIE_SECURE", true)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	return &cfg, nil
}

// AdminEmailList returns the configured admin emails, lower-cased.
func (c *Config) AdminEmailList() []string {
	var emails []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}
