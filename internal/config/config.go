package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Server-side key used for all Gemini text generation calls.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`

	// LinkedIn OAuth application credentials. Never logged.
	LinkedInClientID     string `envconfig:"LINKEDIN_CLIENT_ID" required:"true"`
	LinkedInClientSecret string `envconfig:"LINKEDIN_CLIENT_SECRET" required:"true"`
	LinkedInRedirectURI  string `envconfig:"LINKEDIN_REDIRECT_URI" default:"http://localhost:3000/auth/linkedin/callback"`

	// Stripe billing settings
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceMonthly  string `envconfig:"STRIPE_PRICE_MONTHLY"`
	StripeReturnURL     string `envconfig:"STRIPE_RETURN_URL" default:"http://localhost:3000/account"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
