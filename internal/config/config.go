package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ProjectID      string `env:"FIREBASE_PROJECT_ID"`
	Port           string `env:"PORT" envDefault:"8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	StorageBucket  string `env:"FIREBASE_STORAGE_BUCKET"`

	// Service account used to mint V4 signed download URLs (optional).
	SignedURLServiceAccountEmail string `env:"SIGNED_URL_SERVICE_ACCOUNT_EMAIL"`

	// Payment links for priced announcements (optional).
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`

	// FCM topic notified when an announcement is published.
	MessagingTopic string `env:"MESSAGING_TOPIC" envDefault:"annonces"`

	// GOOGLE_CLOUD_PROJECT is set automatically on Cloud Run.
	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = cfg.GoogleCloudProject
	}
	if cfg.StorageBucket == "" && cfg.ProjectID != "" {
		cfg.StorageBucket = cfg.ProjectID + ".appspot.com"
	}
	return cfg, nil
}

// Configured reports whether the core backend config subset is present.
// When false the application boots against inert stub services.
func (c Config) Configured() bool {
	return c.ProjectID != ""
}

func (c Config) Origins() []string {
	out := []string{}
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
