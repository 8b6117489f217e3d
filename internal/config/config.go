package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Libris"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"library.db"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	// Auth configures the toy session provider. The static credentials are
	// a demo stand-in, not a security boundary.
	Auth struct {
		Secret            string        `envconfig:"AUTH_SECRET" default:"libris-dev-secret"`
		TokenTTL          time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"30m"`
		LibrarianUser     string        `envconfig:"AUTH_LIBRARIAN_USER" default:"librarian"`
		LibrarianPassword string        `envconfig:"AUTH_LIBRARIAN_PASSWORD" default:"librarian"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
