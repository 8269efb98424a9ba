// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the service.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Database Database
	Stripe   Stripe
}

// Database holds PostgreSQL connection settings, with local-development
// defaults.
type Database struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"eventdeposits"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// Stripe holds payment processor credentials. The publishable key is served
// to clients so the payment element can boot; the secret key never leaves
// the server.
type Stripe struct {
	SecretKey      string `env:"STRIPE_SECRET_KEY,required"`
	PublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	Currency       string `env:"CURRENCY" envDefault:"eur"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
