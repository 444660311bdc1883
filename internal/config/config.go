package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env string `env:"DEBITGATE_ENV" envDefault:"development"`

	DBUser  string `env:"DEBITGATE_POSTGRES_USER" envDefault:"postgres"`
	DBPass  string `env:"DEBITGATE_POSTGRES_PASSWORD" envDefault:"postgres"`
	DBHost  string `env:"DEBITGATE_POSTGRES_HOST" envDefault:"localhost"`
	DBPort  string `env:"DEBITGATE_POSTGRES_PORT" envDefault:"5432"`
	DBName  string `env:"DEBITGATE_POSTGRES_DB" envDefault:"debitgate"`
	SSLMode string `env:"DEBITGATE_POSTGRES_SSLMODE" envDefault:"disable"`

	RedisHost string `env:"DEBITGATE_REDIS_HOST" envDefault:"localhost"`
	RedisPort string `env:"DEBITGATE_REDIS_PORT" envDefault:"6379"`

	ApiPort string `env:"DEBITGATE_API_PORT" envDefault:"8080"`

	// BusProvider selects how authorized-charge events travel: "nats" or
	// "grpc".
	BusProvider string `env:"DEBITGATE_BUS_PROVIDER" envDefault:"nats"`

	NatsHost string `env:"DEBITGATE_NATS_HOST" envDefault:"localhost"`
	NatsPort string `env:"DEBITGATE_NATS_PORT" envDefault:"4222"`

	GRPCHost string `env:"DEBITGATE_GRPC_HOST" envDefault:"localhost"`
	GRPCPort string `env:"DEBITGATE_GRPC_PORT" envDefault:"50051"`
}

// New loads configuration from the environment (and .env, if present) and
// validates it.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.BusProvider != "nats" && cfg.BusProvider != "grpc" {
		return nil, fmt.Errorf("invalid bus provider %q, must be 'nats' or 'grpc'", cfg.BusProvider)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) NatsAddr() string {
	return fmt.Sprintf("nats://%s:%s", c.NatsHost, c.NatsPort)
}

func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%s", c.GRPCHost, c.GRPCPort)
}

func (c *Config) ApiAddr() string {
	return ":" + c.ApiPort
}
