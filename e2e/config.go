package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_STORE picks the backend shared by the clients: sqlite, postgres or embedded
	Store       string `envconfig:"E2E_STORE" default:"sqlite"`
	DatabaseURL string `envconfig:"E2E_DATABASE_URL"`
	// E2E_REDIS_ADDR switches the realtime feed from the in-process hub to Redis
	RedisAddr string `envconfig:"E2E_REDIS_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
