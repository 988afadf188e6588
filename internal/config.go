package internal

import (
	"chat-dm/errors"
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreEmbedded = "embedded"

	RealtimeRedis = "redis"
	RealtimeLocal = "local"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	StoreBackend      string        `env:"STORE_BACKEND,default=sqlite"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	SQLitePath        string        `env:"SQLITE_PATH,default=chat-dm.db"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=data/badger"`
	RealtimeBackend   string        `env:"REALTIME_BACKEND,default=local"`
	RedisAddr         string        `env:"REDIS_ADDR,default=localhost:6379"`
	AuthToken         string        `env:"AUTH_TOKEN"`
	AuthSecret        string        `env:"AUTH_SECRET"`
	UserID            string        `env:"USER_ID"`
	Username          string        `env:"USERNAME"`
	RetryDelay        time.Duration `env:"RETRY_DELAY,default=1s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ConversationLimit int           `env:"CONVERSATION_LIMIT,default=100"`
	Colours           bool          `env:"COLOURS,default=true"`
}

// Load reads the configuration from the environment and checks the
// combinations the backends need.
func Load() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required with STORE_BACKEND=postgres", errors.ErrUnknownBackend)
		}
	case StoreSQLite, StoreEmbedded:
	default:
		return fmt.Errorf("%w: STORE_BACKEND=%q", errors.ErrUnknownBackend, c.StoreBackend)
	}
	switch c.RealtimeBackend {
	case RealtimeRedis, RealtimeLocal:
	default:
		return fmt.Errorf("%w: REALTIME_BACKEND=%q", errors.ErrUnknownBackend, c.RealtimeBackend)
	}
	if c.AuthToken != "" && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required to validate AUTH_TOKEN")
	}
	if c.ConversationLimit <= 0 {
		return fmt.Errorf("CONVERSATION_LIMIT must be positive, got %d", c.ConversationLimit)
	}
	return nil
}
