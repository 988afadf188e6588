package main

import (
	"chat-dm/auth"
	"chat-dm/cache"
	"chat-dm/contract"
	"chat-dm/domain"
	"chat-dm/internal"
	"chat-dm/notify"
	"chat-dm/realtime"
	"chat-dm/repositories"
	"chat-dm/services"
	"chat-dm/ui"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

type store interface {
	contract.IStore
	PutProfile(ctx context.Context, p domain.Profile) error
}

type transport interface {
	contract.ChangeSource
	contract.ChangePublisher
}

type redisTransport struct {
	*realtime.RedisSource
	*realtime.RedisPublisher
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Identity
	session, err := signIn(config)
	if err != nil {
		return err
	}
	selfID, ok := session.CurrentUserID()
	if !ok {
		return fmt.Errorf("no user: set AUTH_TOKEN or USER_ID")
	}

	// 3. Realtime transport
	changes, closeTransport, err := openTransport(ctx, config, log)
	if err != nil {
		return err
	}
	defer closeTransport()

	// 4. Store
	messages, closeStore, err := openStore(ctx, config, log, changes)
	if err != nil {
		return err
	}
	defer closeStore()
	if config.Username != "" {
		if err := messages.PutProfile(ctx, domain.Profile{ID: selfID, Username: config.Username}); err != nil {
			return err
		}
	}

	// 5. Controller
	var service *services.ConversationService
	terminal := ui.NewTerminal(os.Stdout,
		ui.WithColours(config.Colours),
		ui.WithFocusHandler(func() { service.Focus() }),
	)
	queries := cache.New(log)
	defer queries.Close()
	service = services.NewConversationService(
		messages, session, queries, terminal, notify.New(terminal, log), log,
		services.WithQueryOptions(cache.ConversationOptions().WithRetryDelay(config.RetryDelay)),
	)
	defer service.Close()

	channel := realtime.NewChannel(changes, selfID, service, log, config.RestartInterval)
	defer channel.Close()
	unregister := channel.OnConnectionChange(func(connected bool) {
		if connected {
			terminal.Info("● realtime connected")
		} else {
			terminal.Info("○ realtime disconnected")
		}
	})
	defer unregister()
	service.AttachRealtime(channel)

	log.Info("Client started", "user", selfID, "store", config.StoreBackend, "realtime", config.RealtimeBackend)
	return newREPL(service, terminal, os.Stdout, selfID).run(ctx, os.Stdin)
}

func signIn(config internal.Config) (*auth.Session, error) {
	if config.AuthToken == "" {
		return auth.Static(config.UserID), nil
	}
	session, err := auth.SignIn(auth.NewSigner(config.AuthSecret), config.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	return session, nil
}

func openTransport(ctx context.Context, config internal.Config, log *slog.Logger) (transport, func(), error) {
	if config.RealtimeBackend == internal.RealtimeLocal {
		return realtime.NewHub(), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", config.RedisAddr, err)
	}
	t := redisTransport{realtime.NewRedisSource(rdb, log), realtime.NewRedisPublisher(rdb)}
	return t, func() {
		log.Info("Closing Redis...")
		_ = rdb.Close()
	}, nil
}

func openStore(ctx context.Context, config internal.Config, log *slog.Logger, publisher contract.ChangePublisher) (store, func(), error) {
	if config.StoreBackend == internal.StoreEmbedded {
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		s := repositories.NewEmbeddedStore(db, log,
			repositories.WithEmbeddedPublisher(publisher),
			repositories.WithEmbeddedLimit(config.ConversationLimit),
		)
		return s, func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	}

	dialect, ok := repositories.DialectByName(config.StoreBackend)
	if !ok {
		return nil, nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}
	dsn := config.DatabaseURL
	if dialect.Name == repositories.SQLite.Name {
		dsn = config.SQLitePath
	}
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("database opening failed: %w", err)
	}
	if dialect.Name == repositories.SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	s := repositories.NewSQLStore(db, dialect, log,
		repositories.WithPublisher(publisher),
		repositories.WithConversationLimit(config.ConversationLimit),
	)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, func() {
		log.Info("Closing database...")
		_ = db.Close()
	}, nil
}
