package e2e

import (
	"bytes"
	"chat-dm/auth"
	"chat-dm/cache"
	"chat-dm/contract"
	"chat-dm/domain"
	"chat-dm/notify"
	"chat-dm/realtime"
	"chat-dm/repositories"
	"chat-dm/services"
	"chat-dm/ui"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gookit/color"
	_ "github.com/lib/pq"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"
)

const waitFor = 5 * time.Second

type store interface {
	contract.IStore
	PutProfile(ctx context.Context, p domain.Profile) error
}

type feed interface {
	contract.ChangeSource
	contract.ChangePublisher
}

type redisFeed struct {
	*realtime.RedisSource
	*realtime.RedisPublisher
}

// Output collects what a client printed on its terminal.
type Output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *Output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

// Client is one signed-in user with its own cache, controller and channel.
type Client struct {
	ID       string
	Name     string
	Service  *services.ConversationService
	Terminal *ui.Terminal
	Output   *Output
	channel  *realtime.Channel
	queries  *cache.Cache
}

func (c *Client) close() {
	c.channel.Close()
	c.Service.Close()
	c.queries.Close()
}

// BaseSuite wires clients on a store and a realtime feed they all share.
type BaseSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger

	store    store
	feed     feed
	cleanups []func()
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Log = logs.GetLoggerFromLevel(slog.LevelWarn)
}

func (s *BaseSuite) SetupTest() {
	s.feed = s.openFeed()
	s.store = s.openStore(s.feed)
}

func (s *BaseSuite) TearDownTest() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

func (s *BaseSuite) openFeed() feed {
	if s.Config.RedisAddr == "" {
		return realtime.NewHub()
	}
	rdb := redis.NewClient(&redis.Options{Addr: s.Config.RedisAddr})
	s.Require().NoError(rdb.Ping(context.Background()).Err(), "Redis unreachable at "+s.Config.RedisAddr)
	s.cleanups = append(s.cleanups, func() { _ = rdb.Close() })
	return redisFeed{realtime.NewRedisSource(rdb, s.Log), realtime.NewRedisPublisher(rdb)}
}

func (s *BaseSuite) openStore(publisher contract.ChangePublisher) store {
	if s.Config.Store == "embedded" {
		db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
		s.Require().NoError(err)
		s.cleanups = append(s.cleanups, func() { _ = db.Close() })
		return repositories.NewEmbeddedStore(db, s.Log, repositories.WithEmbeddedPublisher(publisher))
	}

	dialect, ok := repositories.DialectByName(s.Config.Store)
	s.Require().True(ok, "unknown E2E_STORE "+s.Config.Store)
	dsn := s.Config.DatabaseURL
	if dialect.Name == repositories.SQLite.Name {
		dsn = ":memory:"
	}
	db, err := sql.Open(dialect.DriverName, dsn)
	s.Require().NoError(err)
	if dialect.Name == repositories.SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	s.cleanups = append(s.cleanups, func() { _ = db.Close() })
	st := repositories.NewSQLStore(db, dialect, s.Log, repositories.WithPublisher(publisher))
	s.Require().NoError(st.Migrate(context.Background()))
	return st
}

// NewClient signs in a fresh user. Ids are random so runs against a shared
// database do not see each other.
func (s *BaseSuite) NewClient(name string) *Client {
	id := uuid.NewString()
	s.Require().NoError(s.store.PutProfile(context.Background(), domain.Profile{ID: id, Username: name}))

	output := &Output{}
	terminal := ui.NewTerminal(output, ui.WithColours(false))
	queries := cache.New(s.Log)
	service := services.NewConversationService(
		s.store, auth.Static(id), queries, terminal, notify.New(terminal, s.Log), s.Log,
		services.WithQueryOptions(cache.ConversationOptions().WithRetryDelay(10*time.Millisecond)),
	)
	channel := realtime.NewChannel(s.feed, id, service, s.Log, 20*time.Millisecond)
	service.AttachRealtime(channel)

	c := &Client{ID: id, Name: name, Service: service, Terminal: terminal, Output: output, channel: channel, queries: queries}
	s.cleanups = append(s.cleanups, c.close)
	return c
}

// Open makes peer the active conversation of c and waits for the feed.
func (s *BaseSuite) Open(c *Client, peer *Client) {
	c.Service.SetActiveConversation(peer.ID)
	s.Require().Eventually(c.Service.IsConnected, waitFor, 5*time.Millisecond, c.Name+" never connected")
}

// Step prints a colorized header and runs fn as a subtest.
func (s *BaseSuite) Step(name string, fn func()) bool {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	return s.Run(name, fn)
}

// WaitMessages blocks until the observed conversation satisfies cond.
func (s *BaseSuite) WaitMessages(o *cache.Observation[[]domain.Message], cond func([]domain.Message) bool) []domain.Message {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	snap, err := o.WaitFor(ctx, func(snap cache.Snapshot[[]domain.Message]) bool {
		return snap.Settled() && snap.Err == nil && cond(snap.Value)
	})
	s.Require().NoError(err, "conversation never reached the expected state: %+v", snap.Value)
	return snap.Value
}

func (s *BaseSuite) WaitChatUsers(o *cache.Observation[[]domain.ChatUser], cond func([]domain.ChatUser) bool) []domain.ChatUser {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	snap, err := o.WaitFor(ctx, func(snap cache.Snapshot[[]domain.ChatUser]) bool {
		return snap.Settled() && snap.Err == nil && cond(snap.Value)
	})
	s.Require().NoError(err, "chat users never reached the expected state: %+v", snap.Value)
	return snap.Value
}

// WaitNotification blocks until c printed a notification with content.
func (s *BaseSuite) WaitNotification(c *Client, content string) {
	line := fmt.Sprintf("🔔 %s: %s", notify.Title, content)
	s.Require().Eventually(func() bool { return strings.Contains(c.Output.String(), line) },
		waitFor, 5*time.Millisecond, c.Name+" was not notified of "+content)
}
