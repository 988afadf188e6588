package main

import (
	"bytes"
	"chat-dm/auth"
	"chat-dm/cache"
	"chat-dm/domain"
	"chat-dm/notify"
	"chat-dm/realtime"
	"chat-dm/repositories"
	"chat-dm/services"
	"chat-dm/ui"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestREPL(t *testing.T) (*repl, *repositories.SQLStore, *syncBuffer) {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelWarn)

	db, err := sql.Open(repositories.SQLite.DriverName, ":memory:")
	req.NoError(err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	hub := realtime.NewHub()
	store := repositories.NewSQLStore(db, repositories.SQLite, log, repositories.WithPublisher(hub))
	req.NoError(store.Migrate(context.Background()))
	req.NoError(store.PutProfile(context.Background(), domain.Profile{ID: "U2", Username: "bob"}))

	out := &syncBuffer{}
	terminal := ui.NewTerminal(out, ui.WithColours(false))
	queries := cache.New(log)
	service := services.NewConversationService(store, auth.Static("U1"), queries, terminal, notify.New(terminal, log), log,
		services.WithQueryOptions(cache.ConversationOptions().WithRetryDelay(5*time.Millisecond)))
	channel := realtime.NewChannel(hub, "U1", service, log, 10*time.Millisecond)
	service.AttachRealtime(channel)
	t.Cleanup(func() {
		channel.Close()
		service.Close()
		queries.Close()
	})
	return newREPL(service, terminal, out, "U1"), store, out
}

func TestREPL_Open_Send_And_List(t *testing.T) {
	req := require.New(t)
	r, _, out := newTestREPL(t)
	in, lines := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- r.run(context.Background(), in) }()

	// When U1 opens the conversation with U2 and writes
	_, err := io.WriteString(lines, "/open U2\n")
	req.NoError(err)
	req.Eventually(r.service.IsConnected, 2*time.Second, 5*time.Millisecond)
	_, err = io.WriteString(lines, "hello bob\n")
	req.NoError(err)

	// Then the echo refreshes the rendered conversation
	req.Eventually(func() bool { return strings.Contains(out.String(), "hello bob") }, 2*time.Second, 5*time.Millisecond)

	// When the conversation list is asked for
	_, err = io.WriteString(lines, "/users\n")
	req.NoError(err)
	req.Eventually(func() bool { return strings.Contains(out.String(), "bob") }, 2*time.Second, 5*time.Millisecond)

	_, err = io.WriteString(lines, "/quit\n")
	req.NoError(err)
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("repl did not stop")
	}
}

func TestREPL_Rejects_Commands_Without_Conversation(t *testing.T) {
	req := require.New(t)
	r, _, out := newTestREPL(t)
	ctx := context.Background()

	req.Error(r.handle(ctx, "hello"))
	req.Error(r.handle(ctx, "/read"))
	req.Error(r.handle(ctx, "/clear"))
	req.Error(r.handle(ctx, "/search x"))
	req.Error(r.handle(ctx, "/open"))
	req.Error(r.handle(ctx, "/nope"))
	req.ErrorIs(r.handle(ctx, "/quit"), errQuit)
	req.NoError(r.handle(ctx, "/help"))
	req.Contains(out.String(), "/open <user>")
}

func TestREPL_Clear_Empties_Conversation(t *testing.T) {
	req := require.New(t)
	r, store, out := newTestREPL(t)
	ctx := context.Background()
	_, err := store.InsertMessage(ctx, domain.NewMessage{SenderID: "U2", RecipientID: "U1", Content: "old news"})
	req.NoError(err)

	req.NoError(r.handle(ctx, "/open U2"))
	req.Eventually(func() bool { return strings.Contains(out.String(), "old news") }, 2*time.Second, 5*time.Millisecond)

	req.NoError(r.handle(ctx, "/clear"))
	rows, err := store.FetchConversation(ctx, "U1", "U2", "")
	req.NoError(err)
	req.Empty(rows)

	req.NoError(r.handle(ctx, "/close"))
	_, ok := r.service.ActiveConversation()
	req.False(ok)
}
