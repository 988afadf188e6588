package realtime

import (
	"chat-dm/domain"
	"chat-dm/domain/event"
	"chat-dm/mocks"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

type recorder struct {
	mu      sync.Mutex
	changes []event.MessageChange
}

func (r *recorder) OnNewMessage(m event.MessageChange)    { r.record(m) }
func (r *recorder) OnMessageUpdate(m event.MessageChange) { r.record(m) }

func (r *recorder) record(m event.MessageChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, m)
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Message.ID)
	}
	return out
}

func msg(id, from, to string) domain.StoredMessage {
	return domain.StoredMessage{ID: id, SenderID: from, RecipientID: to, Content: id, CreatedAt: time.Now().UTC()}
}

func waitSubscribed(t *testing.T, hub *Hub, userID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers(userID) == n }, waitFor, time.Millisecond)
}

func TestChannel_Delivers_Own_Changes_In_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub := NewHub()
	rec := &recorder{}
	channel := NewChannel(hub, "U1", rec, logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond)
	defer channel.Close()

	// Given U1 is looking at the conversation with U2
	channel.Rescope("U2")
	waitSubscribed(t, hub, "U1", 1)
	req.Eventually(channel.IsConnected, waitFor, time.Millisecond)

	// When changes for several pairs are published
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("a", "U2", "U1"))))
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("b", "U3", "U1"))))
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("x", "U2", "U3"))))
	req.NoError(hub.Publish(ctx, event.MessageUpdate(msg("c", "U1", "U2"))))
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("d", "U1", "U2"))))

	// Then every change of U1 reaches the handler, in publish order
	req.Eventually(func() bool { return len(rec.ids()) == 4 }, waitFor, time.Millisecond)
	req.Equal([]string{"a", "b", "c", "d"}, rec.ids())
}

func TestChannel_Rescope_Switches_And_Deactivates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub := NewHub()
	rec := &recorder{}
	channel := NewChannel(hub, "U1", rec, slog.Default(), 10*time.Millisecond)
	defer channel.Close()

	channel.Rescope("U2")
	waitSubscribed(t, hub, "U1", 1)

	// When the active conversation moves to U3
	channel.Rescope("U3")
	req.Eventually(channel.IsConnected, waitFor, time.Millisecond)
	waitSubscribed(t, hub, "U1", 1)
	req.Equal("U3", channel.Peer())

	req.NoError(hub.Publish(ctx, event.NewMessage(msg("from-u3", "U3", "U1"))))
	req.Eventually(func() bool { return len(rec.ids()) == 1 }, waitFor, time.Millisecond)
	req.Equal([]string{"from-u3"}, rec.ids())

	// When no conversation is active
	channel.Rescope("")

	// Then the subscription is gone and nothing is delivered
	waitSubscribed(t, hub, "U1", 0)
	req.False(channel.IsConnected())
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("late", "U3", "U1"))))
	time.Sleep(20 * time.Millisecond)
	req.Equal([]string{"from-u3"}, rec.ids())
}

func TestChannel_Reconnects_After_Transport_Loss(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub := NewHub()
	rec := &recorder{}
	channel := NewChannel(hub, "U1", rec, slog.Default(), 10*time.Millisecond)
	defer channel.Close()

	var mu sync.Mutex
	var states []bool
	unregister := channel.OnConnectionChange(func(connected bool) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, connected)
	})
	defer unregister()

	channel.Rescope("U2")
	waitSubscribed(t, hub, "U1", 1)
	req.Eventually(channel.IsConnected, waitFor, time.Millisecond)

	// When the connection is lost
	hub.Drop("U1")

	// Then the channel reports it, resubscribes and delivers again
	waitSubscribed(t, hub, "U1", 1)
	req.Eventually(channel.IsConnected, waitFor, time.Millisecond)
	req.NoError(hub.Publish(ctx, event.NewMessage(msg("after", "U2", "U1"))))
	req.Eventually(func() bool { return len(rec.ids()) == 1 }, waitFor, time.Millisecond)

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 3
	}, waitFor, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	req.Equal([]bool{true, false, true}, states)
}

func TestChannel_Retries_When_Listen_Fails(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	source := mocks.NewMockChangeSource(ctrl)

	// Given a source refusing the first two subscriptions
	var calls atomic.Int32
	open := make(chan event.MessageChange)
	source.EXPECT().Listen(gomock.Any(), "U1").
		DoAndReturn(func(ctx context.Context, selfID string) (<-chan event.MessageChange, error) {
			if calls.Add(1) <= 2 {
				return nil, fmt.Errorf("connection refused")
			}
			return open, nil
		}).
		MinTimes(3)

	channel := NewChannel(source, "U1", &recorder{}, slog.Default(), 5*time.Millisecond)
	defer channel.Close()
	channel.Rescope("U2")

	// Then the supervisor keeps trying until it connects
	req.Eventually(channel.IsConnected, waitFor, time.Millisecond)
	req.Equal(int32(3), calls.Load())
}

func TestChannel_Close_Is_Final(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	channel := NewChannel(hub, "U1", &recorder{}, slog.Default(), 10*time.Millisecond)

	channel.Rescope("U2")
	waitSubscribed(t, hub, "U1", 1)
	channel.Close()
	channel.Close()
	waitSubscribed(t, hub, "U1", 0)

	channel.Rescope("U3")
	req.Equal("", channel.Peer())
	req.Equal(0, hub.Subscribers("U1"))
}
