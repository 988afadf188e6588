package repositories

import (
	"chat-dm/domain"
	"chat-dm/domain/event"
	"chat-dm/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// steppingClock returns base, base+1s, base+2s...
func steppingClock() func() time.Time {
	next := base
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func newEmbeddedStore(t *testing.T, opts ...EmbeddedStoreOption) *EmbeddedStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEmbeddedStore(db, slog.Default(), append([]EmbeddedStoreOption{WithClock(steppingClock())}, opts...)...)
}

func send(t *testing.T, s *EmbeddedStore, from, to, content string) domain.StoredMessage {
	t.Helper()
	m, err := s.InsertMessage(context.Background(), domain.NewMessage{SenderID: from, RecipientID: to, Content: content})
	require.NoError(t, err)
	return m
}

func TestEmbeddedStore_FetchConversation_Newest_First(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	m1 := send(t, store, "U1", "U2", "hello")
	m2 := send(t, store, "U2", "U1", "Hello back")
	send(t, store, "U1", "U3", "hello U3")
	m4 := send(t, store, "U1", "U2", "bye")

	messages, err := store.FetchConversation(context.Background(), "U2", "U1", "")
	req.NoError(err)
	req.Equal([]string{m4.ID, m2.ID, m1.ID}, ids(messages))
	req.True(base.Equal(messages[2].CreatedAt))
	req.Equal("sent", *messages[0].Status)

	searched, err := store.FetchConversation(context.Background(), "U1", "U2", "HELLO")
	req.NoError(err)
	req.Equal([]string{m2.ID, m1.ID}, ids(searched))
}

func TestEmbeddedStore_FetchConversation_Applies_Limit(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t, WithEmbeddedLimit(2))
	send(t, store, "U1", "U2", "a")
	b := send(t, store, "U1", "U2", "b")
	c := send(t, store, "U1", "U2", "c")

	messages, err := store.FetchConversation(context.Background(), "U1", "U2", "")
	req.NoError(err)
	req.Equal([]string{c.ID, b.ID}, ids(messages))
}

func TestEmbeddedStore_MarkConversationRead_And_Publish(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl)
	var published []event.MessageChange
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, change event.MessageChange) error {
			published = append(published, change)
			return nil
		}).
		Times(4)
	store := newEmbeddedStore(t, WithEmbeddedPublisher(publisher))
	ctx := context.Background()

	// Given two incoming messages and one outgoing
	send(t, store, "U2", "U1", "one")
	latest := send(t, store, "U2", "U1", "two")
	send(t, store, "U1", "U2", "three")

	// When U1 reads the conversation
	req.NoError(store.MarkConversationRead(ctx, "U1", "U2"))

	// Then only the incoming messages are read
	messages, err := store.FetchConversation(ctx, "U1", "U2", "")
	req.NoError(err)
	for _, m := range messages {
		req.Equal(m.SenderID == "U2", m.Read, m.ID)
	}

	// And the three inserts plus one update were announced
	req.Len(published, 4)
	update := published[3]
	req.Equal(event.MessageUpdateType, update.Type)
	req.Equal(latest.ID, update.Message.ID)
	req.True(update.Message.Read)
}

func TestEmbeddedStore_ClearConversation_Hides_For_Caller_Only(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	ctx := context.Background()
	send(t, store, "U1", "U2", "hello")
	send(t, store, "U2", "U1", "hi")

	req.NoError(store.ClearConversation(ctx, "U1", "U2"))

	mine, err := store.FetchConversation(ctx, "U1", "U2", "")
	req.NoError(err)
	req.Empty(mine)
	theirs, err := store.FetchConversation(ctx, "U2", "U1", "")
	req.NoError(err)
	req.Len(theirs, 2)

	// New messages after a clear are visible again
	fresh := send(t, store, "U2", "U1", "still there?")
	mine, err = store.FetchConversation(ctx, "U1", "U2", "")
	req.NoError(err)
	req.Equal([]string{fresh.ID}, ids(mine))
}

func TestEmbeddedStore_FetchChatUsers(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	ctx := context.Background()
	req.NoError(store.PutProfile(ctx, domain.Profile{ID: "U3", Username: "carol"}))

	send(t, store, "U2", "U1", "one")
	lastFromU2 := send(t, store, "U2", "U1", "two")
	lastWithU3 := send(t, store, "U1", "U3", "three")

	users, err := store.FetchChatUsers(ctx, "U1")
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("carol", users[0].Profile.Username)
	req.Equal(lastWithU3.ID, users[0].LastMessage.ID)
	req.Equal(0, users[0].UnreadCount)
	req.Equal("U2", users[1].Profile.Username)
	req.Equal(lastFromU2.ID, users[1].LastMessage.ID)
	req.Equal(2, users[1].UnreadCount)
}

func TestEmbeddedStore_Ids_With_Separators_Stay_In_Their_Pair(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	ctx := context.Background()

	// Given a peer id that extends another one past the separator
	forB := send(t, store, "a", "b", "for b")
	forOther := send(t, store, "a", "b:0", "for b:0")
	send(t, store, "a|b", "c", "other pair")

	// Then each conversation only holds its own messages
	messages, err := store.FetchConversation(ctx, "a", "b", "")
	req.NoError(err)
	req.Equal([]string{forB.ID}, ids(messages))

	messages, err = store.FetchConversation(ctx, "b:0", "a", "")
	req.NoError(err)
	req.Equal([]string{forOther.ID}, ids(messages))

	// And the conversation list of a holds each peer once, newest first
	users, err := store.FetchChatUsers(ctx, "a")
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("b:0", users[0].Profile.ID)
	req.Equal(forOther.ID, users[0].LastMessage.ID)
	req.Equal("b", users[1].Profile.ID)
	req.Equal(forB.ID, users[1].LastMessage.ID)
}

func TestEmbeddedStore_MarkConversationRead_Announces_After_Clear(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl)
	var updates []event.MessageChange
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, change event.MessageChange) error {
			if change.Type == event.MessageUpdateType {
				updates = append(updates, change)
			}
			return nil
		}).
		AnyTimes()
	store := newEmbeddedStore(t, WithEmbeddedPublisher(publisher))
	ctx := context.Background()

	// Given U1 cleared an unread message from U2
	unread := send(t, store, "U2", "U1", "hello")
	req.NoError(store.ClearConversation(ctx, "U1", "U2"))

	// When U1 reads the conversation
	req.NoError(store.MarkConversationRead(ctx, "U1", "U2"))

	// Then U2 still hears about the receipt
	req.Len(updates, 1)
	req.Equal(unread.ID, updates[0].Message.ID)
	req.True(updates[0].Message.Read)

	// And reading again announces nothing new
	req.NoError(store.MarkConversationRead(ctx, "U1", "U2"))
	req.Len(updates, 1)
}
