package cache

import (
	"chat-dm/errors"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func fastOptions() Options {
	return ConversationOptions().WithRetryDelay(5 * time.Millisecond)
}

func settled(ctx context.Context, t *testing.T, o *Observation[int]) Snapshot[int] {
	s, err := o.WaitFor(ctx, func(s Snapshot[int]) bool { return s.Settled() })
	require.NoError(t, err)
	return s
}

func TestKey_HasPrefix(t *testing.T) {
	req := require.New(t)
	req.True(ConversationKey("U2", "hi").HasPrefix(ConversationPrefix("U2")))
	req.True(ConversationKey("U2", "").HasPrefix(ConversationPrefix("U2")))
	req.False(ConversationKey("U22", "").HasPrefix(ConversationPrefix("U2")))
	req.False(ChatUsersKey.HasPrefix(ConversationPrefix("U2")))
	req.True(SettingsKey("U2").HasPrefix(SettingsPrefix))
	req.True(ConversationKey("U2", "").Equal(Key{"conversation", "U2"}))
	req.NotEqual(Key{"a,b"}.String(), Key{"a", "b"}.String())
}

func TestCache_Observe_Fetches_On_First_Observation(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(logs.GetLoggerFromLevel(slog.LevelDebug))
	defer c.Close()

	var calls atomic.Int32
	// When an entry is observed for the first time
	o := Observe(c, Key{"n"}, fastOptions(), func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	defer o.Close()

	// Then it is fetched once
	s := settled(ctx, t, o)
	req.Equal(1, s.Value)
	req.Equal(int32(1), calls.Load())

	v, ok := c.Get(Key{"n"})
	req.True(ok)
	req.Equal(1, v)
}

func TestCache_Invalidate_Refetches_Observed_Entries(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) { return int(calls.Add(1)), nil }
	plain := Observe(c, ConversationKey("U2", ""), fastOptions(), fetch)
	defer plain.Close()
	searched := Observe(c, ConversationKey("U2", "hi"), fastOptions(), fetch)
	defer searched.Close()
	other := Observe(c, ConversationKey("U3", ""), fastOptions(), fetch)
	defer other.Close()
	settled(ctx, t, plain)
	settled(ctx, t, searched)
	settled(ctx, t, other)
	req.Equal(int32(3), calls.Load())

	// When the conversation prefix of U2 is invalidated
	matched := c.Invalidate(ConversationPrefix("U2"))

	// Then both U2 pages refetch and U3 is left alone
	req.Equal(2, matched)
	req.Eventually(func() bool { return calls.Load() == 5 }, waitFor, 5*time.Millisecond)
	_, err := plain.WaitFor(ctx, func(s Snapshot[int]) bool { return s.Settled() && s.Value > 3 })
	req.NoError(err)
	req.Equal(int32(5), calls.Load())
}

func TestCache_Invalidate_Without_Observer_Defers_Refetch(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) { return int(calls.Add(1)), nil }
	o := Observe(c, ChatUsersKey, fastOptions(), fetch)
	settled(ctx, t, o)
	o.Close()

	// When an unobserved entry is invalidated
	req.Equal(1, c.Invalidate(ChatUsersKey))
	time.Sleep(20 * time.Millisecond)

	// Then nothing is fetched until someone observes it again
	req.Equal(int32(1), calls.Load())
	again := Observe(c, ChatUsersKey, fastOptions(), fetch)
	defer again.Close()
	s := settled(ctx, t, again)
	req.Equal(2, s.Value)
}

func TestCache_Fetch_Is_Retried_Then_Surfaces_Error(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var calls atomic.Int32
	boom := fmt.Errorf("boom")
	o := Observe(c, Key{"failing"}, fastOptions(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.Store("fetch", boom)
	})
	defer o.Close()

	s := settled(ctx, t, o)

	// Then the first attempt and three retries were made
	req.Equal(int32(1+DefaultRetries), calls.Load())
	req.ErrorIs(s.Err, errors.ErrStore)
	req.ErrorIs(s.Err, boom)
	req.False(s.HasValue)
}

func TestCache_Fetch_Recovers_Within_Retries(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var calls atomic.Int32
	o := Observe(c, Key{"flaky"}, fastOptions(), func(ctx context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, fmt.Errorf("transient")
		}
		return 42, nil
	})
	defer o.Close()

	s := settled(ctx, t, o)
	req.NoError(s.Err)
	req.Equal(42, s.Value)
	req.Equal(int32(3), calls.Load())
}

func TestCache_Unauthenticated_Is_Not_Retried(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var calls atomic.Int32
	o := Observe(c, Key{"anon"}, fastOptions(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.ErrUnauthenticated
	})
	defer o.Close()

	s := settled(ctx, t, o)
	req.ErrorIs(s.Err, errors.ErrUnauthenticated)
	req.Equal(int32(1), calls.Load())
}

func TestCache_Outdated_Result_Is_Discarded(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	release := make(chan struct{})
	var calls atomic.Int32
	o := Observe(c, Key{"slow"}, fastOptions(), func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
			return 100, nil
		}
		return 2, nil
	})
	defer o.Close()

	// Given the first fetch is still in flight
	req.Eventually(func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)

	// When the key is invalidated, a second fetch starts and wins
	c.Invalidate(Key{"slow"})
	s, err := o.WaitFor(ctx, func(s Snapshot[int]) bool { return s.HasValue })
	req.NoError(err)
	req.Equal(2, s.Value)

	// Then the late first result never overwrites it
	close(release)
	time.Sleep(20 * time.Millisecond)
	v, _ := c.Get(Key{"slow"})
	req.Equal(2, v)
}

func TestCache_Concurrent_Observers_Share_One_Fetch(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}
	first := Observe(c, Key{"shared"}, fastOptions(), fetch)
	defer first.Close()
	second := Observe(c, Key{"shared"}, fastOptions(), fetch)
	defer second.Close()

	close(release)
	req.Equal(7, settled(ctx, t, first).Value)
	req.Equal(7, settled(ctx, t, second).Value)
	req.Equal(int32(1), calls.Load())
}

func TestCache_Fetch_Returns_Fresh_Value_Without_Fetching(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	opts := DefaultOptions()
	opts.StaleTime = time.Minute
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) { return int(calls.Add(1)), nil }

	v, err := Fetch(ctx, c, SettingsKey("U2"), opts, fetch)
	req.NoError(err)
	req.Equal(1, v)

	v, err = Fetch(ctx, c, SettingsKey("U2"), opts, fetch)
	req.NoError(err)
	req.Equal(1, v)
	req.Equal(int32(1), calls.Load())

	// When the settings prefix is invalidated, the next Fetch goes to the source
	c.Invalidate(SettingsPrefix)
	v, err = Fetch(ctx, c, SettingsKey("U2"), opts, fetch)
	req.NoError(err)
	req.Equal(2, v)
}

func TestCache_Set_Notifies_Observers(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	o := Observe(c, Key{"set"}, fastOptions(), func(ctx context.Context) (int, error) { return 1, nil })
	defer o.Close()
	settled(ctx, t, o)

	c.Set(Key{"set"}, 9)

	s, err := o.WaitFor(ctx, func(s Snapshot[int]) bool { return s.Value == 9 })
	req.NoError(err)
	req.True(s.HasValue)
}

func TestCache_Focus_Respects_RefetchOnFocus(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c := New(slog.Default())
	defer c.Close()

	var conversationCalls, usersCalls atomic.Int32
	conversation := Observe(c, ConversationKey("U2", ""), fastOptions(), func(ctx context.Context) (int, error) {
		return int(conversationCalls.Add(1)), nil
	})
	defer conversation.Close()
	users := Observe(c, ChatUsersKey, DefaultOptions().WithRetryDelay(time.Millisecond), func(ctx context.Context) (int, error) {
		return int(usersCalls.Add(1)), nil
	})
	defer users.Close()
	settled(ctx, t, conversation)
	settled(ctx, t, users)

	// When the host window regains focus
	c.Focus()

	// Then only the entry opted into focus refetch is fetched again
	req.Eventually(func() bool { return usersCalls.Load() == 2 }, waitFor, time.Millisecond)
	req.Equal(int32(1), conversationCalls.Load())
}

func TestObservation_Close_Ends_Updates(t *testing.T) {
	req := require.New(t)
	c := New(slog.Default())
	defer c.Close()

	o := Observe(c, Key{"closing"}, fastOptions(), func(ctx context.Context) (int, error) { return 1, nil })
	o.Close()
	o.Close()

	_, err := o.WaitFor(context.Background(), func(s Snapshot[int]) bool { return false })
	req.ErrorIs(err, context.Canceled)
}
