// Package cache is an in-memory store of query results keyed by tuples.
// Entries are refreshed by refetching, never patched in place: invalidating a
// key prefix marks the matching entries stale and refetches the observed ones.
package cache

import (
	"chat-dm/errors"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
)

type fetchFunc func(ctx context.Context) (any, error)

type fetchResult struct {
	value any
	err   error
}

type snapshot struct {
	value     any
	hasValue  bool
	err       error
	fetching  bool
	stale     bool
	updatedAt time.Time
}

type entry struct {
	id          string
	key         Key
	value       any
	hasValue    bool
	err         error
	updatedAt   time.Time
	stale       bool
	fetching    bool
	fetchingGen uint64
	generation  uint64
	opts        Options
	fetch       fetchFunc
	observers   map[uint64]func(snapshot)
	waiters     map[uint64][]chan fetchResult
}

func (e *entry) snapshot() snapshot {
	return snapshot{
		value:     e.value,
		hasValue:  e.hasValue,
		err:       e.err,
		fetching:  e.fetching,
		stale:     e.stale,
		updatedAt: e.updatedAt,
	}
}

// Cache is safe for concurrent use. Every entry mutation and every observer
// notification happens under mu, so no observer sees a half-written entry.
type Cache struct {
	mu      sync.Mutex
	log     *slog.Logger
	entries map[string]*entry
	nextID  uint64
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(log *slog.Logger) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		log:     log,
		entries: make(map[string]*entry),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Get returns the last successful value stored at key.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasValue {
		return nil, false
	}
	return e.value, true
}

// Set stores value at key and notifies observers.
// A fetch already in flight for that key is discarded when it lands.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	e.generation++
	e.value, e.hasValue, e.err = value, true, nil
	e.stale = false
	e.updatedAt = c.now()
	c.notifyLocked(e)
}

// Invalidate marks every entry whose key starts with prefix as stale.
// Observed entries refetch right away, the others on their next observation.
// It returns the number of matching entries.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		count++
		e.generation++
		e.stale = true
		if len(e.observers) > 0 && e.fetch != nil {
			c.launchLocked(e, false)
		}
	}
	c.log.Debug("Cache invalidated", "prefix", prefix.String(), "matched", count)
	return count
}

// Focus refetches the observed entries that are stale and opted into RefetchOnFocus.
func (c *Cache) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if len(e.observers) == 0 || e.fetch == nil || !e.opts.RefetchOnFocus {
			continue
		}
		if c.isStaleLocked(e) {
			c.launchLocked(e, false)
		}
	}
}

// Close cancels in-flight fetches and waits for them to settle.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{
			id:        id,
			key:       append(Key(nil), key...),
			observers: make(map[uint64]func(snapshot)),
			waiters:   make(map[uint64][]chan fetchResult),
		}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) isStaleLocked(e *entry) bool {
	return e.stale || !e.hasValue || c.now().Sub(e.updatedAt) >= e.opts.StaleTime
}

func (c *Cache) notifyLocked(e *entry) {
	s := e.snapshot()
	for _, push := range e.observers {
		push(s)
	}
}

// launchLocked starts a fetch for the current generation of e unless one is
// already running. With wait set, it also returns a channel that receives the
// result of that generation's fetch, whether or not the cache keeps it.
func (c *Cache) launchLocked(e *entry, wait bool) <-chan fetchResult {
	gen := e.generation
	var result chan fetchResult
	if wait {
		result = make(chan fetchResult, 1)
		e.waiters[gen] = append(e.waiters[gen], result)
	}
	if e.fetching && e.fetchingGen == gen {
		return result
	}
	e.fetching, e.fetchingGen = true, gen
	c.notifyLocked(e)

	fetch, opts := e.fetch, e.opts
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		value, err := c.fetchWithRetry(e.key, fetch, opts)
		c.complete(e, gen, value, err)
	}()
	return result
}

func (c *Cache) complete(e *entry, gen uint64, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range e.waiters[gen] {
		w <- fetchResult{value: value, err: err}
	}
	delete(e.waiters, gen)

	if e.fetchingGen == gen {
		e.fetching = false
	}
	if c.entries[e.id] != e || e.generation != gen {
		c.log.Debug("Discarding outdated fetch result", "key", e.id, "generation", gen)
		return
	}
	if err != nil {
		e.err = err
		c.log.Debug("Fetch failed after retries", "key", e.id, "error", err)
	} else {
		e.value, e.hasValue, e.err = value, true, nil
		e.stale = false
		e.updatedAt = c.now()
	}
	c.notifyLocked(e)
}

// fetchWithRetry runs fetch with a constant backoff. Unauthenticated and
// cancellation errors are not retried.
func (c *Cache) fetchWithRetry(key Key, fetch fetchFunc, opts Options) (any, error) {
	var value any
	attempt := 0
	operation := func() error {
		attempt++
		v, err := fetch(c.ctx)
		if err != nil {
			if errors.Is(err, errors.ErrUnauthenticated) || errors.Is(err, context.Canceled) {
				return backoff.Permanent(err)
			}
			c.log.Debug("Fetch attempt failed", "key", key.String(), "attempt", attempt, "error", err)
			return err
		}
		value = v
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryDelay), opts.Retries),
		c.ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return value, nil
}
