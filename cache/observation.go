package cache

import (
	"context"
	"sync"
	"time"
)

// Snapshot is the state of an observed entry at one point in time.
// Value keeps the last successful result while a refetch runs or after it failed.
type Snapshot[T any] struct {
	Value     T
	HasValue  bool
	Err       error
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

// Settled reports whether the entry is not fetching and holds a value or an error.
func (s Snapshot[T]) Settled() bool {
	return !s.Fetching && (s.HasValue || s.Err != nil)
}

// Observation is a live view on one cache entry.
// Updates only ever holds the latest snapshot; intermediate ones are dropped.
type Observation[T any] struct {
	cache   *Cache
	entry   *entry
	id      uint64
	updates chan Snapshot[T]

	mu      sync.Mutex
	current Snapshot[T]
	closed  bool
}

// Observe registers an observer on key and fetches when the entry is missing
// or stale. fetch is kept on the entry and reused by later invalidations.
func Observe[T any](c *Cache, key Key, opts Options, fetch func(ctx context.Context) (T, error)) *Observation[T] {
	o := &Observation[T]{cache: c, updates: make(chan Snapshot[T], 1)}

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	e.opts = opts
	e.fetch = wrap(fetch)
	c.nextID++
	o.id, o.entry = c.nextID, e
	e.observers[o.id] = o.push

	if c.isStaleLocked(e) {
		c.launchLocked(e, false)
	}
	o.push(e.snapshot())
	return o
}

// Fetch returns the cached value when it is fresh, otherwise it fetches it,
// joining a fetch already in flight for the same key.
func Fetch[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	e := c.entryLocked(key)
	e.opts = opts
	e.fetch = wrap(fetch)
	if !c.isStaleLocked(e) {
		v, _ := e.value.(T)
		c.mu.Unlock()
		return v, nil
	}
	result := c.launchLocked(e, true)
	c.mu.Unlock()

	select {
	case res := <-result:
		if res.err != nil {
			return zero, res.err
		}
		v, _ := res.value.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func wrap[T any](fetch func(ctx context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (o *Observation[T]) Key() Key { return o.entry.key }

func (o *Observation[T]) Updates() <-chan Snapshot[T] { return o.updates }

func (o *Observation[T]) Current() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Refetch invalidates this exact entry.
func (o *Observation[T]) Refetch() {
	c := o.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	o.entry.generation++
	o.entry.stale = true
	c.launchLocked(o.entry, false)
}

// WaitFor blocks until a snapshot satisfies cond, the observation closes or ctx ends.
func (o *Observation[T]) WaitFor(ctx context.Context, cond func(Snapshot[T]) bool) (Snapshot[T], error) {
	if s := o.Current(); cond(s) {
		return s, nil
	}
	for {
		select {
		case s, ok := <-o.updates:
			if !ok {
				return o.Current(), context.Canceled
			}
			if cond(s) {
				return s, nil
			}
		case <-ctx.Done():
			return o.Current(), ctx.Err()
		}
	}
}

// Close detaches the observer. A fetch still in flight completes, but its
// result is dropped if the entry was invalidated in the meantime.
func (o *Observation[T]) Close() {
	c := o.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	delete(o.entry.observers, o.id)
	close(o.updates)
}

// push runs under the cache mutex, so there is a single writer on updates.
func (o *Observation[T]) push(s snapshot) {
	snap := Snapshot[T]{
		HasValue:  s.hasValue,
		Err:       s.err,
		Fetching:  s.fetching,
		Stale:     s.stale,
		UpdatedAt: s.updatedAt,
	}
	if v, ok := s.value.(T); ok {
		snap.Value = v
	}
	o.mu.Lock()
	o.current = snap
	o.mu.Unlock()

	select {
	case <-o.updates:
	default:
	}
	o.updates <- snap
}
