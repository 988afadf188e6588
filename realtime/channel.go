// Package realtime delivers the message changes of the signed-in user to the
// controller while a conversation is active.
package realtime

import (
	"chat-dm/contract"
	"chat-dm/domain/event"
	"chat-dm/errors"
	"chat-dm/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Channel is scoped to one peer at a time and listens only while scoped.
// Every change involving the signed-in user is handed to the handler, in
// arrival order, on a single goroutine: changes from other peers still drive
// notifications and the conversation list. A lost transport is restarted by a
// supervisor.
type Channel struct {
	source          contract.ChangeSource
	selfID          string
	handler         event.Handler
	log             *slog.Logger
	restartInterval time.Duration

	// scopeMu serializes Rescope and Close.
	scopeMu sync.Mutex
	peer    string
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool

	mu        sync.Mutex
	connected bool
	nextID    int
	listeners map[int]func(bool)
}

func NewChannel(source contract.ChangeSource, selfID string, handler event.Handler, log *slog.Logger, restartInterval time.Duration) *Channel {
	return &Channel{
		source:          source,
		selfID:          selfID,
		handler:         handler,
		log:             log,
		restartInterval: restartInterval,
		listeners:       make(map[int]func(bool)),
	}
}

// Rescope stops the current subscription and, unless peerID is empty,
// starts a new one for peerID. Rescoping to the current peer does nothing.
func (c *Channel) Rescope(peerID string) {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	if c.closed || peerID == c.peer {
		return
	}
	c.stopLocked()
	c.peer = peerID
	if peerID == "" {
		c.log.Debug("Realtime channel inactive")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	supervisor := workers.NewSupervisor(c.log, c.restartInterval)
	supervisor.Add(&subscription{channel: c, peerID: peerID})
	go func() {
		defer close(done)
		supervisor.Run(ctx)
	}()
	c.log.Info("Realtime channel scoped", "self", c.selfID, "peer", peerID)
}

// Peer returns the peer the channel is scoped to, "" when inactive.
func (c *Channel) Peer() string {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	return c.peer
}

func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// OnConnectionChange registers fn, called with the new state on every change.
// The returned function unregisters it.
func (c *Channel) OnConnectionChange(fn func(connected bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close stops the subscription. The channel cannot be rescoped afterwards.
func (c *Channel) Close() {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopLocked()
	c.peer = ""
}

func (c *Channel) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel, c.done = nil, nil
	c.setConnected(false)
}

func (c *Channel) setConnected(connected bool) {
	c.mu.Lock()
	if c.connected == connected {
		c.mu.Unlock()
		return
	}
	c.connected = connected
	listeners := make([]func(bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if !connected {
		c.log.Warn("Realtime channel disconnected", "self", c.selfID)
	}
	for _, fn := range listeners {
		fn(connected)
	}
}

// subscription is the supervised worker of one scope.
type subscription struct {
	channel *Channel
	peerID  string
}

func (s *subscription) Run(ctx context.Context) error {
	c := s.channel
	changes, err := c.source.Listen(ctx, c.selfID)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.setConnected(false)
		return fmt.Errorf("%w: %w", errors.ErrTransport, err)
	}
	c.setConnected(true)
	c.log.Debug("Listening to changes", "self", c.selfID, "peer", s.peerID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				c.setConnected(false)
				return errors.ErrTransport
			}
			m := change.Message
			if m.SenderID != c.selfID && m.RecipientID != c.selfID {
				continue
			}
			if !event.Dispatch(c.handler, change) {
				c.log.Debug("Unknown change ignored", "type", change.Type)
			}
		}
	}
}
