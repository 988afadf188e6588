package realtime

import (
	"chat-dm/domain/event"
	"context"
	"sync"
)

const subscriberBuffer = 64

type subscriber struct {
	changes chan event.MessageChange
	done    <-chan struct{}
}

// Hub is an in-process ChangeSource and ChangePublisher.
// It keeps the live subscribers of every user and hands each published change
// to both parties of the message.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*subscriber]struct{} // user -> subscribers
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*subscriber]struct{})}
}

// Listen registers a subscriber for selfID. Its channel is closed when ctx
// ends or when the user is dropped.
func (h *Hub) Listen(ctx context.Context, selfID string) (<-chan event.MessageChange, error) {
	sub := &subscriber{changes: make(chan event.MessageChange, subscriberBuffer), done: ctx.Done()}

	h.mu.Lock()
	if _, ok := h.sessions[selfID]; !ok {
		h.sessions[selfID] = make(map[*subscriber]struct{})
	}
	h.sessions[selfID][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(selfID, sub)
	}()
	return sub.changes, nil
}

// Publish delivers change to the subscribers of the sender and the recipient.
// It blocks on a full subscriber until it reads or goes away.
func (h *Hub) Publish(ctx context.Context, change event.MessageChange) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range parties(change) {
		for sub := range h.sessions[userID] {
			select {
			case sub.changes <- change:
			case <-sub.done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Drop closes every subscription of userID, as a lost connection would.
func (h *Hub) Drop(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.sessions[userID] {
		close(sub.changes)
	}
	delete(h.sessions, userID)
}

// Subscribers returns the number of live subscriptions of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) unsubscribe(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.sessions[userID]
	if !ok {
		return
	}
	if _, ok := members[sub]; !ok {
		// Already closed by Drop
		return
	}
	delete(members, sub)
	close(sub.changes)
	// No empty sets are left behind
	if len(members) == 0 {
		delete(h.sessions, userID)
	}
}

func parties(change event.MessageChange) []string {
	m := change.Message
	if m.SenderID == m.RecipientID {
		return []string{m.SenderID}
	}
	return []string{m.SenderID, m.RecipientID}
}
