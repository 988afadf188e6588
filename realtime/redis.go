package realtime

import (
	"chat-dm/domain"
	"chat-dm/domain/event"
	"chat-dm/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "messages:changes:"

// Wire names of the change types, as row-level database events name them.
const (
	wireInsert = "INSERT"
	wireUpdate = "UPDATE"
)

type wireChange struct {
	Type   string               `json:"type"`
	Record domain.StoredMessage `json:"record"`
}

func ChannelFor(userID string) string {
	return channelPrefix + userID
}

func encodeChange(change event.MessageChange) ([]byte, error) {
	var wire wireChange
	switch change.Type {
	case event.NewMessageType:
		wire.Type = wireInsert
	case event.MessageUpdateType:
		wire.Type = wireUpdate
	default:
		return nil, fmt.Errorf("unknown change type %q", change.Type)
	}
	wire.Record = change.Message
	return json.Marshal(wire)
}

func decodeChange(payload []byte) (event.MessageChange, error) {
	var wire wireChange
	if err := json.Unmarshal(payload, &wire); err != nil {
		return event.MessageChange{}, err
	}
	switch wire.Type {
	case wireInsert:
		return event.NewMessage(wire.Record), nil
	case wireUpdate:
		return event.MessageUpdate(wire.Record), nil
	default:
		return event.MessageChange{}, fmt.Errorf("unknown change type %q", wire.Type)
	}
}

// RedisSource listens to the per-user pub/sub channel.
type RedisSource struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisSource(rdb *redis.Client, log *slog.Logger) *RedisSource {
	return &RedisSource{rdb: rdb, log: log}
}

func (s *RedisSource) Listen(ctx context.Context, selfID string) (<-chan event.MessageChange, error) {
	pubsub := s.rdb.Subscribe(ctx, ChannelFor(selfID))
	// Wait for the subscription confirmation so a dead server fails here.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe: %w", errors.ErrTransport, err)
	}

	out := make(chan event.MessageChange, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				change, err := decodeChange([]byte(msg.Payload))
				if err != nil {
					s.log.Warn("Malformed change dropped", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// RedisPublisher publishes a change on the channels of both parties.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, change event.MessageChange) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}
	for _, userID := range parties(change) {
		if err := p.rdb.Publish(ctx, ChannelFor(userID), payload).Err(); err != nil {
			return fmt.Errorf("%w: publish: %w", errors.ErrTransport, err)
		}
	}
	return nil
}
