package repositories

import (
	"chat-dm/contract"
	"chat-dm/domain"
	"chat-dm/domain/event"
	"chat-dm/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// diskMessage is the value stored under a msg: key.
type diskMessage struct {
	domain.StoredMessage
	DeletedByRecipient bool `json:"deleted_by_recipient"`
	DeletedBySender    bool `json:"deleted_by_sender"`
}

func (d diskMessage) visibleTo(selfID string) bool {
	switch selfID {
	case d.SenderID:
		return !d.DeletedBySender
	case d.RecipientID:
		return !d.DeletedByRecipient
	}
	return false
}

// EmbeddedStore keeps messages and profiles in a local BadgerDB.
//
// Keys:
//
//	msg:{pair}:{unixnano padded to 19 digits}:{id}  one message, pair is the sorted user ids
//	peer:{len}:{user}:{peer}                       the user has exchanged messages with peer
//	profile:{id}                                   one profile
//
// Ids inside pair are written {len}:{id} and joined with '|'.
type EmbeddedStore struct {
	db        *badger.DB
	log       *slog.Logger
	limit     int
	now       func() time.Time
	publisher contract.ChangePublisher
}

type EmbeddedStoreOption func(*EmbeddedStore)

func WithEmbeddedPublisher(p contract.ChangePublisher) EmbeddedStoreOption {
	return func(s *EmbeddedStore) { s.publisher = p }
}

func WithEmbeddedLimit(limit int) EmbeddedStoreOption {
	return func(s *EmbeddedStore) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithClock(now func() time.Time) EmbeddedStoreOption {
	return func(s *EmbeddedStore) { s.now = now }
}

func NewEmbeddedStore(db *badger.DB, log *slog.Logger, opts ...EmbeddedStoreOption) *EmbeddedStore {
	s := &EmbeddedStore{db: db, log: log, limit: DefaultConversationLimit, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// idSegment length-prefixes an id so ids containing the separators cannot
// run into the next segment.
func idSegment(id string) string {
	return fmt.Sprintf("%d:%s", len(id), id)
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return idSegment(a) + "|" + idSegment(b)
}

func pairPrefix(a, b string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", pairKey(a, b)))
}

// messageKey pads the timestamp so lexicographical order is chronological.
// The id breaks ties between messages of the same nanosecond.
func messageKey(m domain.StoredMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		pairKey(m.SenderID, m.RecipientID),
		m.CreatedAt.UnixNano(),
		m.ID,
	))
}

func peerPrefix(self string) []byte {
	return []byte(fmt.Sprintf("peer:%s:", idSegment(self)))
}

func peerKey(self, peer string) []byte {
	return append(peerPrefix(self), peer...)
}

func profileKey(id string) []byte {
	return []byte("profile:" + id)
}

// scanPair walks the pair newest first and stops when visit returns false.
func scanPair(txn *badger.Txn, a, b string, visit func(key []byte, m diskMessage) (bool, error)) error {
	prefix := pairPrefix(a, b)
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := txn.NewIterator(options)
	defer it.Close()

	// Seek past the newest possible key, then walk backwards.
	seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999~")...)
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var m diskMessage
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &m)
		}); err != nil {
			return err
		}
		more, err := visit(item.KeyCopy(nil), m)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func (s *EmbeddedStore) FetchConversation(_ context.Context, selfID, peerID, search string) ([]domain.StoredMessage, error) {
	needle := strings.ToLower(search)
	var messages []domain.StoredMessage
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPair(txn, selfID, peerID, func(_ []byte, m diskMessage) (bool, error) {
			if !m.visibleTo(selfID) {
				return true, nil
			}
			if needle != "" && !strings.Contains(strings.ToLower(m.Content), needle) {
				return true, nil
			}
			messages = append(messages, m.StoredMessage)
			if len(messages) == s.limit {
				s.log.Debug(fmt.Sprintf("Maximum of %d message reached", s.limit))
				return false, nil
			}
			return true, nil
		})
	})
	if err != nil {
		return nil, errors.Store("fetch conversation", err)
	}
	return messages, nil
}

func (s *EmbeddedStore) FetchProfiles(_ context.Context, ids []string) (map[string]domain.Profile, error) {
	profiles := make(map[string]domain.Profile)
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range lo.Uniq(lo.Compact(ids)) {
			item, err := txn.Get(profileKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var p domain.Profile
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &p)
			}); err != nil {
				return err
			}
			profiles[p.ID] = p
		}
		return nil
	})
	if err != nil {
		return nil, errors.Store("fetch profiles", err)
	}
	return profiles, nil
}

func (s *EmbeddedStore) FetchChatUsers(ctx context.Context, selfID string) ([]domain.ChatUser, error) {
	var users []domain.ChatUser
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := peerPrefix(selfID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		var peers []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			peers = append(peers, string(it.Item().Key()[len(prefix):]))
		}
		it.Close()

		for _, peer := range peers {
			var visible []domain.StoredMessage
			if err := scanPair(txn, selfID, peer, func(_ []byte, m diskMessage) (bool, error) {
				if m.visibleTo(selfID) {
					visible = append(visible, m.StoredMessage)
				}
				return true, nil
			}); err != nil {
				return err
			}
			users = append(users, groupChatUsers(selfID, visible)...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Store("fetch chat users", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].LastMessage.CreatedAt.After(users[j].LastMessage.CreatedAt)
	})
	profiles, err := s.FetchProfiles(ctx, lo.Map(users, func(u domain.ChatUser, _ int) string { return u.Profile.ID }))
	if err != nil {
		return nil, err
	}
	return attachProfiles(users, profiles), nil
}

func (s *EmbeddedStore) InsertMessage(ctx context.Context, msg domain.NewMessage) (domain.StoredMessage, error) {
	stored := domain.StoredMessage{
		ID:            uuid.NewString(),
		Content:       msg.Content,
		SenderID:      msg.SenderID,
		RecipientID:   msg.RecipientID,
		CreatedAt:     s.now().UTC(),
		Status:        lo.ToPtr(string(domain.StatusSent)),
		AttachmentURL: msg.AttachmentURL,
	}
	bytes, err := json.Marshal(diskMessage{StoredMessage: stored})
	if err != nil {
		return domain.StoredMessage{}, errors.Store("insert message", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(stored), bytes); err != nil {
			return err
		}
		if err := txn.Set(peerKey(msg.SenderID, msg.RecipientID), []byte{}); err != nil {
			return err
		}
		return txn.Set(peerKey(msg.RecipientID, msg.SenderID), []byte{})
	})
	if err != nil {
		return domain.StoredMessage{}, errors.Store("insert message", err)
	}
	s.publish(ctx, event.NewMessage(stored))
	return stored, nil
}

func (s *EmbeddedStore) MarkConversationRead(ctx context.Context, selfID, peerID string) error {
	var latest *domain.StoredMessage
	err := s.rewritePair(selfID, peerID, func(m *diskMessage) bool {
		if m.SenderID != peerID || m.RecipientID != selfID {
			return false
		}
		if m.Read {
			return false
		}
		m.Read = true
		m.Status = lo.ToPtr(string(domain.StatusRead))
		if latest == nil {
			updated := m.StoredMessage
			latest = &updated
		}
		return true
	})
	if err != nil {
		return errors.RPC(rpcMarkConversationRead, err)
	}
	if latest != nil {
		s.publish(ctx, event.MessageUpdate(*latest))
	}
	return nil
}

func (s *EmbeddedStore) ClearConversation(_ context.Context, selfID, peerID string) error {
	err := s.rewritePair(selfID, peerID, func(m *diskMessage) bool {
		switch {
		case m.RecipientID == selfID && !m.DeletedByRecipient:
			m.DeletedByRecipient = true
		case m.SenderID == selfID && !m.DeletedBySender:
			m.DeletedBySender = true
		default:
			return false
		}
		return true
	})
	if err != nil {
		return errors.RPC(rpcClearConversation, err)
	}
	return nil
}

func (s *EmbeddedStore) PutProfile(_ context.Context, p domain.Profile) error {
	bytes, err := json.Marshal(p)
	if err != nil {
		return errors.Store("put profile", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(profileKey(p.ID), bytes)
	}); err != nil {
		return errors.Store("put profile", err)
	}
	return nil
}

// rewritePair applies change to every message of the pair in one transaction,
// newest first, and writes back the ones it reports as modified.
func (s *EmbeddedStore) rewritePair(a, b string, change func(m *diskMessage) bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		type write struct {
			key   []byte
			value []byte
		}
		var writes []write
		if err := scanPair(txn, a, b, func(key []byte, m diskMessage) (bool, error) {
			if !change(&m) {
				return true, nil
			}
			bytes, err := json.Marshal(m)
			if err != nil {
				return false, err
			}
			writes = append(writes, write{key: key, value: bytes})
			return true, nil
		}); err != nil {
			return err
		}
		for _, w := range writes {
			if err := txn.Set(w.key, w.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *EmbeddedStore) publish(ctx context.Context, change event.MessageChange) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.log.Warn("Change not published", "type", change.Type, "id", change.Message.ID, "error", err)
	}
}
