package repositories

import (
	"chat-dm/contract"
	"chat-dm/domain"
	"chat-dm/domain/event"
	"chat-dm/errors"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultConversationLimit = 100
	chatUsersScanLimit       = 1000

	rpcMarkConversationRead = "mark_conversation_as_read_v2"
	rpcClearConversation    = "clear_conversation"

	messageColumns = `id, content, sender_id, recipient_id, created_at, read,
		message_status, edited_at, attachment_url`
)

// SQLStore is the store client over the messages and profiles tables.
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	log       *slog.Logger
	limit     int
	publisher contract.ChangePublisher
}

type SQLStoreOption func(*SQLStore)

// WithPublisher makes the store announce its writes, the way the backend
// realtime feed would.
func WithPublisher(p contract.ChangePublisher) SQLStoreOption {
	return func(s *SQLStore) { s.publisher = p }
}

func WithConversationLimit(limit int) SQLStoreOption {
	return func(s *SQLStore) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func NewSQLStore(db *sql.DB, dialect Dialect, log *slog.Logger, opts ...SQLStoreOption) *SQLStore {
	s := &SQLStore{db: db, dialect: dialect, log: log, limit: DefaultConversationLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables, indexes and server-side procedures.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for i, m := range s.dialect.migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, s.dialect.Name, err)
		}
	}
	return nil
}

// FetchConversation returns the latest messages exchanged between selfID and
// peerID, newest first. Rows tombstoned for selfID are left out.
func (s *SQLStore) FetchConversation(ctx context.Context, selfID, peerID, search string) ([]domain.StoredMessage, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = ? AND recipient_id = ? AND deleted_by_sender = ?)
			OR (sender_id = ? AND recipient_id = ? AND deleted_by_recipient = ?))`
	args := []any{selfID, peerID, false, peerID, selfID, false}
	if search != "" {
		query += ` AND ` + s.dialect.searchExpr
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, s.limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, errors.Store("fetch conversation", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, errors.Store("fetch conversation", err)
	}
	s.log.Debug("Conversation fetched", "peer", peerID, "search", search, "count", len(messages))
	return messages, nil
}

// FetchProfiles looks up every id in a single query.
func (s *SQLStore) FetchProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	profiles := make(map[string]domain.Profile)
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	query := `SELECT id, username, avatar_url FROM profiles WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), lo.ToAnySlice(ids)...)
	if err != nil {
		return nil, errors.Store("fetch profiles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		var avatar sql.NullString
		if err := rows.Scan(&p.ID, &p.Username, &avatar); err != nil {
			return nil, errors.Store("fetch profiles", err)
		}
		if avatar.Valid {
			p.AvatarURL = lo.ToPtr(avatar.String)
		}
		profiles[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("fetch profiles", err)
	}
	return profiles, nil
}

// FetchChatUsers lists the peers selfID has visible messages with, most
// recent conversation first.
func (s *SQLStore) FetchChatUsers(ctx context.Context, selfID string) ([]domain.ChatUser, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = ? AND deleted_by_sender = ?)
			OR (recipient_id = ? AND deleted_by_recipient = ?)
		ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), selfID, false, selfID, false, chatUsersScanLimit)
	if err != nil {
		return nil, errors.Store("fetch chat users", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, errors.Store("fetch chat users", err)
	}
	users := groupChatUsers(selfID, messages)
	profiles, err := s.FetchProfiles(ctx, lo.Map(users, func(u domain.ChatUser, _ int) string { return u.Profile.ID }))
	if err != nil {
		return nil, err
	}
	return attachProfiles(users, profiles), nil
}

// InsertMessage persists msg and returns the row as the backend stored it.
func (s *SQLStore) InsertMessage(ctx context.Context, msg domain.NewMessage) (domain.StoredMessage, error) {
	var attachment sql.NullString
	if msg.AttachmentURL != nil {
		attachment = sql.NullString{String: *msg.AttachmentURL, Valid: true}
	}
	id := uuid.NewString()
	insert := `INSERT INTO messages (id, sender_id, recipient_id, content, attachment_url)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(insert),
		id, msg.SenderID, msg.RecipientID, msg.Content, attachment); err != nil {
		return domain.StoredMessage{}, errors.Store("insert message", err)
	}

	// Read back the columns the backend filled in.
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	stored, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if err != nil {
		return domain.StoredMessage{}, errors.Store("insert message", err)
	}
	s.publish(ctx, event.NewMessage(stored))
	return stored, nil
}

// MarkConversationRead marks every message peerID sent to selfID as read.
func (s *SQLStore) MarkConversationRead(ctx context.Context, selfID, peerID string) error {
	// The newest row the procedure will update, whether or not selfID
	// cleared it, announces the receipt to peerID.
	var unread *domain.StoredMessage
	if s.publisher != nil {
		query := `SELECT ` + messageColumns + `
			FROM messages
			WHERE sender_id = ? AND recipient_id = ? AND read = ?
			ORDER BY created_at DESC, id DESC LIMIT 1`
		m, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), peerID, selfID, false))
		switch {
		case err == nil:
			unread = &m
		case !errors.Is(err, sql.ErrNoRows):
			s.log.Warn("Read receipt not announced", "peer", peerID, "error", err)
		}
	}

	if err := s.call(ctx, rpcMarkConversationRead, selfID, peerID); err != nil {
		return err
	}
	if unread == nil {
		return nil
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	updated, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), unread.ID))
	if err != nil {
		s.log.Warn("Read receipt not announced", "peer", peerID, "error", err)
		return nil
	}
	s.publish(ctx, event.MessageUpdate(updated))
	return nil
}

// ClearConversation tombstones the conversation for selfID only.
func (s *SQLStore) ClearConversation(ctx context.Context, selfID, peerID string) error {
	return s.call(ctx, rpcClearConversation, selfID, peerID)
}

// PutProfile inserts or replaces a profile.
func (s *SQLStore) PutProfile(ctx context.Context, p domain.Profile) error {
	var avatar sql.NullString
	if p.AvatarURL != nil {
		avatar = sql.NullString{String: *p.AvatarURL, Valid: true}
	}
	query := `INSERT INTO profiles (id, username, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, avatar_url = excluded.avatar_url`
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), p.ID, p.Username, avatar); err != nil {
		return errors.Store("put profile", err)
	}
	return nil
}

// call invokes a two-argument procedure, server-side when the dialect has
// stored procedures, otherwise by running its body in a transaction.
func (s *SQLStore) call(ctx context.Context, name, selfID, peerID string) error {
	body, emulated := s.dialect.procedures[name]
	if !emulated {
		query := s.dialect.Rebind(`SELECT ` + name + `(?, ?)`)
		if _, err := s.db.ExecContext(ctx, query, selfID, peerID); err != nil {
			return errors.RPC(name, err)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.RPC(name, err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range body {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(stmt.query), stmt.args(selfID, peerID)...); err != nil {
			return errors.RPC(name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.RPC(name, err)
	}
	return nil
}

func (s *SQLStore) publish(ctx context.Context, change event.MessageChange) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.log.Warn("Change not published", "type", change.Type, "id", change.Message.ID, "error", err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (domain.StoredMessage, error) {
	var m domain.StoredMessage
	var status, attachment sql.NullString
	var editedAt sql.NullTime
	if err := row.Scan(&m.ID, &m.Content, &m.SenderID, &m.RecipientID, &m.CreatedAt, &m.Read,
		&status, &editedAt, &attachment); err != nil {
		return domain.StoredMessage{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	if status.Valid {
		m.Status = lo.ToPtr(status.String)
	}
	if editedAt.Valid {
		m.EditedAt = lo.ToPtr(editedAt.Time.UTC())
	}
	if attachment.Valid {
		m.AttachmentURL = lo.ToPtr(attachment.String)
	}
	return m, nil
}

func scanMessages(rows *sql.Rows) ([]domain.StoredMessage, error) {
	var messages []domain.StoredMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// groupChatUsers folds newest-first messages into one entry per peer.
func groupChatUsers(selfID string, newestFirst []domain.StoredMessage) []domain.ChatUser {
	byPeer := make(map[string]*domain.ChatUser)
	var order []string
	for _, m := range newestFirst {
		peer := m.Counterpart(selfID)
		u, ok := byPeer[peer]
		if !ok {
			last := m
			u = &domain.ChatUser{Profile: domain.Profile{ID: peer}, LastMessage: &last}
			byPeer[peer] = u
			order = append(order, peer)
		}
		if m.RecipientID == selfID && !m.Read {
			u.UnreadCount++
		}
	}
	users := lo.Map(order, func(peer string, _ int) domain.ChatUser { return *byPeer[peer] })
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].LastMessage.CreatedAt.After(users[j].LastMessage.CreatedAt)
	})
	return users
}

func attachProfiles(users []domain.ChatUser, profiles map[string]domain.Profile) []domain.ChatUser {
	for i, u := range users {
		if p, ok := profiles[u.Profile.ID]; ok {
			users[i].Profile = p
		} else {
			users[i].Profile.Username = u.Profile.ID
		}
	}
	return users
}
