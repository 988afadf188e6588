// Package projection turns the rows returned by the store into the messages
// the UI renders. It handles defaults, ordering and deduplication.
// It does not emit events or touch the cache.
package projection

import (
	"chat-dm/contract"
	"chat-dm/domain"
	"context"
	"log/slog"
	"sort"

	"github.com/samber/lo"
)

// Fetch loads one page of the conversation between selfID and peerID and
// projects it, resolving every sender with a single profile lookup.
// Without profiles the page is still returned, just without sender details.
func Fetch(ctx context.Context, store contract.IStore, log *slog.Logger, selfID, peerID, search string) ([]domain.Message, error) {
	rows, err := store.FetchConversation(ctx, selfID, peerID, search)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Message{}, nil
	}
	profiles, err := store.FetchProfiles(ctx, SenderIDs(rows))
	if err != nil {
		log.Warn("Sender profiles unavailable", "peer", peerID, "error", err)
		profiles = nil
	}
	return Conversation(rows, profiles), nil
}

// SenderIDs returns the distinct senders of rows, in first-seen order.
func SenderIDs(rows []domain.StoredMessage) []string {
	return lo.Uniq(lo.Map(rows, func(m domain.StoredMessage, _ int) string { return m.SenderID }))
}

// Conversation projects a newest-first page into an ascending list without
// duplicate ids. Rows with the same created_at keep their relative order.
func Conversation(newestFirst []domain.StoredMessage, profiles map[string]domain.Profile) []domain.Message {
	rows := lo.UniqBy(newestFirst, func(m domain.StoredMessage) string { return m.ID })
	messages := make([]domain.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		messages = append(messages, Message(rows[i], profiles))
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages
}

// Message projects one row. Fields the backend does not persist yet get
// their defaults: no reactions, text type, no file metadata.
func Message(row domain.StoredMessage, profiles map[string]domain.Profile) domain.Message {
	status := domain.StatusSent
	if row.Status != nil {
		status = domain.ParseStatus(*row.Status)
	}
	m := domain.Message{
		ID:            row.ID,
		Content:       row.Content,
		SenderID:      row.SenderID,
		RecipientID:   row.RecipientID,
		CreatedAt:     row.CreatedAt,
		Read:          row.Read,
		Status:        status,
		EditedAt:      row.EditedAt,
		Reactions:     []domain.Reaction{},
		Type:          domain.TypeText,
		AttachmentURL: row.AttachmentURL,
	}
	if p, ok := profiles[row.SenderID]; ok {
		m.SenderUsername = lo.ToPtr(p.Username)
		m.SenderAvatarURL = p.AvatarURL
	}
	return m
}
