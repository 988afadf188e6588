package ui

import (
	"bytes"
	"chat-dm/domain"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestRenderConversation(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	RenderConversation(out, "U1", []domain.Message{
		{ID: "1", SenderID: "U2", RecipientID: "U1", Content: "oi", CreatedAt: at, Status: domain.StatusSent, SenderUsername: lo.ToPtr("bob")},
		{ID: "2", SenderID: "U1", RecipientID: "U2", Content: "tudo bem?", CreatedAt: at.Add(time.Minute), Status: domain.StatusRead},
		{ID: "3", SenderID: "U2", RecipientID: "U1", CreatedAt: at.Add(2 * time.Minute), Type: domain.TypeImage,
			AttachmentURL: lo.ToPtr("https://cdn.example.com/a.png"), FileName: lo.ToPtr("a.png")},
	})

	text := out.String()
	req.Contains(text, "bob")
	req.Contains(text, "oi")
	req.Contains(text, "me")
	req.Contains(text, "read")
	req.Contains(text, "[image] a.png")
}

func TestRenderChatUsers(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}

	RenderChatUsers(out, []domain.ChatUser{
		{
			Profile:     domain.Profile{ID: "U2", Username: "bob"},
			LastMessage: &domain.StoredMessage{Content: "see you", CreatedAt: time.Now()},
			UnreadCount: 3,
		},
		{Profile: domain.Profile{ID: "U3", Username: "carol"}},
	})

	text := out.String()
	req.Contains(text, "bob")
	req.Contains(text, "see you")
	req.Contains(text, "3")
	req.Contains(text, "carol")
}

func TestPreview(t *testing.T) {
	req := require.New(t)
	req.Equal("short", preview("short", 10))
	req.Equal("abcd…", preview("abcdefgh", 5))
}
