// Package domain contains core concepts of the direct-message client.
// This file defines Message and the raw row it is projected from.
package domain

import (
	"time"
)

type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// ParseStatus falls back to StatusSent for empty or unknown values.
func ParseStatus(s string) MessageStatus {
	switch MessageStatus(s) {
	case StatusSending, StatusSent, StatusDelivered, StatusRead:
		return MessageStatus(s)
	default:
		return StatusSent
	}
}

type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeFile     MessageType = "file"
	TypeAudio    MessageType = "audio"
	TypeVideo    MessageType = "video"
	TypeLocation MessageType = "location"
)

type Reaction struct {
	UserID   string `json:"user_id"`
	Reaction string `json:"reaction"`
}

// Message is the shape surfaced to the UI once a stored row has been projected.
type Message struct {
	ID              string        `json:"id"`
	Content         string        `json:"content"`
	SenderID        string        `json:"sender_id"`
	RecipientID     string        `json:"recipient_id"`
	CreatedAt       time.Time     `json:"created_at"`
	Read            bool          `json:"read"`
	Status          MessageStatus `json:"message_status"`
	EditedAt        *time.Time    `json:"edited_at,omitempty"`
	Reactions       []Reaction    `json:"reactions"`
	Type            MessageType   `json:"message_type"`
	AttachmentURL   *string       `json:"attachment_url,omitempty"`
	FileName        *string       `json:"file_name,omitempty"`
	FileSize        *int64        `json:"file_size,omitempty"`
	Duration        *int          `json:"duration,omitempty"`
	SenderUsername  *string       `json:"sender_username,omitempty"`
	SenderAvatarURL *string       `json:"sender_avatar_url,omitempty"`
}

// StoredMessage is a row of the messages table as the backend returns it.
// Status is nil when the column is NULL.
type StoredMessage struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	SenderID      string     `json:"sender_id"`
	RecipientID   string     `json:"recipient_id"`
	CreatedAt     time.Time  `json:"created_at"`
	Read          bool       `json:"read"`
	Status        *string    `json:"message_status"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	AttachmentURL *string    `json:"attachment_url,omitempty"`
}

// NewMessage holds the columns the client is allowed to write.
// id, created_at, read and message_status are left to the backend.
type NewMessage struct {
	SenderID      string
	RecipientID   string
	Content       string
	AttachmentURL *string
}

// Counterpart returns the party of the message that is not selfID.
func (m StoredMessage) Counterpart(selfID string) string {
	if m.SenderID == selfID {
		return m.RecipientID
	}
	return m.SenderID
}

// Involves reports whether the message was exchanged between a and b, in either direction.
func (m StoredMessage) Involves(a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) ||
		(m.SenderID == b && m.RecipientID == a)
}

func (m Message) Counterpart(selfID string) string {
	if m.SenderID == selfID {
		return m.RecipientID
	}
	return m.SenderID
}
