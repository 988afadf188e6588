package event

import (
	"chat-dm/domain"
)

type Type string

const (
	NewMessageType    Type = "NEW_MESSAGE"
	MessageUpdateType Type = "MESSAGE_UPDATE"
)

// MessageChange is a row-level change of the messages table pushed by the backend.
// It is a freshness signal only: consumers refetch instead of applying the payload.
type MessageChange struct {
	Type    Type
	Message domain.StoredMessage
}

func NewMessage(m domain.StoredMessage) MessageChange {
	return MessageChange{Type: NewMessageType, Message: m}
}

func MessageUpdate(m domain.StoredMessage) MessageChange {
	return MessageChange{Type: MessageUpdateType, Message: m}
}
