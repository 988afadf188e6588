package chat

import (
	"chat-dm/domain"
	"chat-dm/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxContentLength bounds a single message body.
const MaxContentLength = 4000

// SendMessageCommand is what the UI hands to the service to send a message.
// Only RecipientID, Content and AttachmentURL reach the store today; the file
// metadata fields are accepted so the UI contract stays stable.
type SendMessageCommand struct {
	RecipientID   string             `validate:"required"`
	Content       string             `validate:"required_without=AttachmentURL,max=4000"`
	Type          domain.MessageType `validate:"omitempty,oneof=text image file audio video location"`
	AttachmentURL *string            `validate:"omitempty,url"`
	FileName      *string
	FileSize      *int64 `validate:"omitempty,gte=0"`
	Duration      *int   `validate:"omitempty,gte=0"`
}

// Validate checks the command and normalizes its type.
func (c *SendMessageCommand) Validate() error {
	if c.Type == "" {
		c.Type = domain.TypeText
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	if c.AttachmentURL == nil && strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: content is blank", errors.ErrInvalidMessage)
	}
	return nil
}

// ToNewMessage builds the insert payload for a sender.
func (c SendMessageCommand) ToNewMessage(senderID string) domain.NewMessage {
	return domain.NewMessage{
		SenderID:      senderID,
		RecipientID:   c.RecipientID,
		Content:       c.Content,
		AttachmentURL: c.AttachmentURL,
	}
}
