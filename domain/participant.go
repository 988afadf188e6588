package domain

// Profile is the public part of a user account, joined onto messages in application code.
type Profile struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ChatUser is one line of the signed-in user's conversation list.
type ChatUser struct {
	Profile     Profile        `json:"profile"`
	LastMessage *StoredMessage `json:"last_message,omitempty"`
	UnreadCount int            `json:"unread_count"`
}
