package cache

import (
	"strconv"
	"strings"
)

// Key is an ordered tuple compared element by element.
type Key []string

var (
	ChatUsersKey   = Key{"chat-users"}
	SettingsPrefix = Key{"conversation-settings"}
)

// ConversationKey addresses one conversation page. An empty search is left out
// of the tuple so that ConversationPrefix(peer) also matches the unfiltered page.
func ConversationKey(peerID, search string) Key {
	if search == "" {
		return Key{"conversation", peerID}
	}
	return Key{"conversation", peerID, search}
}

func ConversationPrefix(peerID string) Key {
	return Key{"conversation", peerID}
}

func SettingsKey(peerID string) Key {
	return Key{"conversation-settings", peerID}
}

func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// String is an unambiguous encoding, used as the map identity of the key.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = strconv.Quote(p)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
