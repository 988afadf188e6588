package domain

// ConversationSettings are owned by one user for one peer.
// They are not persisted yet: readers get DefaultSettings.
type ConversationSettings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Archived             bool   `json:"archived"`
	Pinned               bool   `json:"pinned"`
	Muted                bool   `json:"muted"`
	Nickname             string `json:"nickname"`
	BackgroundImage      string `json:"background_image"`
}

func DefaultSettings() ConversationSettings {
	return ConversationSettings{NotificationsEnabled: true}
}

// SettingsPatch is a partial update; nil fields are left untouched.
type SettingsPatch struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	Archived             *bool   `json:"archived,omitempty"`
	Pinned               *bool   `json:"pinned,omitempty"`
	Muted                *bool   `json:"muted,omitempty"`
	Nickname             *string `json:"nickname,omitempty"`
	BackgroundImage      *string `json:"background_image,omitempty"`
}

func (p SettingsPatch) Apply(s ConversationSettings) ConversationSettings {
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.Archived != nil {
		s.Archived = *p.Archived
	}
	if p.Pinned != nil {
		s.Pinned = *p.Pinned
	}
	if p.Muted != nil {
		s.Muted = *p.Muted
	}
	if p.Nickname != nil {
		s.Nickname = *p.Nickname
	}
	if p.BackgroundImage != nil {
		s.BackgroundImage = *p.BackgroundImage
	}
	return s
}

func (p SettingsPatch) IsEmpty() bool {
	return p == SettingsPatch{}
}
