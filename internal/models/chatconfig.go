package models

import "time"

// TagStyle controls how a member is rendered inside a mention message.
type TagStyle string

const (
	// TagStyleEmpty renders only the @username (if any) plus the invisible ping link.
	TagStyleEmpty TagStyle = "empty"
	// TagStyleEmoji renders an emoji followed by the username or display name.
	TagStyleEmoji TagStyle = "emoji"
	// TagStyleName renders the member's display name.
	TagStyleName TagStyle = "name"
)

// Valid reports whether s is one of the known tag styles.
func (s TagStyle) Valid() bool {
	switch s {
	case TagStyleEmpty, TagStyleEmoji, TagStyleName:
		return true
	}
	return false
}

// Defaults applied to a chat the first time its config is accessed.
const (
	DefaultEmoji     = "🔔"
	DefaultChunkSize = 8
	DefaultDelayMS   = 900
)

// ChatConfig holds the per-chat mention policy.
type ChatConfig struct {
	ChatID      int64     `json:"chat_id" db:"chat_id"`
	OnlyAdmins  bool      `json:"only_admins" db:"only_admins"`
	CopyMessage bool      `json:"copy_message" db:"copy_message"`
	TagStyle    TagStyle  `json:"tag_style" db:"tag_style"`
	Emoji       string    `json:"emoji" db:"emoji"`
	ChunkSize   int       `json:"chunk_size" db:"chunk_size"`
	DelayMS     int       `json:"delay_ms" db:"delay_ms"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultChatConfig returns the policy materialized for a chat on first access.
func DefaultChatConfig(chatID int64) *ChatConfig {
	return &ChatConfig{
		ChatID:      chatID,
		OnlyAdmins:  true,
		CopyMessage: false,
		TagStyle:    TagStyleEmpty,
		Emoji:       DefaultEmoji,
		ChunkSize:   DefaultChunkSize,
		DelayMS:     DefaultDelayMS,
	}
}

// Delay returns the configured pause between chunk sends.
func (c *ChatConfig) Delay() time.Duration {
	if c.DelayMS <= 0 {
		return 0
	}
	return time.Duration(c.DelayMS) * time.Millisecond
}

// EffectiveChunkSize clamps the stored chunk size to a minimum of 1.
func (c *ChatConfig) EffectiveChunkSize() int {
	if c.ChunkSize < 1 {
		return 1
	}
	return c.ChunkSize
}
