package repository

import (
	"context"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// ChatConfigRepository defines the interface for per-chat policy storage.
type ChatConfigRepository interface {
	// Get returns the stored config for the chat, or nil if the chat has
	// never been configured.
	Get(ctx context.Context, chatID int64) (*models.ChatConfig, error)
	// Save persists the full config row, inserting or replacing it.
	Save(ctx context.Context, cfg *models.ChatConfig) (*models.ChatConfig, error)
}

// MemberRepository defines the interface for the learned chat roster.
type MemberRepository interface {
	// Upsert records or overwrites the member's display fields (last write wins).
	Upsert(ctx context.Context, member *models.Member) error
	// Remove deletes the member row. Removing an unknown member is not an error.
	Remove(ctx context.Context, chatID, userID int64) error
	// List returns all known members of the chat ordered by user ID.
	List(ctx context.Context, chatID int64) ([]*models.Member, error)
	// Count returns the number of known members of the chat.
	Count(ctx context.Context, chatID int64) (int, error)
}
