package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
	"github.com/Kotliarevtsev/mentionbot/internal/repository"
)

type chatConfigRepository struct {
	db *sql.DB
}

// NewChatConfigRepository creates a new chat config repository
func NewChatConfigRepository(db *sql.DB) repository.ChatConfigRepository {
	return &chatConfigRepository{db: db}
}

func (r *chatConfigRepository) Get(ctx context.Context, chatID int64) (*models.ChatConfig, error) {
	query := `
		SELECT chat_id, only_admins, copy_message, tag_style, emoji, chunk_size, delay_ms, created_at, updated_at
		FROM chat_configs
		WHERE chat_id = $1`

	cfg := &models.ChatConfig{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&cfg.ChatID,
		&cfg.OnlyAdmins,
		&cfg.CopyMessage,
		&cfg.TagStyle,
		&cfg.Emoji,
		&cfg.ChunkSize,
		&cfg.DelayMS,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat config: %w", err)
	}

	return cfg, nil
}

func (r *chatConfigRepository) Save(ctx context.Context, cfg *models.ChatConfig) (*models.ChatConfig, error) {
	query := `
		INSERT INTO chat_configs (chat_id, only_admins, copy_message, tag_style, emoji, chunk_size, delay_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chat_id) DO UPDATE SET
			only_admins = EXCLUDED.only_admins,
			copy_message = EXCLUDED.copy_message,
			tag_style = EXCLUDED.tag_style,
			emoji = EXCLUDED.emoji,
			chunk_size = EXCLUDED.chunk_size,
			delay_ms = EXCLUDED.delay_ms,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	now := time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		cfg.ChatID,
		cfg.OnlyAdmins,
		cfg.CopyMessage,
		cfg.TagStyle,
		cfg.Emoji,
		cfg.ChunkSize,
		cfg.DelayMS,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to save chat config: %w", err)
	}

	return cfg, nil
}
