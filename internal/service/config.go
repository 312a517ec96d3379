package service

import (
	"context"
	"fmt"

	"github.com/Kotliarevtsev/mentionbot/internal/metrics"
	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// ChatConfigUpdate carries a partial config update. Nil fields are left
// unchanged.
type ChatConfigUpdate struct {
	OnlyAdmins  *bool
	CopyMessage *bool
	TagStyle    *models.TagStyle
	Emoji       *string
	ChunkSize   *int
	DelayMS     *int
}

// GetChatConfig retrieves the chat's config, materializing and persisting the
// defaults if the chat has never been configured.
func (s *Service) GetChatConfig(ctx context.Context, chatID int64) (*models.ChatConfig, error) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	return s.getChatConfigLocked(ctx, chatID)
}

// getChatConfigLocked must be called with configMu held.
func (s *Service) getChatConfigLocked(ctx context.Context, chatID int64) (*models.ChatConfig, error) {
	cfg, err := s.configs.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load config (chat_id=%d): %w", chatID, err)
	}
	if cfg == nil {
		// First access for this chat — persist the defaults so later
		// reads and partial updates see a real row.
		cfg, err = s.configs.Save(ctx, models.DefaultChatConfig(chatID))
		if err != nil {
			return nil, fmt.Errorf("failed to create default config (chat_id=%d): %w", chatID, err)
		}
		s.logger.Infof("Created default config for chat %d", chatID)
	}
	return cfg, nil
}

// UpdateChatConfig applies the partial update on top of the current (or
// default) config and persists the full row.
func (s *Service) UpdateChatConfig(ctx context.Context, chatID int64, update ChatConfigUpdate) (*models.ChatConfig, error) {
	s.configMu.Lock()
	defer s.configMu.Unlock()

	cfg, err := s.getChatConfigLocked(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if update.OnlyAdmins != nil {
		cfg.OnlyAdmins = *update.OnlyAdmins
	}
	if update.CopyMessage != nil {
		cfg.CopyMessage = *update.CopyMessage
	}
	if update.TagStyle != nil {
		if !update.TagStyle.Valid() {
			return nil, fmt.Errorf("unknown tag style %q", *update.TagStyle)
		}
		cfg.TagStyle = *update.TagStyle
	}
	if update.Emoji != nil {
		cfg.Emoji = *update.Emoji
	}
	if update.ChunkSize != nil {
		cfg.ChunkSize = *update.ChunkSize
	}
	if update.DelayMS != nil {
		cfg.DelayMS = *update.DelayMS
	}

	cfg, err = s.configs.Save(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to save config (chat_id=%d): %w", chatID, err)
	}

	metrics.ConfigUpdates.Inc()
	s.logger.Infof("Updated config for chat %d", chatID)

	return cfg, nil
}
