package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
	"github.com/Kotliarevtsev/mentionbot/internal/service"
	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
)

// requireGroup replies with a hint and returns false when the command was
// issued outside a group chat.
func requireGroup(bot *telegram.Bot, message *tgbotapi.Message) bool {
	if message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
		return true
	}
	bot.Reply(message.Chat.ID, message.MessageID, "This command works in group chats. Add me to a group first.")
	return false
}

// ---------------------------------------------------------------------------
// ToggleHandler – /onlyadmins /noonlyadmins /copymessage /nocopymessage
//                 /emptytagtype /emojitagtype /nametagtype
// ---------------------------------------------------------------------------

// ToggleHandler applies a fixed config update when its command fires and
// confirms the resulting setting.
type ToggleHandler struct {
	svc     *service.Service
	logger  *logrus.Logger
	update  service.ChatConfigUpdate
	confirm func(cfg *models.ChatConfig) string
}

// NewOnlyAdminsHandler creates the handler toggling admin gating of /all.
func NewOnlyAdminsHandler(svc *service.Service, logger *logrus.Logger, enabled bool) *ToggleHandler {
	confirm := "✅ /all allowed for everyone."
	if enabled {
		confirm = "✅ /all is now admins only."
	}
	return &ToggleHandler{
		svc:     svc,
		logger:  logger,
		update:  service.ChatConfigUpdate{OnlyAdmins: &enabled},
		confirm: func(*models.ChatConfig) string { return confirm },
	}
}

// NewCopyMessageHandler creates the handler toggling reply duplication.
func NewCopyMessageHandler(svc *service.Service, logger *logrus.Logger, enabled bool) *ToggleHandler {
	confirm := "✅ Tagging will send fresh messages."
	if enabled {
		confirm = "✅ Tagging will copy the replied message (if present)."
	}
	return &ToggleHandler{
		svc:     svc,
		logger:  logger,
		update:  service.ChatConfigUpdate{CopyMessage: &enabled},
		confirm: func(*models.ChatConfig) string { return confirm },
	}
}

// NewTagStyleHandler creates the handler selecting one of the tag styles.
func NewTagStyleHandler(svc *service.Service, logger *logrus.Logger, style models.TagStyle) *ToggleHandler {
	return &ToggleHandler{
		svc:    svc,
		logger: logger,
		update: service.ChatConfigUpdate{TagStyle: &style},
		confirm: func(cfg *models.ChatConfig) string {
			switch style {
			case models.TagStyleEmoji:
				return fmt.Sprintf("✅ Tag style set to emoji (%s).", cfg.Emoji)
			case models.TagStyleName:
				return "✅ Tag style set to name + mention."
			default:
				return "✅ Tag style set to plain mentions."
			}
		},
	}
}

// Handle applies the handler's config update.
func (h *ToggleHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	if !requireGroup(bot, message) {
		return nil
	}

	cfg, err := h.svc.UpdateChatConfig(context.Background(), message.Chat.ID, h.update)
	if err != nil {
		return fmt.Errorf("update chat config: %w", err)
	}

	if _, err := bot.Reply(message.Chat.ID, message.MessageID, h.confirm(cfg)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// SettingsHandler – /settings
// ---------------------------------------------------------------------------

// SettingsHandler shows the chat's current effective configuration.
type SettingsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc *service.Service, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

// Handle processes the /settings command.
func (h *SettingsHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	if !requireGroup(bot, message) {
		return nil
	}

	ctx := context.Background()

	cfg, err := h.svc.GetChatConfig(ctx, message.Chat.ID)
	if err != nil {
		return fmt.Errorf("get chat config: %w", err)
	}

	known, err := h.svc.RosterSize(ctx, message.Chat.ID)
	if err != nil {
		return fmt.Errorf("count roster: %w", err)
	}

	text := fmt.Sprintf(`⚙️ <b>Settings for this chat</b>
• only admins: %s
• copy replied message: %s
• tag style: %s
• emoji: %s
• chunk size: %d
• delay: %d ms
• members known: %d`,
		onOff(cfg.OnlyAdmins),
		onOff(cfg.CopyMessage),
		cfg.TagStyle,
		cfg.Emoji,
		cfg.ChunkSize,
		cfg.DelayMS,
		known,
	)

	if _, err := bot.Send(message.Chat.ID, text); err != nil {
		return fmt.Errorf("failed to send settings: %w", err)
	}

	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
