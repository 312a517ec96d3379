package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Bot wraps the Telegram bot API. It implements the service layer's Sender
// and AdminChecker contracts.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logrus.Logger
	router *Router
}

// NewBot creates a new Telegram bot instance
func NewBot(token string, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger),
	}, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	// Drop any webhook so polling works
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	// chat_member updates are only delivered when asked for explicitly
	u.AllowedUpdates = []string{
		tgbotapi.UpdateTypeMessage,
		tgbotapi.UpdateTypeChatMember,
		tgbotapi.UpdateTypeMyChatMember,
	}

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate processes incoming updates
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	switch {
	case update.Message != nil:
		b.router.HandleMessage(b, update.Message)
	case update.ChatMember != nil:
		b.router.HandleChatMember(update.ChatMember)
	case update.MyChatMember != nil:
		b.router.HandleChatMember(update.MyChatMember)
	}
}

// Send posts a standalone HTML message to a chat and returns its message ID.
// Link previews are disabled so the invisible mention links stay invisible.
func (b *Bot) Send(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	return sent.MessageID, nil
}

// Copy duplicates an existing message into a chat and returns the new
// message's ID.
func (b *Bot) Copy(toChatID, fromChatID int64, messageID int) (int, error) {
	copied, err := b.api.CopyMessage(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	if err != nil {
		return 0, fmt.Errorf("failed to copy message: %w", err)
	}

	return copied.MessageID, nil
}

// Reply posts an HTML message as a reply to an earlier message and returns
// its message ID.
func (b *Bot) Reply(chatID int64, replyToMessageID int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyToMessageID = replyToMessageID

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send reply: %w", err)
	}

	return sent.MessageID, nil
}

// IsAdmin reports whether the user is among the chat's administrators.
func (b *Bot) IsAdmin(chatID, userID int64) (bool, error) {
	admins, err := b.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return false, fmt.Errorf("failed to list chat administrators: %w", err)
	}

	for _, admin := range admins {
		if admin.User != nil && admin.User.ID == userID {
			return true, nil
		}
	}

	return false, nil
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

// RegisterActivityHandler registers the hook for non-command group messages
func (b *Bot) RegisterActivityHandler(handler ActivityHandler) {
	b.router.RegisterActivityHandler(handler)
}

// RegisterMembershipHandler registers the hook for chat member updates
func (b *Bot) RegisterMembershipHandler(handler MembershipHandler) {
	b.router.RegisterMembershipHandler(handler)
}
