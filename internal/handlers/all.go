package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/service"
	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
)

// AllHandler handles the /all command that mentions every known member.
type AllHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAllHandler creates a new AllHandler.
func NewAllHandler(svc *service.Service, logger *logrus.Logger) *AllHandler {
	return &AllHandler{svc: svc, logger: logger}
}

// Handle processes the /all command. The paced send loop runs inside
// StartBroadcast; each update is already handled on its own goroutine, so
// blocking here does not hold up other chats.
func (h *AllHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	if !requireGroup(bot, message) {
		return nil
	}

	req := service.BroadcastRequest{
		ChatID: message.Chat.ID,
		UserID: message.From.ID,
	}
	if message.ReplyToMessage != nil {
		req.Reply = &service.ReplyRef{
			ChatID:    message.Chat.ID,
			MessageID: message.ReplyToMessage.MessageID,
		}
	}

	result, err := h.svc.StartBroadcast(context.Background(), bot, req)
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		bot.Reply(message.Chat.ID, message.MessageID, "⛔ Only admins can use /all here.")
		return nil
	case errors.Is(err, service.ErrEmptyRoster):
		bot.Reply(message.Chat.ID, message.MessageID,
			"I don't know anyone here yet. Send a few messages so I can learn members.")
		return nil
	case err != nil:
		return fmt.Errorf("start broadcast: %w", err)
	}

	if result.SendErrs != nil {
		h.logger.WithFields(logrus.Fields{
			"chat_id": message.Chat.ID,
			"sent":    result.Sent,
			"chunks":  result.Chunks,
		}).Warnf("Broadcast had send failures: %v", result.SendErrs)
	}

	return nil
}

// StopHandler handles the /stopall command.
type StopHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStopHandler creates a new StopHandler.
func NewStopHandler(svc *service.Service, logger *logrus.Logger) *StopHandler {
	return &StopHandler{svc: svc, logger: logger}
}

// Handle processes the /stopall command. Stopping always succeeds, whether or
// not a run is active.
func (h *StopHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	if !requireGroup(bot, message) {
		return nil
	}

	h.svc.StopBroadcast(message.Chat.ID)

	if _, err := bot.Reply(message.Chat.ID, message.MessageID, "🛑 Stopping current tag run (if any)."); err != nil {
		return fmt.Errorf("failed to send stop acknowledgment: %w", err)
	}

	return nil
}
