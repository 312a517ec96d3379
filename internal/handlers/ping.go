package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
)

// PingHandler handles the /ping command
type PingHandler struct {
	logger *logrus.Logger
}

func NewPingHandler(logger *logrus.Logger) *PingHandler {
	return &PingHandler{logger: logger}
}

func (h *PingHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	if _, err := bot.Reply(message.Chat.ID, message.MessageID, "pong ✅"); err != nil {
		return fmt.Errorf("failed to send pong: %w", err)
	}
	return nil
}
