package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot *telegram.Bot, message *tgbotapi.Message, args []string) error {
	helpText := `📚 <b>Mention Bot Help</b>

<b>Tagging:</b>
• /all - Mention every known member (reply to a message to anchor it)
• /stopall - Stop the current tag run

<b>Settings:</b>
• /settings - Show current settings
• /onlyadmins | /noonlyadmins - Restrict /all to admins, or allow everyone
• /copymessage | /nocopymessage - Copy the replied message before each chunk
• /emptytagtype - Plain @username mentions
• /emojitagtype - Emoji + name mentions
• /nametagtype - Name mentions

I learn members from their messages and from joins/leaves, so the roster
fills up as people talk.`

	if _, err := bot.Send(message.Chat.ID, helpText); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
