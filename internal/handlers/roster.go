package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
	"github.com/Kotliarevtsev/mentionbot/internal/service"
	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
)

// NewActivityHandler returns the hook that learns roster members from
// ordinary group messages.
func NewActivityHandler(svc *service.Service, logger *logrus.Logger) telegram.ActivityHandler {
	return func(message *tgbotapi.Message) {
		member := &models.Member{
			ChatID:    message.Chat.ID,
			UserID:    message.From.ID,
			FirstName: message.From.FirstName,
			LastName:  message.From.LastName,
			Username:  message.From.UserName,
		}

		if err := svc.RecordActivity(context.Background(), member, message.From.IsBot); err != nil {
			logger.Errorf("Failed to record activity in chat %d: %v", message.Chat.ID, err)
		}
	}
}

// NewMembershipHandler returns the hook that updates the roster on chat
// member status transitions.
func NewMembershipHandler(svc *service.Service, logger *logrus.Logger) telegram.MembershipHandler {
	return func(update *tgbotapi.ChatMemberUpdated) {
		user := update.NewChatMember.User
		if user == nil || user.IsBot {
			return
		}

		member := &models.Member{
			ChatID:    update.Chat.ID,
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.UserName,
		}

		if err := svc.HandleMembershipChange(context.Background(), member, update.NewChatMember.Status); err != nil {
			logger.Errorf("Failed to handle membership change in chat %d: %v", update.Chat.ID, err)
		}
	}
}
