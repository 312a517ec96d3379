package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *Bot, message *tgbotapi.Message, args []string) error
}

// ActivityHandler receives non-command group messages so the roster can learn
// active members.
type ActivityHandler func(message *tgbotapi.Message)

// MembershipHandler receives chat member status transitions.
type MembershipHandler func(update *tgbotapi.ChatMemberUpdated)

// Router dispatches incoming updates to command handlers and to the roster
// ingestion hooks.
type Router struct {
	logger     *logrus.Logger
	handlers   map[string]CommandHandler
	activity   ActivityHandler
	membership MembershipHandler
}

// NewRouter creates a new update router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// RegisterActivityHandler registers the non-command message hook
func (r *Router) RegisterActivityHandler(handler ActivityHandler) {
	r.activity = handler
}

// RegisterMembershipHandler registers the chat member update hook
func (r *Router) RegisterMembershipHandler(handler MembershipHandler) {
	r.membership = handler
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *Bot, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if !message.IsCommand() {
		// Ordinary activity; in groups it feeds the roster.
		if r.activity != nil && (message.Chat.IsGroup() || message.Chat.IsSuperGroup()) {
			r.activity(message)
		}
		return
	}

	r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"username":   message.From.UserName,
		"message_id": message.MessageID,
		"command":    message.Command(),
	}).Info("Received command")

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	handler, exists := r.handlers[command]
	if !exists {
		// Groups see commands meant for other bots too; stay quiet.
		r.logger.WithFields(logrus.Fields{
			"command": command,
			"chat_id": message.Chat.ID,
		}).Debug("Unknown command")
		return
	}

	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.WithFields(logrus.Fields{
			"command": command,
			"chat_id": message.Chat.ID,
			"user_id": message.From.ID,
			"error":   err,
		}).Error("Command handler failed")

		if _, err := bot.Send(message.Chat.ID, "❌ An error occurred while processing your command. Please try again."); err != nil {
			r.logger.Errorf("Failed to send error notice: %v", err)
		}
	}
}

// HandleChatMember handles chat member status updates
func (r *Router) HandleChatMember(update *tgbotapi.ChatMemberUpdated) {
	r.logger.WithFields(logrus.Fields{
		"chat_id": update.Chat.ID,
		"user_id": update.NewChatMember.User.ID,
		"status":  update.NewChatMember.Status,
	}).Debug("Received chat member update")

	if r.membership != nil {
		r.membership(update)
	}
}
