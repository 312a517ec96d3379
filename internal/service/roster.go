package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/metrics"
	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// Chat member statuses delivered by the transport.
const (
	StatusMember        = "member"
	StatusAdministrator = "administrator"
	StatusCreator       = "creator"
	StatusLeft          = "left"
	StatusKicked        = "kicked"
)

// RecordActivity records a member sighted through ordinary chat activity.
// Bots are never recorded.
func (s *Service) RecordActivity(ctx context.Context, member *models.Member, isBot bool) error {
	if isBot {
		return nil
	}

	if err := s.members.Upsert(ctx, member); err != nil {
		return fmt.Errorf("failed to record member (chat_id=%d, user_id=%d): %w",
			member.ChatID, member.UserID, err)
	}

	metrics.MembersLearned.Inc()
	return nil
}

// HandleMembershipChange reacts to a chat member status transition: present
// statuses upsert the member, departed statuses remove them. Other statuses
// (e.g. restricted) are ignored.
func (s *Service) HandleMembershipChange(ctx context.Context, member *models.Member, status string) error {
	switch status {
	case StatusMember, StatusAdministrator, StatusCreator:
		if err := s.members.Upsert(ctx, member); err != nil {
			return fmt.Errorf("failed to upsert member (chat_id=%d, user_id=%d): %w",
				member.ChatID, member.UserID, err)
		}
		metrics.MembersLearned.Inc()
		s.logger.WithFields(logrus.Fields{
			"chat_id": member.ChatID,
			"user_id": member.UserID,
			"status":  status,
		}).Info("Member joined roster")
	case StatusLeft, StatusKicked:
		if err := s.members.Remove(ctx, member.ChatID, member.UserID); err != nil {
			return fmt.Errorf("failed to remove member (chat_id=%d, user_id=%d): %w",
				member.ChatID, member.UserID, err)
		}
		metrics.MembersForgotten.Inc()
		s.logger.WithFields(logrus.Fields{
			"chat_id": member.ChatID,
			"user_id": member.UserID,
			"status":  status,
		}).Info("Member left roster")
	default:
		s.logger.Debugf("Ignoring membership status %q for user %d in chat %d",
			status, member.UserID, member.ChatID)
	}
	return nil
}

// Roster returns a snapshot of all known members of the chat.
func (s *Service) Roster(ctx context.Context, chatID int64) ([]*models.Member, error) {
	members, err := s.members.List(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster (chat_id=%d): %w", chatID, err)
	}
	return members, nil
}

// RosterSize returns the number of known members of the chat.
func (s *Service) RosterSize(ctx context.Context, chatID int64) (int, error) {
	count, err := s.members.Count(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("failed to count roster (chat_id=%d): %w", chatID, err)
	}
	return count, nil
}
