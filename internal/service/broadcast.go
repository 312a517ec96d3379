package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/metrics"
	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// Sender is the outbound surface of the chat transport. Implementations
// return the ID of the message they produced.
type Sender interface {
	// Send posts a standalone message to the chat.
	Send(chatID int64, text string) (int, error)
	// Copy duplicates an existing message into the chat.
	Copy(toChatID, fromChatID int64, messageID int) (int, error)
	// Reply posts a message as a reply to an earlier one.
	Reply(chatID int64, replyToMessageID int, text string) (int, error)
}

// ReplyRef identifies the message the trigger command replied to, used as the
// copy-message anchor source.
type ReplyRef struct {
	ChatID    int64
	MessageID int
}

// BroadcastRequest describes one broadcast trigger.
type BroadcastRequest struct {
	ChatID int64
	UserID int64
	// Reply is the message the trigger replied to, if any. Only used when
	// the chat has copy_message enabled.
	Reply *ReplyRef
}

// BroadcastResult reports how a run ended.
type BroadcastResult struct {
	Members int
	Chunks  int
	Sent    int
	Stopped bool
	// SendErrs aggregates per-chunk transport failures. They never abort
	// the run; callers typically just log them.
	SendErrs error
}

// StartBroadcast runs one mention-everyone broadcast for the chat: it loads
// the chat policy, gates on admin rights, snapshots the roster, then sends
// the rendered mentions in paced chunks until done or stopped.
//
// Admin-gate and roster failures surface as ErrPermissionDenied and
// ErrEmptyRoster; individual chunk send failures are collected in the result
// and do not abort the run.
func (s *Service) StartBroadcast(ctx context.Context, sender Sender, req BroadcastRequest) (*BroadcastResult, error) {
	cfg, err := s.GetChatConfig(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}

	if cfg.OnlyAdmins {
		isAdmin, err := s.admins.IsAdmin(req.ChatID, req.UserID)
		if err != nil {
			// Fail closed, but keep the failure category visible.
			s.logger.WithFields(logrus.Fields{
				"chat_id": req.ChatID,
				"user_id": req.UserID,
				"error":   err,
			}).Warn("Admin lookup failed; treating user as non-admin")
			isAdmin = false
		}
		if !isAdmin {
			return nil, ErrPermissionDenied
		}
	}

	roster, err := s.Roster(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	// The flag survives across runs; a stop requested while no run was
	// active must not poison this one.
	flag := s.stopFlag(req.ChatID)
	flag.Store(false)

	tokens := make([]string, 0, len(roster))
	for _, m := range roster {
		tokens = append(tokens, Mention(m, cfg.TagStyle, cfg.Emoji))
	}
	chunks := chunkMentions(tokens, cfg.EffectiveChunkSize())

	header := "📣 Tagging everyone…"
	if cfg.TagStyle == models.TagStyleEmoji {
		header = cfg.Emoji + " Tagging everyone…"
	}
	if _, err := sender.Send(req.ChatID, fmt.Sprintf("%s (%d members known)", header, len(roster))); err != nil {
		s.logger.Errorf("Failed to send broadcast header to chat %d: %v", req.ChatID, err)
	}

	metrics.BroadcastsStarted.Inc()
	s.logger.WithFields(logrus.Fields{
		"chat_id": req.ChatID,
		"members": len(roster),
		"chunks":  len(chunks),
	}).Info("Broadcast started")

	// Anchor duplication only applies when the chat opted in and the
	// trigger actually replied to something.
	reply := req.Reply
	if !cfg.CopyMessage {
		reply = nil
	}

	result := &BroadcastResult{Members: len(roster), Chunks: len(chunks)}
	var sendErrs *multierror.Error

	for i, chunk := range chunks {
		if flag.Load() {
			result.Stopped = true
			if _, err := sender.Send(req.ChatID, "✅ Stopped."); err != nil {
				s.logger.Errorf("Failed to send stop notice to chat %d: %v", req.ChatID, err)
			}
			break
		}

		text := strings.Join(chunk, " ")
		if err := s.sendChunk(sender, req.ChatID, reply, text); err != nil {
			// One unreachable chunk must not stall the roster.
			sendErrs = multierror.Append(sendErrs, err)
			metrics.SendFailures.Inc()
			s.logger.Errorf("Failed to send chunk %d/%d to chat %d: %v", i+1, len(chunks), req.ChatID, err)
		} else {
			result.Sent++
			metrics.ChunksSent.Inc()
		}

		if i < len(chunks)-1 {
			if stopped := s.pause(ctx, cfg.Delay()); stopped {
				// Process shutting down; end the run quietly.
				result.Stopped = true
				break
			}
		}
	}

	if !result.Stopped {
		if _, err := sender.Send(req.ChatID, "✅ Done."); err != nil {
			s.logger.Errorf("Failed to send done notice to chat %d: %v", req.ChatID, err)
		}
	}

	result.SendErrs = sendErrs.ErrorOrNil()

	outcome := "completed"
	if result.Stopped {
		outcome = "stopped"
	}
	metrics.BroadcastsFinished.WithLabelValues(outcome).Inc()
	s.logger.WithFields(logrus.Fields{
		"chat_id": req.ChatID,
		"sent":    result.Sent,
		"outcome": outcome,
	}).Info("Broadcast finished")

	return result, nil
}

// StopBroadcast requests cancellation of the chat's active run. Stopping with
// no run in flight is harmless: the flag is cleared again at the next run's
// start.
func (s *Service) StopBroadcast(chatID int64) {
	s.stopFlag(chatID).Store(true)
	s.logger.Infof("Stop requested for chat %d", chatID)
}

// sendChunk delivers one chunk. With an anchor reference present it first
// duplicates the referenced message and replies to the duplicate; any failure
// on that path degrades to a plain standalone send.
func (s *Service) sendChunk(sender Sender, chatID int64, reply *ReplyRef, text string) error {
	if reply != nil {
		anchorID, err := sender.Copy(chatID, reply.ChatID, reply.MessageID)
		if err == nil {
			if _, err = sender.Reply(chatID, anchorID, text); err == nil {
				return nil
			}
		}
		s.logger.Warnf("Anchor duplication failed for chat %d, sending plain chunk: %v", chatID, err)
	}

	_, err := sender.Send(chatID, text)
	return err
}

// pause waits out the configured inter-chunk delay. It returns true if the
// context was cancelled while waiting.
func (s *Service) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() != nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
