package service

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/Kotliarevtsev/mentionbot/internal/repository"
)

// Sentinel errors surfaced to command handlers. Anything else coming out of
// the service is a storage or transport failure wrapped with context.
var (
	// ErrPermissionDenied means a non-admin triggered an admin-gated broadcast.
	ErrPermissionDenied = errors.New("only chat admins may trigger a broadcast")
	// ErrEmptyRoster means the bot has not learned any members of the chat yet.
	ErrEmptyRoster = errors.New("no known members in this chat")
)

// AdminChecker reports whether a user is an administrator of a chat.
type AdminChecker interface {
	IsAdmin(chatID, userID int64) (bool, error)
}

// Service is the central business logic layer: per-chat policy, the passively
// learned roster, and broadcast runs.
type Service struct {
	logger  *logrus.Logger
	configs repository.ChatConfigRepository
	members repository.MemberRepository
	admins  AdminChecker

	// Serializes config read-modify-write cycles so concurrent updates for
	// the same chat cannot lose writes.
	configMu sync.Mutex

	// Per-chat broadcast stop flags, created lazily and kept for the process
	// lifetime. One entry per chat ever seen.
	flagMu    sync.Mutex
	stopFlags map[int64]*atomic.Bool
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger,
	configs repository.ChatConfigRepository,
	members repository.MemberRepository,
	admins AdminChecker,
) *Service {
	return &Service{
		logger:    logger,
		configs:   configs,
		members:   members,
		admins:    admins,
		stopFlags: make(map[int64]*atomic.Bool),
	}
}

// stopFlag returns the chat's stop flag, creating it on first use. The same
// flag object is reused across runs; StartBroadcast clears it at run entry.
func (s *Service) stopFlag(chatID int64) *atomic.Bool {
	s.flagMu.Lock()
	defer s.flagMu.Unlock()

	flag := s.stopFlags[chatID]
	if flag == nil {
		flag = atomic.NewBool(false)
		s.stopFlags[chatID] = flag
	}
	return flag
}
