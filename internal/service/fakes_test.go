package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// In-memory stand-ins for the postgres repositories and the Telegram
// transport, shared by the service tests.

type fakeConfigRepo struct {
	mu      sync.Mutex
	rows    map[int64]*models.ChatConfig
	getErr  error
	saveErr error
	saves   int
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{rows: make(map[int64]*models.ChatConfig)}
}

func (r *fakeConfigRepo) Get(_ context.Context, chatID int64) (*models.ChatConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	cfg, ok := r.rows[chatID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (r *fakeConfigRepo) Save(_ context.Context, cfg *models.ChatConfig) (*models.ChatConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	cp := *cfg
	r.rows[cfg.ChatID] = &cp
	r.saves++
	out := cp
	return &out, nil
}

type fakeMemberRepo struct {
	mu   sync.Mutex
	rows map[int64]map[int64]*models.Member
	err  error
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{rows: make(map[int64]map[int64]*models.Member)}
}

func (r *fakeMemberRepo) Upsert(_ context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	chat := r.rows[member.ChatID]
	if chat == nil {
		chat = make(map[int64]*models.Member)
		r.rows[member.ChatID] = chat
	}
	cp := *member
	chat[member.UserID] = &cp
	return nil
}

func (r *fakeMemberRepo) Remove(_ context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.rows[chatID], userID)
	return nil
}

func (r *fakeMemberRepo) List(_ context.Context, chatID int64) ([]*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var members []*models.Member
	for _, m := range r.rows[chatID] {
		cp := *m
		members = append(members, &cp)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (r *fakeMemberRepo) Count(_ context.Context, chatID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.rows[chatID]), nil
}

type fakeAdminChecker struct {
	admins map[int64]bool
	err    error
}

func (c *fakeAdminChecker) IsAdmin(_, userID int64) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.admins[userID], nil
}

type sentMessage struct {
	kind    string // "send", "copy" or "reply"
	chatID  int64
	replyTo int
	text    string
}

type fakeSender struct {
	mu       sync.Mutex
	messages []sentMessage
	nextID   int

	// failSubstring makes Send/Reply fail for texts containing it.
	failSubstring string
	copyErr       error
	replyErr      error
	// afterSend runs after every successful Send, outside the lock.
	afterSend func(text string)
}

func (s *fakeSender) Send(chatID int64, text string) (int, error) {
	s.mu.Lock()
	if s.failSubstring != "" && strings.Contains(text, s.failSubstring) {
		s.mu.Unlock()
		return 0, fmt.Errorf("send refused for %q", text)
	}
	s.nextID++
	id := s.nextID
	s.messages = append(s.messages, sentMessage{kind: "send", chatID: chatID, text: text})
	hook := s.afterSend
	s.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	return id, nil
}

func (s *fakeSender) Copy(toChatID, _ int64, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.copyErr != nil {
		return 0, s.copyErr
	}
	s.nextID++
	s.messages = append(s.messages, sentMessage{kind: "copy", chatID: toChatID})
	return s.nextID, nil
}

func (s *fakeSender) Reply(chatID int64, replyTo int, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replyErr != nil {
		return 0, s.replyErr
	}
	if s.failSubstring != "" && strings.Contains(text, s.failSubstring) {
		return 0, fmt.Errorf("reply refused for %q", text)
	}
	s.nextID++
	s.messages = append(s.messages, sentMessage{kind: "reply", chatID: chatID, replyTo: replyTo, text: text})
	return s.nextID, nil
}

func (s *fakeSender) sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.messages...)
}

func (s *fakeSender) texts() []string {
	var out []string
	for _, m := range s.sent() {
		if m.kind != "copy" {
			out = append(out, m.text)
		}
	}
	return out
}

func newTestService(configs *fakeConfigRepo, members *fakeMemberRepo, admins *fakeAdminChecker) *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)
	if admins == nil {
		admins = &fakeAdminChecker{}
	}
	return New(l, configs, members, admins)
}
