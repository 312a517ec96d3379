package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

const testChat int64 = 100

// seedConfig stores a ready-made config so runs do not depend on defaults.
func seedConfig(configs *fakeConfigRepo, mutate func(*models.ChatConfig)) {
	cfg := models.DefaultChatConfig(testChat)
	cfg.OnlyAdmins = false
	cfg.DelayMS = 0
	if mutate != nil {
		mutate(cfg)
	}
	configs.rows[testChat] = cfg
}

func seedRoster(t *testing.T, svc *Service, members ...*models.Member) {
	t.Helper()
	for _, m := range members {
		m.ChatID = testChat
		require.NoError(t, svc.RecordActivity(context.Background(), m, false))
	}
}

func alice() *models.Member { return &models.Member{UserID: 1, Username: "alice"} }
func bob() *models.Member   { return &models.Member{UserID: 2, FirstName: "Bob"} }

func TestStartBroadcastDeniedForNonAdmin(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.OnlyAdmins = true })
	svc := newTestService(configs, newFakeMemberRepo(), &fakeAdminChecker{admins: map[int64]bool{}})
	seedRoster(t, svc, alice())
	sender := &fakeSender{}

	_, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, sender.sent(), "a denied trigger must not send anything")
}

func TestStartBroadcastFailsClosedOnAdminLookupError(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.OnlyAdmins = true })
	admins := &fakeAdminChecker{admins: map[int64]bool{9: true}, err: errors.New("api timeout")}
	svc := newTestService(configs, newFakeMemberRepo(), admins)
	seedRoster(t, svc, alice())
	sender := &fakeSender{}

	_, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, sender.sent())
}

func TestStartBroadcastEmptyRoster(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, nil)
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	sender := &fakeSender{}

	_, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})

	assert.ErrorIs(t, err, ErrEmptyRoster)
	assert.Empty(t, sender.sent(), "an empty roster must never reach the transport")
}

func TestStartBroadcastSendsChunksInOrder(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 1 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Members)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 2, result.Sent)
	assert.False(t, result.Stopped)

	texts := sender.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "📣 Tagging everyone… (2 members known)", texts[0])
	assert.Equal(t, "@alice"+link(1), texts[1])
	assert.Equal(t, link(2), texts[2], "no username under empty style leaves only the invisible link")
	assert.Equal(t, "✅ Done.", texts[3])
}

func TestStartBroadcastNameStyle(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) {
		c.ChunkSize = 1
		c.TagStyle = models.TagStyleName
	})
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{}

	_, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	texts := sender.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "member"+link(1), texts[1], "no name fields falls back to the literal label")
	assert.Equal(t, "Bob"+link(2), texts[2])
}

func TestStartBroadcastChunkCount(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 2 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc,
		&models.Member{UserID: 1}, &models.Member{UserID: 2}, &models.Member{UserID: 3},
		&models.Member{UserID: 4}, &models.Member{UserID: 5})
	sender := &fakeSender{}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Chunks, "ceil(5/2) chunks")
	assert.Equal(t, 3, result.Sent)
}

func TestStartBroadcastClampsChunkSize(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 0 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Chunks, "a non-positive chunk size behaves as 1")
}

func TestStartBroadcastStopMidRun(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 1 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob(), &models.Member{UserID: 3, Username: "carol"})

	sender := &fakeSender{}
	sender.afterSend = func(text string) {
		// Ask for a stop right after the first chunk goes out.
		if text == "@alice"+link(1) {
			svc.StopBroadcast(testChat)
		}
	}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	assert.True(t, result.Stopped)
	assert.Equal(t, 1, result.Sent, "chunks at or after the observed stop are not sent")

	texts := sender.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "@alice"+link(1), texts[1], "chunks before the stop stay sent")
	assert.Equal(t, "✅ Stopped.", texts[2])
}

func TestStopBeforeRunDoesNotPoison(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 1 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{}

	// A stale stop request with no run in flight.
	svc.StopBroadcast(testChat)

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err)

	assert.False(t, result.Stopped, "the flag is cleared at run entry")
	assert.Equal(t, 2, result.Sent)
}

func TestStartBroadcastCopyAnchorsChunks(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) {
		c.ChunkSize = 1
		c.CopyMessage = true
	})
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{
		ChatID: testChat,
		UserID: 9,
		Reply:  &ReplyRef{ChatID: testChat, MessageID: 555},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)

	var kinds []string
	for _, m := range sender.sent() {
		kinds = append(kinds, m.kind)
	}
	// Header, then copy+reply per chunk, then the done notice.
	assert.Equal(t, []string{"send", "copy", "reply", "copy", "reply", "send"}, kinds)
}

func TestStartBroadcastCopyFailureFallsBack(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) {
		c.ChunkSize = 1
		c.CopyMessage = true
	})
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{copyErr: errors.New("message to copy not found")}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{
		ChatID: testChat,
		UserID: 9,
		Reply:  &ReplyRef{ChatID: testChat, MessageID: 555},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent, "duplication failure degrades to plain sends")
	assert.NoError(t, result.SendErrs)
	assert.False(t, result.Stopped)
}

func TestStartBroadcastContinuesOnSendError(t *testing.T) {
	configs := newFakeConfigRepo()
	seedConfig(configs, func(c *models.ChatConfig) { c.ChunkSize = 1 })
	svc := newTestService(configs, newFakeMemberRepo(), nil)
	seedRoster(t, svc, alice(), bob())
	sender := &fakeSender{failSubstring: "@alice"}

	result, err := svc.StartBroadcast(context.Background(), sender, BroadcastRequest{ChatID: testChat, UserID: 9})
	require.NoError(t, err, "chunk send failures never fail the run")

	assert.Equal(t, 1, result.Sent)
	assert.Error(t, result.SendErrs)

	texts := sender.texts()
	assert.Contains(t, texts, link(2), "the next chunk is still attempted")
	assert.Contains(t, texts, "✅ Done.")
}
