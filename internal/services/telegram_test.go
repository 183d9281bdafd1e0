package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	failTo map[int64]bool
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chatID int64
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		chatID = m.ChatID
	case tgbotapi.DocumentConfig:
		chatID = m.ChatID
	}
	if s.failTo[chatID] {
		return tgbotapi.Message{}, errors.New("forbidden")
	}
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeChatStore struct {
	chats   map[int64]string
	order   []int64
	listErr error
}

func newFakeChatStore(ids ...int64) *fakeChatStore {
	s := &fakeChatStore{chats: make(map[int64]string)}
	for _, id := range ids {
		_ = s.SaveChat(context.Background(), id, "")
	}
	return s
}

func (s *fakeChatStore) SaveChat(_ context.Context, chatID int64, title string) error {
	if _, ok := s.chats[chatID]; !ok {
		s.order = append(s.order, chatID)
	}
	s.chats[chatID] = title
	return nil
}

func (s *fakeChatStore) RemoveChat(_ context.Context, chatID int64) error {
	delete(s.chats, chatID)
	for i, id := range s.order {
		if id == chatID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeChatStore) ListChats(context.Context) ([]int64, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]int64{}, s.order...), nil
}

func newTestBot(t *testing.T, opts TelegramOpts, chats *fakeChatStore, sender *fakeSender) *TelegramBotService {
	t.Helper()
	now := time.Date(2026, time.October, 18, 10, 0, 0, 0, time.Local)
	d, err := NewDashboardService(&fakeProvider{records: octoberRecords()}, nil, WithClock(fixedClock(now)))
	require.NoError(t, err)
	require.NoError(t, d.Refresh(context.Background()))

	bot, err := newTelegramBotService(opts, nil, sender, chats, d, nil)
	require.NoError(t, err)
	return bot
}

func TestTelegramCommands(t *testing.T) {
	chats := newFakeChatStore()
	bot := newTestBot(t, TelegramOpts{}, chats, &fakeSender{})
	ctx := context.Background()

	assert.Contains(t, bot.handleCommand(ctx, 42, "Ops", "help"), "/subscribe")

	assert.Equal(t, "Subscribed to the daily shift digest.", bot.handleCommand(ctx, 42, "Ops", "subscribe"))
	assert.Equal(t, "Ops", chats.chats[42])

	reply := bot.handleCommand(ctx, 42, "Ops", "shift")
	assert.Contains(t, reply, "Current shift: Anna Kowalska")
	assert.Contains(t, reply, "Next shift: Jan Nowak")

	assert.Equal(t, "Unsubscribed from the daily shift digest.", bot.handleCommand(ctx, 42, "Ops", "unsubscribe"))
	assert.Empty(t, chats.chats)

	assert.Empty(t, bot.handleCommand(ctx, 42, "Ops", "unknown"))
}

func TestTelegramBroadcastRecipients(t *testing.T) {
	sender := &fakeSender{}
	bot := newTestBot(t, TelegramOpts{ChatID: 1}, newFakeChatStore(2, 1, 3), sender)

	require.NoError(t, bot.Broadcast(context.Background(), "hello"))

	var ids []int64
	for _, c := range sender.sent {
		msg := c.(tgbotapi.MessageConfig)
		assert.Equal(t, "hello", msg.Text)
		ids = append(ids, msg.ChatID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestTelegramBroadcastPartialFailure(t *testing.T) {
	sender := &fakeSender{failTo: map[int64]bool{2: true}}
	bot := newTestBot(t, TelegramOpts{}, newFakeChatStore(1, 2, 3), sender)

	err := bot.Broadcast(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send to 2")
	assert.Len(t, sender.sent, 2)
}

func TestTelegramBroadcastListError(t *testing.T) {
	chats := newFakeChatStore()
	chats.listErr = errors.New("db closed")
	bot := newTestBot(t, TelegramOpts{}, chats, &fakeSender{})

	assert.Error(t, bot.Broadcast(context.Background(), "hello"))
}

func TestTelegramSendFile(t *testing.T) {
	sender := &fakeSender{}
	bot := newTestBot(t, TelegramOpts{ChatID: 7, Message: "Monthly report"}, newFakeChatStore(), sender)

	err := bot.SendFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, bot.SendFile(context.Background(), path))

	require.Len(t, sender.sent, 1)
	doc := sender.sent[0].(tgbotapi.DocumentConfig)
	assert.Equal(t, int64(7), doc.ChatID)
	assert.Equal(t, "Monthly report", doc.Caption)
}

func TestTelegramSendCanceled(t *testing.T) {
	bot := newTestBot(t, TelegramOpts{ChatID: 7}, newFakeChatStore(), &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bot.Broadcast(ctx, "hello"), context.Canceled)
}

func TestChatTitle(t *testing.T) {
	assert.Equal(t, "Ops", chatTitle(&tgbotapi.Chat{Title: "Ops", FirstName: "Jan"}))
	assert.Equal(t, "Jan Nowak", chatTitle(&tgbotapi.Chat{FirstName: "Jan", LastName: "Nowak"}))
	assert.Empty(t, chatTitle(nil))
}
