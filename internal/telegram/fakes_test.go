package telegram_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"skillswap/backend/internal/localization"
	"skillswap/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock implementation of the Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

// texts returns the bodies of every message sent so far.
func (m *MockSender) texts() []string {
	var out []string
	for _, call := range m.Calls {
		if msg, ok := call.Arguments.Get(0).(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

type memorySubs struct {
	mu   sync.Mutex
	subs map[string]models.TelegramSubscription
}

func newMemorySubs(subs ...models.TelegramSubscription) *memorySubs {
	m := &memorySubs{subs: map[string]models.TelegramSubscription{}}
	for _, s := range subs {
		m.subs[s.UserID] = s
	}
	return m
}

func (m *memorySubs) SaveTelegramSubscription(_ context.Context, sub models.TelegramSubscription, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.UserID] = sub
	return nil
}

func (m *memorySubs) GetTelegramSubscription(_ context.Context, userID string) (*models.TelegramSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m *memorySubs) DeleteTelegramSubscription(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, userID)
	return nil
}

func (m *memorySubs) ListTelegramSubscriptions(context.Context) ([]models.TelegramSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TelegramSubscription
	for _, s := range m.subs {
		out = append(out, s)
	}
	return out, nil
}

func testLocalizer(t *testing.T) *localization.Localizer {
	l, err := localization.NewLocalizer("")
	require.NoError(t, err)
	return l
}
