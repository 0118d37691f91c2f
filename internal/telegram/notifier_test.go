package telegram_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"
	"skillswap/backend/internal/telegram"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var subscribed = models.TelegramSubscription{UserID: "teacher", ChatID: 777, SubscribedAt: time.Now()}

func TestNotifier_DisabledIsSilent(t *testing.T) {
	subs := newMemorySubs(subscribed)
	n := telegram.NewNotifier(nil, subs, testLocalizer(t), "SkillSwapBot")

	n.NotifyNewMessage(context.Background(), "teacher", models.MessageOut{SenderName: "Ann", Text: "hi"})

	assert.False(t, n.Enabled())
	assert.ErrorIs(t, n.SendTest(context.Background(), "teacher"), apperrors.ErrNotificationsOff)
	_, err := n.Announce(context.Background(), "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotificationsOff)
}

func TestNotifier_NewMessageOnlyForSubscribers(t *testing.T) {
	// Arrange
	sender := new(MockSender)
	sender.On("Send", mock.Anything).Return(nil)
	n := telegram.NewNotifier(sender, newMemorySubs(subscribed), testLocalizer(t), "SkillSwapBot")
	ctx := context.Background()

	// Act
	n.NotifyNewMessage(ctx, "teacher", models.MessageOut{SenderName: "Ann", Text: "see you at 5"})
	n.NotifyNewMessage(ctx, "student", models.MessageOut{SenderName: "Bob", Text: "ok"})

	// Assert
	texts := sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Ann")
	assert.Contains(t, texts[0], "see you at 5")
}

func TestNotifier_DealStatusSkipsActor(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything).Return(nil)
	subs := newMemorySubs(subscribed, models.TelegramSubscription{UserID: "student", ChatID: 555})
	n := telegram.NewNotifier(sender, subs, testLocalizer(t), "SkillSwapBot")
	d := &models.Deal{
		StudentID: "student",
		TeacherID: "teacher",
		Student:   &models.User{ID: "student", Profile: &models.UserProfile{FirstName: "Ann"}},
	}
	change := models.DealStatusLog{
		OldStatus:   lo.ToPtr(models.DealDiscussion),
		NewStatus:   models.DealConfirmed,
		ChangedByID: "student",
		Reason:      lo.ToPtr("agreed"),
	}

	n.OnDealStatusChanged(context.Background(), d, change)

	texts := sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "discussion")
	assert.Contains(t, texts[0], "confirmed")
	assert.Contains(t, texts[0], "Ann")
	assert.Contains(t, texts[0], "agreed")
}

func TestNotifier_SubscribeStatusUnsubscribe(t *testing.T) {
	subs := newMemorySubs()
	n := telegram.NewNotifier(new(MockSender), subs, testLocalizer(t), "SkillSwapBot")
	ctx := context.Background()

	_, err := n.Subscribe(ctx, "u-1", 42)
	require.NoError(t, err)

	st, err := n.Status(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, st.Subscribed)
	assert.Equal(t, int64(42), *st.ChatID)

	require.NoError(t, n.Unsubscribe(ctx, "u-1"))
	st, err = n.Status(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, st.Subscribed)
	assert.Nil(t, st.ChatID)

	assert.ErrorIs(t, n.SendTest(ctx, "u-1"), apperrors.ErrNotSubscribed)
	assert.Equal(t, "https://t.me/SkillSwapBot", n.BotInfo().Link)
}

func TestNotifier_AnnounceCountsDeliveries(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything).Return(errors.New("blocked by user")).Once()
	sender.On("Send", mock.Anything).Return(nil)
	subs := newMemorySubs(subscribed, models.TelegramSubscription{UserID: "student", ChatID: 555})
	n := telegram.NewNotifier(sender, subs, testLocalizer(t), "SkillSwapBot")

	sent, err := n.Announce(context.Background(), "maintenance tonight")

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	sender.AssertNumberOfCalls(t, "Send", 2)
}
