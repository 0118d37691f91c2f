package telegram

import (
	"context"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/localization"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// SubscriptionStore keeps the user → Telegram chat links.
type SubscriptionStore interface {
	SaveTelegramSubscription(ctx context.Context, sub models.TelegramSubscription, ttl time.Duration) error
	GetTelegramSubscription(ctx context.Context, userID string) (*models.TelegramSubscription, error)
	DeleteTelegramSubscription(ctx context.Context, userID string) error
	ListTelegramSubscriptions(ctx context.Context) ([]models.TelegramSubscription, error)
}

// SubscribeRequest is the body of POST /telegram/subscribe.
type SubscribeRequest struct {
	ChatID int64 `json:"chat_id" binding:"required"`
}

// Status is the response of GET /telegram/status.
type Status struct {
	Enabled      bool       `json:"enabled"`
	Subscribed   bool       `json:"subscribed"`
	ChatID       *int64     `json:"chat_id"`
	SubscribedAt *time.Time `json:"subscribed_at"`
}

// BotInfo tells the frontend where to find the bot.
type BotInfo struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

// Notifier sends Markdown notifications to subscribed users. With a nil sender
// every notification is a silent no-op.
type Notifier struct {
	sender      Sender
	subs        SubscriptionStore
	localizer   *localization.Localizer
	botUsername string
	lang        string
	now         func() time.Time
}

func NewNotifier(sender Sender, subs SubscriptionStore, localizer *localization.Localizer, botUsername string) *Notifier {
	return &Notifier{
		sender:      sender,
		subs:        subs,
		localizer:   localizer,
		botUsername: botUsername,
		lang:        localization.DefaultLanguage,
		now:         time.Now,
	}
}

// Enabled reports whether a bot token was configured.
func (n *Notifier) Enabled() bool { return n.sender != nil }

func (n *Notifier) BotInfo() BotInfo {
	return BotInfo{
		Enabled:  n.Enabled(),
		Username: n.botUsername,
		Link:     "https://t.me/" + n.botUsername,
	}
}

// Subscribe links userID to a Telegram chat for TelegramSubscriptionTTL.
func (n *Notifier) Subscribe(ctx context.Context, userID string, chatID int64) (*models.TelegramSubscription, error) {
	sub := models.TelegramSubscription{UserID: userID, ChatID: chatID, SubscribedAt: n.now().UTC()}
	if err := n.subs.SaveTelegramSubscription(ctx, sub, config.TelegramSubscriptionTTL); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "chat_id": chatID}).Info("telegram subscription saved")
	return &sub, nil
}

func (n *Notifier) Unsubscribe(ctx context.Context, userID string) error {
	return n.subs.DeleteTelegramSubscription(ctx, userID)
}

func (n *Notifier) Status(ctx context.Context, userID string) (Status, error) {
	st := Status{Enabled: n.Enabled()}
	sub, err := n.subs.GetTelegramSubscription(ctx, userID)
	if err != nil {
		return st, err
	}
	if sub != nil {
		st.Subscribed = true
		st.ChatID = &sub.ChatID
		st.SubscribedAt = &sub.SubscribedAt
	}
	return st, nil
}

func (n *Notifier) Subscriptions(ctx context.Context) ([]models.TelegramSubscription, error) {
	subs, err := n.subs.ListTelegramSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Ternary(subs == nil, []models.TelegramSubscription{}, subs), nil
}

// SendTest delivers a test message and reports why it could not.
func (n *Notifier) SendTest(ctx context.Context, userID string) error {
	if !n.Enabled() {
		return apperrors.ErrNotificationsOff
	}
	sub, err := n.subs.GetTelegramSubscription(ctx, userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return apperrors.ErrNotSubscribed
	}
	if _, err := n.sender.Send(markdownMessage(sub.ChatID, n.localizer.GetString(n.lang, "notify_test"))); err != nil {
		return apperrors.ErrExternalService.WithMessage("Telegram did not accept the message").WithError(err)
	}
	return nil
}

// NotifyNewMessage tells recipientID about a chat message.
func (n *Notifier) NotifyNewMessage(ctx context.Context, recipientID string, msg models.MessageOut) {
	n.notify(ctx, recipientID, n.localizer.Format(n.lang, "notify_new_message", escape(msg.SenderName), escape(preview(msg.Text))))
}

// OnDealStatusChanged tells the participants other than the actor about a status change.
func (n *Notifier) OnDealStatusChanged(ctx context.Context, d *models.Deal, change models.DealStatusLog) {
	actor := "Moderator"
	switch change.ChangedByID {
	case d.StudentID:
		actor = d.Student.DisplayName()
	case d.TeacherID:
		actor = d.Teacher.DisplayName()
	}

	old := lo.FromPtr(change.OldStatus)
	text := n.localizer.Format(n.lang, "notify_deal_status",
		n.localizer.GetString(n.lang, "status_"+string(old)),
		n.localizer.GetString(n.lang, "status_"+string(change.NewStatus)),
		escape(actor),
	)
	if reason := lo.FromPtr(change.Reason); reason != "" {
		text += n.localizer.Format(n.lang, "notify_deal_reason", escape(reason))
	}

	for _, userID := range []string{d.StudentID, d.TeacherID} {
		if userID != change.ChangedByID {
			n.notify(ctx, userID, text)
		}
	}
}

// NotifyBadgeEarned congratulates userID on a new badge.
func (n *Notifier) NotifyBadgeEarned(ctx context.Context, userID string, badge models.Badge) {
	n.notify(ctx, userID, n.localizer.Format(n.lang, "notify_badge", badge.Icon, escape(badge.Name), escape(badge.Description)))
}

// Announce sends text to every subscriber and returns how many messages were delivered.
func (n *Notifier) Announce(ctx context.Context, text string) (int, error) {
	if !n.Enabled() {
		return 0, apperrors.ErrNotificationsOff
	}
	subs, err := n.subs.ListTelegramSubscriptions(ctx)
	if err != nil {
		return 0, err
	}
	body := n.localizer.Format(n.lang, "notify_announcement", escape(text))
	sent := 0
	for _, sub := range subs {
		if _, err := n.sender.Send(markdownMessage(sub.ChatID, body)); err != nil {
			log.WithError(err).WithField("user_id", sub.UserID).Warn("WARN: announcement not delivered")
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) notify(ctx context.Context, userID, text string) {
	if !n.Enabled() || userID == "" {
		return
	}
	sub, err := n.subs.GetTelegramSubscription(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("WARN: failed to load telegram subscription")
		return
	}
	if sub == nil {
		return
	}
	if _, err := n.sender.Send(markdownMessage(sub.ChatID, text)); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ERROR: telegram notification failed")
	}
}

const previewLength = 200

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLength {
		return text
	}
	return string(r[:previewLength]) + "…"
}
