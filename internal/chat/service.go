// Package chat handles ad responses and chat messages.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/chathub"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type Store interface {
	GetAd(ctx context.Context, id string) (*models.Ad, error)
	FindChat(ctx context.Context, adID, responderID string) (*models.Chat, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, chatID uint) (*models.Chat, error)
	ListUserChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID uint, readerID string) (int64, error)
}

// Broadcaster pushes chat events to the room.
type Broadcaster interface {
	SendMessage(chatID uint, msg models.MessageOut, exclude chathub.Client)
}

// Presence reports whether a user has a live connection.
type Presence interface {
	IsUserOnline(userID string) bool
}

// MessageNotifier delivers offline notifications about new messages.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, recipientID string, msg models.MessageOut)
}

// Detail is a chat as seen by one of its members.
type Detail struct {
	ID          uint       `json:"id"`
	AdID        string     `json:"ad_id"`
	Ad          *models.Ad `json:"ad,omitempty"`
	PartnerID   string     `json:"partner_id"`
	PartnerName string     `json:"partner_name"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewDetail builds the member view of c for userID.
func NewDetail(c *models.Chat, userID string) Detail {
	partner := c.User1
	if userID == c.User1ID {
		partner = c.User2
	}
	return Detail{
		ID:          c.ID,
		AdID:        c.AdID,
		Ad:          c.Ad,
		PartnerID:   c.PartnerOf(userID),
		PartnerName: partner.DisplayName(),
		CreatedAt:   c.CreatedAt,
	}
}

type Service struct {
	store    Store
	relay    Broadcaster
	presence Presence
	notifier MessageNotifier
}

func NewService(store Store, relay Broadcaster, presence Presence, notifier MessageNotifier) *Service {
	return &Service{store: store, relay: relay, presence: presence, notifier: notifier}
}

// Respond opens (or reuses) the chat between the ad author and responderID.
func (s *Service) Respond(ctx context.Context, adID, responderID string) (*models.Chat, bool, error) {
	ad, err := s.store.GetAd(ctx, adID)
	if err != nil {
		return nil, false, err
	}
	if ad.AuthorID == responderID {
		return nil, false, apperrors.ErrOwnAd
	}

	existing, err := s.store.FindChat(ctx, adID, responderID)
	if err == nil {
		return existing, false, nil
	}
	if !apperrors.Is(err, apperrors.ErrChatNotFound) {
		return nil, false, err
	}

	c := &models.Chat{AdID: adID, User1ID: ad.AuthorID, User2ID: responderID}
	if err := s.store.CreateChat(ctx, c); err != nil {
		return nil, false, fmt.Errorf("create chat: %w", err)
	}
	log.WithFields(log.Fields{"chat_id": c.ID, "ad_id": adID}).Info("chat opened")

	created, err := s.store.GetChat(ctx, c.ID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	chats, err := s.store.ListUserChats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Ternary(chats == nil, []models.ChatSummary{}, chats), nil
}

// Member returns the chat when userID belongs to it.
func (s *Service) Member(ctx context.Context, chatID uint, userID string) (*models.Chat, error) {
	c, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasMember(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return c, nil
}

// Messages returns a chronological slice of the chat history.
func (s *Service) Messages(ctx context.Context, chatID uint, userID string, limit, offset int) ([]models.MessageOut, error) {
	if _, err := s.Member(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = config.DefaultMessagesLimit
	}
	limit = lo.Min([]int{limit, config.MaxMessagesLimit})
	offset = lo.Max([]int{offset, 0})

	msgs, err := s.store.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	return lo.Map(msgs, func(m models.Message, _ int) models.MessageOut { return m.Out() }), nil
}

// Send stores a message and pushes it to the room. exclude is the sender's own
// connection when the message arrived over WebSocket.
func (s *Service) Send(ctx context.Context, chatID uint, senderID, text string, exclude chathub.Client) (*models.MessageOut, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > config.MaxMessageLength {
		return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("Message must be 1..%d characters", config.MaxMessageLength))
	}

	c, err := s.Member(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{ChatID: chatID, SenderID: senderID, Text: text}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	out := msg.Out()

	if s.relay != nil {
		s.relay.SendMessage(chatID, out, exclude)
	}

	recipient := c.PartnerOf(senderID)
	if s.notifier != nil && (s.presence == nil || !s.presence.IsUserOnline(recipient)) {
		s.notifier.NotifyNewMessage(ctx, recipient, out)
	}
	return &out, nil
}

// MarkRead marks the partner's messages as read by userID.
func (s *Service) MarkRead(ctx context.Context, chatID uint, userID string) (int64, error) {
	if _, err := s.Member(ctx, chatID, userID); err != nil {
		return 0, err
	}
	return s.store.MarkMessagesRead(ctx, chatID, userID)
}
