package storage

import (
	"context"
	"errors"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"gorm.io/gorm"
)

// FindChat returns the chat a responder opened for an ad.
func (s *Service) FindChat(ctx context.Context, adID, responderID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.WithContext(ctx).Where("ad_id = ? AND user2_id = ?", adID, responderID).First(&chat).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrChatNotFound)
	}
	return &chat, nil
}

func (s *Service) CreateChat(ctx context.Context, chat *models.Chat) error {
	return s.DB.WithContext(ctx).Create(chat).Error
}

// GetChat loads a chat with its ad and both users' profiles.
func (s *Service) GetChat(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.WithContext(ctx).
		Preload("Ad").
		Preload("User1.Profile").
		Preload("User2.Profile").
		First(&chat, chatID).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrChatNotFound)
	}
	return &chat, nil
}

// DeleteChat removes a chat with its messages and deal.
func (s *Service) DeleteChat(ctx context.Context, chatID uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Chat{}, chatID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

// ListUserChats builds the chat list of a user with the last message,
// unread counter and deal status of every chat.
func (s *Service) ListUserChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	db := s.DB.WithContext(ctx)

	var chats []models.Chat
	err := db.Preload("Ad").Preload("User1.Profile").Preload("User2.Profile").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		summary := models.ChatSummary{
			ID:        chat.ID,
			AdID:      chat.AdID,
			PartnerID: chat.PartnerOf(userID),
			CreatedAt: chat.CreatedAt,
		}
		if chat.Ad != nil {
			summary.AdTitle = chat.Ad.Title
		}
		if chat.User1ID == userID {
			summary.PartnerName = chat.User2.DisplayName()
		} else {
			summary.PartnerName = chat.User1.DisplayName()
		}

		var last models.Message
		err := db.Preload("Sender.Profile").Where("chat_id = ?", chat.ID).Order("created_at DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			lastOut := last.Out()
			summary.LastMessage = &lastOut
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		if err := db.Model(&models.Message{}).
			Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chat.ID, userID).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, err
		}

		var statuses []models.DealStatus
		if err := db.Model(&models.Deal{}).Where("chat_id = ?", chat.ID).Pluck("status", &statuses).Error; err != nil {
			return nil, err
		}
		if len(statuses) > 0 {
			summary.DealStatus = &statuses[0]
		}

		out = append(out, summary)
	}
	return out, nil
}

// ListChats returns a page of all chats for moderation.
func (s *Service) ListChats(ctx context.Context, page, pageSize int) ([]models.Chat, int64, error) {
	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Chat{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var chats []models.Chat
	err := db.Preload("Ad").Preload("User1.Profile").Preload("User2.Profile").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&chats).Error
	return chats, total, err
}

// CreateMessage stores msg and loads its sender profile.
func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	db := s.DB.WithContext(ctx)
	if err := db.Create(msg).Error; err != nil {
		return err
	}
	var sender models.User
	if err := db.Preload("Profile").First(&sender, "id = ?", msg.SenderID).Error; err != nil {
		return err
	}
	msg.Sender = &sender
	return nil
}

// ListMessages returns messages of a chat in chronological order.
func (s *Service) ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).Preload("Sender.Profile").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// MarkMessagesRead marks the partner's unread messages in a chat as read by readerID.
func (s *Service) MarkMessagesRead(ctx context.Context, chatID uint, readerID string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}
