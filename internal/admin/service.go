// Package admin implements moderation actions. Every change is written to the admin log.
package admin

import (
	"context"
	"fmt"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int64, error)
	SetUserActive(ctx context.Context, userID string, active bool) error
	SetUserRole(ctx context.Context, userID string, role models.UserRole) error

	GetAd(ctx context.Context, id string) (*models.Ad, error)
	ListAds(ctx context.Context, f models.AdFilter) ([]models.Ad, int64, error)
	DeleteAd(ctx context.Context, id string) error

	GetChat(ctx context.Context, chatID uint) (*models.Chat, error)
	ListChats(ctx context.Context, page, pageSize int) ([]models.Chat, int64, error)
	ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.Message, error)
	DeleteChat(ctx context.Context, chatID uint) error

	GetDealByID(ctx context.Context, dealID uint) (*models.Deal, error)
	ListDeals(ctx context.Context, status *models.DealStatus, page, pageSize int) ([]models.Deal, int64, error)

	CreateAdminLog(ctx context.Context, entry *models.AdminLog) error
	ListAdminLogs(ctx context.Context, page, pageSize int) ([]models.AdminLog, int64, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

// DealCanceler is the moderator path of the deal workflow.
type DealCanceler interface {
	Cancel(ctx context.Context, chatID uint, adminID, reason string) (*models.Deal, error)
}

// Announcer pushes a text to every Telegram subscriber.
type Announcer interface {
	Announce(ctx context.Context, text string) (int, error)
}

// ActionRequest is the optional body of moderation endpoints.
type ActionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UsersQuery is the query string of GET /admin/users.
type UsersQuery struct {
	Search   string           `form:"search" binding:"max=100"`
	Role     *models.UserRole `form:"role" binding:"omitempty,oneof=student admin"`
	IsActive *bool            `form:"is_active"`
	Page     int              `form:"page" binding:"omitempty,min=1"`
	PageSize int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type Service struct {
	store     Store
	deals     DealCanceler
	announcer Announcer
}

func NewService(store Store, deals DealCanceler, announcer Announcer) *Service {
	return &Service{store: store, deals: deals, announcer: announcer}
}

func normalize(page, pageSize int) (int, int) {
	page = lo.Max([]int{page, 1})
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	return page, lo.Min([]int{pageSize, config.MaxPageSize})
}

func (s *Service) Users(ctx context.Context, q UsersQuery) (models.Page[models.User], error) {
	page, size := normalize(q.Page, q.PageSize)
	users, total, err := s.store.ListUsers(ctx, models.UserFilter{
		Search: q.Search, Role: q.Role, IsActive: q.IsActive, Page: page, PageSize: size,
	})
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, total, page, size), nil
}

// Ban deactivates a user. Admin accounts cannot be banned.
func (s *Service) Ban(ctx context.Context, adminID, userID, reason string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return apperrors.ErrCannotBanAdmin
	}
	if err := s.store.SetUserActive(ctx, userID, false); err != nil {
		return err
	}
	return s.record(ctx, &models.AdminLog{
		AdminID: adminID, ActionType: models.ActionUserBanned, TargetUserID: &userID, Reason: reason,
	})
}

func (s *Service) Unban(ctx context.Context, adminID, userID, reason string) error {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.store.SetUserActive(ctx, userID, true); err != nil {
		return err
	}
	return s.record(ctx, &models.AdminLog{
		AdminID: adminID, ActionType: models.ActionUserUnbanned, TargetUserID: &userID, Reason: reason,
	})
}

// Promote grants the admin role. Only the operator CLI calls it.
func (s *Service) Promote(ctx context.Context, userID string) error {
	if err := s.store.SetUserRole(ctx, userID, models.RoleAdmin); err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("user promoted to admin")
	return nil
}

func (s *Service) Ads(ctx context.Context, page, pageSize int) (models.Page[models.Ad], error) {
	page, size := normalize(page, pageSize)
	ads, total, err := s.store.ListAds(ctx, models.AdFilter{Page: page, PageSize: size, Sort: "newest"})
	if err != nil {
		return models.Page[models.Ad]{}, err
	}
	return models.NewPage(ads, total, page, size), nil
}

func (s *Service) DeleteAd(ctx context.Context, adminID, adID, reason string) error {
	ad, err := s.store.GetAd(ctx, adID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAd(ctx, adID); err != nil {
		return err
	}
	return s.record(ctx, &models.AdminLog{
		AdminID:      adminID,
		ActionType:   models.ActionAdDeleted,
		TargetAdID:   &adID,
		TargetUserID: &ad.AuthorID,
		Reason:       reason,
		Details:      fmt.Sprintf("title: %s", ad.Title),
	})
}

func (s *Service) Chats(ctx context.Context, page, pageSize int) (models.Page[models.Chat], error) {
	page, size := normalize(page, pageSize)
	chats, total, err := s.store.ListChats(ctx, page, size)
	if err != nil {
		return models.Page[models.Chat]{}, err
	}
	return models.NewPage(chats, total, page, size), nil
}

// ChatMessages reads any chat's history.
func (s *Service) ChatMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.MessageOut, error) {
	if _, err := s.store.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = config.DefaultMessagesLimit
	}
	limit = lo.Min([]int{limit, config.MaxMessagesLimit})
	msgs, err := s.store.ListMessages(ctx, chatID, limit, lo.Max([]int{offset, 0}))
	if err != nil {
		return nil, err
	}
	return lo.Map(msgs, func(m models.Message, _ int) models.MessageOut { return m.Out() }), nil
}

func (s *Service) DeleteChat(ctx context.Context, adminID string, chatID uint, reason string) error {
	if _, err := s.store.GetChat(ctx, chatID); err != nil {
		return err
	}
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		return err
	}
	return s.record(ctx, &models.AdminLog{
		AdminID: adminID, ActionType: models.ActionChatDeleted, TargetChatID: &chatID, Reason: reason,
	})
}

// Deals lists deals, optionally only those in status.
func (s *Service) Deals(ctx context.Context, status string, page, pageSize int) (models.Page[models.DealOut], error) {
	var filter *models.DealStatus
	if status != "" {
		st, ok := models.ParseDealStatus(status)
		if !ok {
			return models.Page[models.DealOut]{}, apperrors.ErrInvalidStatus
		}
		filter = &st
	}
	page, size := normalize(page, pageSize)
	deals, total, err := s.store.ListDeals(ctx, filter, page, size)
	if err != nil {
		return models.Page[models.DealOut]{}, err
	}
	out := lo.Map(deals, func(d models.Deal, _ int) models.DealOut { return d.Out() })
	return models.NewPage(out, total, page, size), nil
}

// CancelDeal cancels a deal as moderator; participants receive the usual room events.
func (s *Service) CancelDeal(ctx context.Context, adminID string, dealID uint, reason string) (*models.Deal, error) {
	d, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "canceled by moderator"
	}
	updated, err := s.deals.Cancel(ctx, d.ChatID, adminID, reason)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, &models.AdminLog{
		AdminID:      adminID,
		ActionType:   models.ActionDealCancelled,
		TargetDealID: &dealID,
		TargetChatID: &d.ChatID,
		Reason:       reason,
		Details:      fmt.Sprintf("previous status: %s", d.Status),
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Logs(ctx context.Context, page, pageSize int) (models.Page[models.AdminLog], error) {
	page, size := normalize(page, pageSize)
	logs, total, err := s.store.ListAdminLogs(ctx, page, size)
	if err != nil {
		return models.Page[models.AdminLog]{}, err
	}
	return models.NewPage(logs, total, page, size), nil
}

func (s *Service) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.store.Stats(ctx)
}

// Announce sends text to all Telegram subscribers and returns how many received it.
func (s *Service) Announce(ctx context.Context, adminID, text string) (int, error) {
	if s.announcer == nil {
		return 0, apperrors.ErrNotificationsOff
	}
	sent, err := s.announcer.Announce(ctx, text)
	if err != nil {
		return sent, err
	}
	log.WithFields(log.Fields{"admin_id": adminID, "recipients": sent}).Info("announcement sent")
	return sent, nil
}

func (s *Service) record(ctx context.Context, entry *models.AdminLog) error {
	if err := s.store.CreateAdminLog(ctx, entry); err != nil {
		return fmt.Errorf("write admin log: %w", err)
	}
	log.WithFields(log.Fields{"admin_id": entry.AdminID, "action": entry.ActionType}).Info("admin action")
	return nil
}
