package storage

import (
	"context"
	"fmt"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dealPreloads loads everything a deal snapshot needs.
func dealPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Student.Profile").
		Preload("Teacher.Profile").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("StatusLogs.ChangedBy.Profile")
}

// GetDealByChatID loads the deal of a chat with participants and history.
func (s *Service) GetDealByChatID(ctx context.Context, chatID uint) (*models.Deal, error) {
	var d models.Deal
	err := s.DB.WithContext(ctx).Scopes(dealPreloads).Where("chat_id = ?", chatID).First(&d).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrDealNotFound)
	}
	return &d, nil
}

// GetDealByID loads a deal with participants, history and the chat's ad.
func (s *Service) GetDealByID(ctx context.Context, dealID uint) (*models.Deal, error) {
	var d models.Deal
	err := s.DB.WithContext(ctx).Scopes(dealPreloads).Preload("Chat.Ad").First(&d, dealID).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrDealNotFound)
	}
	return &d, nil
}

// CreateDealIfAbsent inserts d and its creation log in one transaction.
// It returns false without error when the chat already has a deal.
func (s *Service) CreateDealIfAbsent(ctx context.Context, d *models.Deal, created models.DealStatusLog) (bool, error) {
	inserted := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(d)
		if res.Error != nil {
			return fmt.Errorf("insert deal: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created.DealID = d.ID
		if err := tx.Omit(clause.Associations).Create(&created).Error; err != nil {
			return fmt.Errorf("insert creation log: %w", err)
		}
		inserted = true
		return nil
	})
	return inserted, err
}

// MutateDeal locks the chat's deal row, applies fn and persists the deal and
// the returned log entry atomically.
func (s *Service) MutateDeal(ctx context.Context, chatID uint, fn deal.MutateFunc) (*models.Deal, error) {
	var dealID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Deal
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("chat_id = ?", chatID).First(&d).Error
		if err != nil {
			return notFound(err, apperrors.ErrDealNotFound)
		}

		entry, err := fn(&d)
		if err != nil {
			return err
		}

		if err := tx.Model(&d).
			Select("status", "proposed_skill", "proposed_time", "proposed_place", "updated_at").
			Updates(&d).Error; err != nil {
			return fmt.Errorf("save deal: %w", err)
		}
		if entry != nil {
			entry.DealID = d.ID
			if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
				return fmt.Errorf("append status log: %w", err)
			}
		}
		dealID = d.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDealByID(ctx, dealID)
}

// ListUserDeals returns the user's non-canceled deals, most recently updated first.
func (s *Service) ListUserDeals(ctx context.Context, userID string) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.DB.WithContext(ctx).Scopes(dealPreloads).
		Where("(student_id = ? OR teacher_id = ?) AND status <> ?", userID, userID, models.DealCanceled).
		Order("updated_at DESC").
		Find(&deals).Error
	return deals, err
}

// ListDealLogs returns the status history of a deal, oldest first.
func (s *Service) ListDealLogs(ctx context.Context, dealID uint) ([]models.DealStatusLog, error) {
	var logs []models.DealStatusLog
	err := s.DB.WithContext(ctx).Preload("ChangedBy.Profile").
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

// ListDeals returns a page of deals for moderation, optionally filtered by status.
func (s *Service) ListDeals(ctx context.Context, status *models.DealStatus, page, pageSize int) ([]models.Deal, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Deal{})
		if status != nil {
			db = db.Where("status = ?", *status)
		}
		return db
	}
	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var deals []models.Deal
	err := db.Scopes(scope, dealPreloads).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&deals).Error
	return deals, total, err
}
