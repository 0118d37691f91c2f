package storage

import (
	"context"
	"strings"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	"gorm.io/gorm"
)

const adPopularityExpr = "(SELECT COUNT(*) FROM chats WHERE chats.ad_id = ads.id)"

// CountUserAds returns how many ads the user currently has.
func (s *Service) CountUserAds(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Ad{}).Where("author_id = ?", userID).Count(&n).Error
	return n, err
}

func (s *Service) CreateAd(ctx context.Context, ad *models.Ad) error {
	return s.DB.WithContext(ctx).Create(ad).Error
}

// GetAd loads an ad with its author's profile.
func (s *Service) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	var ad models.Ad
	err := s.DB.WithContext(ctx).Preload("Author.Profile").First(&ad, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrAdNotFound)
	}
	return &ad, nil
}

// UpdateAd saves the editable columns of ad.
func (s *Service) UpdateAd(ctx context.Context, ad *models.Ad) error {
	return s.DB.WithContext(ctx).Model(ad).
		Select("category", "title", "description", "level", "format", "updated_at").
		Updates(ad).Error
}

// DeleteAd removes an ad; its chats, messages and deals go with it.
func (s *Service) DeleteAd(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Ad{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAdNotFound
	}
	return nil
}

// ListAds returns one page of ads matching f and the total number of matches.
func (s *Service) ListAds(ctx context.Context, f models.AdFilter) ([]models.Ad, int64, error) {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, config.DefaultPageSize, config.MaxPageSize)

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Ad{})
		if f.Category != nil {
			db = db.Where("ads.category = ?", *f.Category)
		}
		if f.Level != nil {
			db = db.Where("ads.level = ?", *f.Level)
		}
		if f.Format != nil {
			db = db.Where("ads.format = ?", *f.Format)
		}
		if f.AuthorID != "" {
			db = db.Where("ads.author_id = ?", f.AuthorID)
		}
		if q := strings.TrimSpace(f.Query); q != "" {
			like := "%" + q + "%"
			db = db.Where("ads.title ILIKE ? OR ads.description ILIKE ?", like, like)
		}
		return db
	}

	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "ads.created_at DESC"
	if f.Sort == "popular" {
		order = adPopularityExpr + " DESC, ads.created_at DESC"
	}

	var ads []models.Ad
	err := db.Scopes(scope).Preload("Author.Profile").
		Order(order).
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&ads).Error
	return ads, total, err
}
