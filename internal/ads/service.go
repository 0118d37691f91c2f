// Package ads manages skill listings.
package ads

import (
	"context"
	"fmt"
	"strings"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	log "github.com/sirupsen/logrus"
)

type Store interface {
	CountUserAds(ctx context.Context, userID string) (int64, error)
	CreateAd(ctx context.Context, ad *models.Ad) error
	GetAd(ctx context.Context, id string) (*models.Ad, error)
	UpdateAd(ctx context.Context, ad *models.Ad) error
	DeleteAd(ctx context.Context, id string) error
	ListAds(ctx context.Context, f models.AdFilter) ([]models.Ad, int64, error)
}

// CreateRequest is the body of POST /ads.
type CreateRequest struct {
	Category    models.AdCategory `json:"category" binding:"required,ad-category"`
	Title       string            `json:"title" binding:"required,min=3,max=120"`
	Description string            `json:"description" binding:"required,min=10,max=5000"`
	Level       models.AdLevel    `json:"level" binding:"required,ad-level"`
	Format      models.AdFormat   `json:"format" binding:"required,ad-format"`
}

// UpdateRequest is the body of PATCH /ads/:id. Nil fields are left unchanged.
type UpdateRequest struct {
	Category    *models.AdCategory `json:"category" binding:"omitempty,ad-category"`
	Title       *string            `json:"title" binding:"omitempty,min=3,max=120"`
	Description *string            `json:"description" binding:"omitempty,min=10,max=5000"`
	Level       *models.AdLevel    `json:"level" binding:"omitempty,ad-level"`
	Format      *models.AdFormat   `json:"format" binding:"omitempty,ad-format"`
}

// ListQuery is the query string of GET /ads.
type ListQuery struct {
	Category *models.AdCategory `form:"category" binding:"omitempty,ad-category"`
	Level    *models.AdLevel    `form:"level" binding:"omitempty,ad-level"`
	Format   *models.AdFormat   `form:"format" binding:"omitempty,ad-format"`
	Query    string             `form:"q" binding:"max=200"`
	Sort     string             `form:"sort" binding:"omitempty,oneof=newest popular"`
	Page     int                `form:"page" binding:"omitempty,min=1"`
	PageSize int                `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Filter converts the query to a storage filter with defaults applied.
func (q ListQuery) Filter() models.AdFilter {
	f := models.AdFilter{
		Category: q.Category,
		Level:    q.Level,
		Format:   q.Format,
		Query:    strings.TrimSpace(q.Query),
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if f.Sort == "" {
		f.Sort = "newest"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = config.DefaultPageSize
	}
	if f.PageSize > config.MaxPageSize {
		f.PageSize = config.MaxPageSize
	}
	return f
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create publishes a new ad unless the author reached MaxAdsPerUser.
func (s *Service) Create(ctx context.Context, authorID string, req CreateRequest) (*models.Ad, error) {
	count, err := s.store.CountUserAds(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("count ads: %w", err)
	}
	if count >= config.MaxAdsPerUser {
		return nil, apperrors.ErrAdLimitReached.WithDetails(map[string]int{"limit": config.MaxAdsPerUser})
	}

	ad := &models.Ad{
		AuthorID:    authorID,
		Category:    req.Category,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Level:       req.Level,
		Format:      req.Format,
	}
	if err := s.store.CreateAd(ctx, ad); err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}
	log.WithFields(log.Fields{"ad_id": ad.ID, "author_id": authorID}).Info("ad created")

	return s.store.GetAd(ctx, ad.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Ad, error) {
	return s.store.GetAd(ctx, id)
}

// Update edits an ad owned by actorID.
func (s *Service) Update(ctx context.Context, id, actorID string, req UpdateRequest) (*models.Ad, error) {
	ad, err := s.owned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		ad.Category = *req.Category
	}
	if req.Title != nil {
		ad.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		ad.Description = strings.TrimSpace(*req.Description)
	}
	if req.Level != nil {
		ad.Level = *req.Level
	}
	if req.Format != nil {
		ad.Format = *req.Format
	}

	if err := s.store.UpdateAd(ctx, ad); err != nil {
		return nil, fmt.Errorf("update ad: %w", err)
	}
	return ad, nil
}

// Delete removes an ad owned by actorID.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.owned(ctx, id, actorID); err != nil {
		return err
	}
	return s.store.DeleteAd(ctx, id)
}

// List returns a page of ads matching q.
func (s *Service) List(ctx context.Context, q ListQuery) (models.Page[models.Ad], error) {
	f := q.Filter()
	items, total, err := s.store.ListAds(ctx, f)
	if err != nil {
		return models.Page[models.Ad]{}, err
	}
	return models.NewPage(items, total, f.Page, f.PageSize), nil
}

// Mine returns the caller's ads, newest first.
func (s *Service) Mine(ctx context.Context, userID string, page, pageSize int) (models.Page[models.Ad], error) {
	f := ListQuery{Page: page, PageSize: pageSize}.Filter()
	f.AuthorID = userID
	items, total, err := s.store.ListAds(ctx, f)
	if err != nil {
		return models.Page[models.Ad]{}, err
	}
	return models.NewPage(items, total, f.Page, f.PageSize), nil
}

func (s *Service) owned(ctx context.Context, id, actorID string) (*models.Ad, error) {
	ad, err := s.store.GetAd(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.AuthorID != actorID {
		return nil, apperrors.ErrForbidden.WithMessage("Only the author can change this ad")
	}
	return ad, nil
}
