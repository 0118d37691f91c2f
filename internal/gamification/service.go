package gamification

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
	GetDealByID(ctx context.Context, dealID uint) (*models.Deal, error)

	GetStats(ctx context.Context, userID string) (*models.UserStats, error)
	UpdateStats(ctx context.Context, userID string, fn func(*models.UserStats) error) (*models.UserStats, error)
	CreateReview(ctx context.Context, review *models.Review, rate func(*models.UserStats)) (*models.UserStats, error)
	ListReviews(ctx context.Context, userID string) ([]models.Review, error)

	SeedBadges(ctx context.Context, badges []models.Badge) error
	ListBadges(ctx context.Context) ([]models.Badge, error)
	ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	AwardBadge(ctx context.Context, userID string, badgeType models.BadgeType) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// BadgeNotifier is told about every newly awarded badge.
type BadgeNotifier interface {
	NotifyBadgeEarned(ctx context.Context, userID string, badge models.Badge)
}

// ReviewRequest is the body of POST /gamification/reviews.
type ReviewRequest struct {
	DealID uint   `json:"deal_id" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text" binding:"max=1000"`
}

// Profile is the public gamification view of a user.
type Profile struct {
	UserID   string               `json:"user_id"`
	Name     string               `json:"name"`
	Stats    *models.UserStats    `json:"stats"`
	Badges   []models.UserBadge   `json:"badges"`
	Progress models.LevelProgress `json:"level_progress"`
}

type Service struct {
	store    Store
	notifier BadgeNotifier
}

func NewService(store Store, notifier BadgeNotifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// SeedBadges makes sure every badge definition exists.
func (s *Service) SeedBadges(ctx context.Context) error {
	return s.store.SeedBadges(ctx, BadgeDefinitions)
}

// OnUserRegistered grants the newcomer badge.
func (s *Service) OnUserRegistered(ctx context.Context, user *models.User) {
	s.award(ctx, user.ID, []models.BadgeType{models.BadgeNewcomer})
}

// OnDealStatusChanged credits both participants once a deal is completed.
func (s *Service) OnDealStatusChanged(ctx context.Context, d *models.Deal, change models.DealStatusLog) {
	if change.NewStatus != models.DealCompleted {
		return
	}

	category := models.AdCategory("")
	if d.Chat != nil && d.Chat.Ad != nil {
		category = d.Chat.Ad.Category
	}

	for _, userID := range []string{d.StudentID, d.TeacherID} {
		if _, err := s.RecordExchange(ctx, userID, category); err != nil {
			log.WithError(err).WithFields(log.Fields{"deal_id": d.ID, "user_id": userID}).
				Error("ERROR: failed to credit completed exchange")
		}
	}
}

// RecordExchange credits one completed exchange and awards any badges it unlocks.
func (s *Service) RecordExchange(ctx context.Context, userID string, category models.AdCategory) (*models.UserStats, error) {
	levels := 0
	stats, err := s.store.UpdateStats(ctx, userID, func(st *models.UserStats) error {
		levels = ApplyExchange(st, category)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update stats of %s: %w", userID, err)
	}
	if levels > 0 {
		log.WithFields(log.Fields{"user_id": userID, "level": stats.Level}).Info("user levelled up")
	}

	s.award(ctx, userID, EarnedBadges(stats))
	return stats, nil
}

// SubmitReview rates the other participant of a completed deal.
func (s *Service) SubmitReview(ctx context.Context, authorID string, req ReviewRequest) (*models.Review, error) {
	d, err := s.store.GetDealByID(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if !d.HasParticipant(authorID) {
		return nil, apperrors.ErrNotParticipant
	}
	if d.Status != models.DealCompleted {
		return nil, apperrors.ErrDealNotCompleted
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrValidation.WithMessage("Rating must be between 1 and 5")
	}

	review := &models.Review{
		DealID:       d.ID,
		AuthorID:     authorID,
		TargetUserID: d.CounterpartOf(authorID),
		Rating:       req.Rating,
		Text:         req.Text,
	}
	stats, err := s.store.CreateReview(ctx, review, func(st *models.UserStats) {
		ApplyRating(st, req.Rating)
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, review.TargetUserID, EarnedBadges(stats))

	if author, err := s.store.GetUserByID(ctx, authorID); err == nil {
		review.Author = author
	}
	return review, nil
}

// Profile returns stats, badges and level progress of a user.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:   userID,
		Name:     user.DisplayName(),
		Stats:    stats,
		Badges:   lo.Ternary(badges == nil, []models.UserBadge{}, badges),
		Progress: Progress(stats),
	}, nil
}

func (s *Service) LevelProgress(ctx context.Context, userID string) (models.LevelProgress, error) {
	stats, err := s.store.GetStats(ctx, userID)
	if err != nil {
		return models.LevelProgress{}, err
	}
	return Progress(stats), nil
}

// Leaderboard clamps limit to 1..MaxLeaderboardLimit (default DefaultLeaderboardLimit).
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = config.DefaultLeaderboardLimit
	}
	limit = lo.Min([]int{limit, config.MaxLeaderboardLimit})
	return s.store.Leaderboard(ctx, limit)
}

func (s *Service) Badges(ctx context.Context) ([]models.Badge, error) {
	return s.store.ListBadges(ctx)
}

// Reviews returns the reviews a user received.
func (s *Service) Reviews(ctx context.Context, userID string) ([]models.ReviewOut, error) {
	reviews, err := s.store.ListReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(reviews, func(r models.Review, _ int) models.ReviewOut { return r.Out() }), nil
}

// award grants each badge once and notifies about new ones. Failures are logged only.
func (s *Service) award(ctx context.Context, userID string, types []models.BadgeType) {
	for _, t := range types {
		isNew, err := s.store.AwardBadge(ctx, userID, t)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"user_id": userID, "badge": t}).Warn("WARN: badge award failed")
			continue
		}
		if !isNew {
			continue
		}
		log.WithFields(log.Fields{"user_id": userID, "badge": t}).Info("badge awarded")
		if badge, ok := BadgeByType(t); ok && s.notifier != nil {
			s.notifier.NotifyBadgeEarned(ctx, userID, badge)
		}
	}
}
