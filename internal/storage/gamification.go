package storage

import (
	"context"
	"fmt"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetStats returns the user's stats, creating the row on first access.
func (s *Service) GetStats(ctx context.Context, userID string) (*models.UserStats, error) {
	db := s.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(models.NewUserStats(userID)).Error; err != nil {
		return nil, fmt.Errorf("ensure stats: %w", err)
	}
	var stats models.UserStats
	if err := db.First(&stats, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &stats, nil
}

// UpdateStats applies fn to the user's stats under a row lock.
func (s *Service) UpdateStats(ctx context.Context, userID string, fn func(*models.UserStats) error) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStats(tx, userID, &stats); err != nil {
			return err
		}
		if err := fn(&stats); err != nil {
			return err
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func lockStats(tx *gorm.DB, userID string, stats *models.UserStats) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(models.NewUserStats(userID)).Error; err != nil {
		return fmt.Errorf("ensure stats: %w", err)
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(stats, "user_id = ?", userID).Error
}

// CreateReview inserts review and applies rate to the target's stats in one transaction.
// A second review of the same deal by the same author fails with ErrAlreadyReviewed.
func (s *Service) CreateReview(ctx context.Context, review *models.Review, rate func(*models.UserStats)) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrAlreadyReviewed
			}
			return fmt.Errorf("insert review: %w", err)
		}
		if err := lockStats(tx, review.TargetUserID, &stats); err != nil {
			return err
		}
		rate(&stats)
		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// HasReview reports whether authorID already reviewed dealID.
func (s *Service) HasReview(ctx context.Context, dealID uint, authorID string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Where("deal_id = ? AND author_id = ?", dealID, authorID).Count(&n).Error
	return n > 0, err
}

// ListReviews returns reviews received by a user, newest first.
func (s *Service) ListReviews(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).Preload("Author.Profile").
		Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// SeedBadges inserts missing badge definitions.
func (s *Service) SeedBadges(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon"}),
	}).Create(&badges).Error
}

func (s *Service) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.DB.WithContext(ctx).Order("id ASC").Find(&badges).Error
	return badges, err
}

func (s *Service) ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.WithContext(ctx).Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	return badges, err
}

// AwardBadge links the badge of the given type to the user.
// It reports false when the user already had it.
func (s *Service) AwardBadge(ctx context.Context, userID string, badgeType models.BadgeType) (bool, error) {
	var badge models.Badge
	db := s.DB.WithContext(ctx)
	if err := db.First(&badge, "type = ?", badgeType).Error; err != nil {
		return false, notFound(err, apperrors.ErrNotFound.WithMessage("Badge not found"))
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.UserBadge{UserID: userID, BadgeID: badge.ID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Leaderboard returns active users ordered by reputation.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	type row struct {
		UserID             string
		FirstName          string
		LastName           string
		AvatarURL          *string
		Reputation         int
		Level              int
		ExchangesCompleted int
		AverageRating      float64
	}
	var rows []row
	err := s.DB.WithContext(ctx).Table("user_stats").
		Select("user_stats.user_id, COALESCE(user_profiles.first_name, '') AS first_name, COALESCE(user_profiles.last_name, '') AS last_name, user_profiles.avatar_url, "+
			"user_stats.reputation, user_stats.level, user_stats.exchanges_completed, user_stats.average_rating").
		Joins("JOIN users ON users.id = user_stats.user_id").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("users.is_active = ?", true).
		Order("user_stats.reputation DESC, user_stats.exchanges_completed DESC, user_stats.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		profile := models.UserProfile{FirstName: r.FirstName, LastName: r.LastName}
		entries = append(entries, models.LeaderboardEntry{
			Rank:               i + 1,
			UserID:             r.UserID,
			Name:               profile.FullName(),
			AvatarURL:          r.AvatarURL,
			Reputation:         r.Reputation,
			Level:              r.Level,
			ExchangesCompleted: r.ExchangesCompleted,
			AverageRating:      r.AverageRating,
		})
	}
	return entries, nil
}
