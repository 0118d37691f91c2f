package storage

import (
	"context"
	"fmt"
	"strings"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser stores a new account together with an empty profile and fresh stats.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Profile == nil {
			user.Profile = &models.UserProfile{}
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		stats := models.NewUserStats(user.ID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(stats).Error; err != nil {
			return fmt.Errorf("create user stats: %w", err)
		}
		user.Stats = stats
		return nil
	})
}

// GetUserByID loads a user with its profile.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByPhone loads a user by normalized phone number.
func (s *Service) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("Profile").First(&user, "phone = ?", phone).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// UpdateProfile applies the given column values to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error) {
	db := s.DB.WithContext(ctx)
	var profile models.UserProfile
	if err := db.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(fields) > 0 {
		if err := db.Model(&profile).Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if err := db.First(&profile, profile.ID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetUserActive bans (false) or unbans (true) a user.
func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"is_active": active, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetUserRole changes the role of a user.
func (s *Service) SetUserRole(ctx context.Context, userID string, role models.UserRole) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListUsers returns a filtered page of users, newest first.
func (s *Service) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int64, error) {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize, config.DefaultPageSize, config.MaxPageSize)

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.User{})
		if q := strings.TrimSpace(f.Search); q != "" {
			like := "%" + q + "%"
			db = db.Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
				Where("users.phone ILIKE ? OR user_profiles.first_name ILIKE ? OR user_profiles.last_name ILIKE ?", like, like, like)
		}
		if f.Role != nil {
			db = db.Where("users.role = ?", *f.Role)
		}
		if f.IsActive != nil {
			db = db.Where("users.is_active = ?", *f.IsActive)
		}
		return db
	}

	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := db.Scopes(scope).Preload("Profile").
		Order("users.created_at DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&users).Error
	return users, total, err
}
