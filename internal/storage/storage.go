// Package storage implements every persistence interface of the application
// on top of PostgreSQL (gorm) and Redis.
package storage

import (
	"errors"
	"fmt"

	"skillswap/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service is the gorm + Redis backed store.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb}
}

// AllModels lists the tables managed by AutoMigrate, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.UserStats{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Ad{},
		&models.Chat{},
		&models.Message{},
		&models.Deal{},
		&models.DealStatusLog{},
		&models.Review{},
		&models.AdminLog{},
	}
}

// Migrate creates or updates the schema.
func (s *Service) Migrate() error {
	if err := s.DB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("Database migrations complete.")
	return nil
}

// notFound maps gorm.ErrRecordNotFound to the given domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func normalizePage(page, pageSize, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > max {
		pageSize = max
	}
	return page, pageSize
}
