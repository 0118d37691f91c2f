package storage

import (
	"context"

	"skillswap/backend/internal/models"
)

func (s *Service) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

// ListAdminLogs returns a page of moderation actions, newest first.
func (s *Service) ListAdminLogs(ctx context.Context, page, pageSize int) ([]models.AdminLog, int64, error) {
	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []models.AdminLog
	err := db.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}

// Stats collects the admin dashboard counters.
func (s *Service) Stats(ctx context.Context) (*models.AdminStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &models.AdminStats{DealsByStatus: map[models.DealStatus]int64{}}

	counters := []struct {
		model interface{}
		where string
		args  []interface{}
		dst   *int64
	}{
		{&models.User{}, "", nil, &stats.TotalUsers},
		{&models.User{}, "is_active = ?", []interface{}{true}, &stats.ActiveUsers},
		{&models.User{}, "is_active = ?", []interface{}{false}, &stats.BannedUsers},
		{&models.Ad{}, "", nil, &stats.TotalAds},
		{&models.Chat{}, "", nil, &stats.TotalChats},
		{&models.Message{}, "", nil, &stats.TotalMessages},
		{&models.Deal{}, "", nil, &stats.TotalDeals},
	}
	for _, c := range counters {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var byStatus []struct {
		Status models.DealStatus
		Count  int64
	}
	if err := db.Model(&models.Deal{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.DealsByStatus[row.Status] = row.Count
	}

	if err := db.Order("created_at DESC, id DESC").Limit(10).Find(&stats.RecentActions).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
