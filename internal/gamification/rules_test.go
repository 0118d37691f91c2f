package gamification_test

import (
	"testing"

	"skillswap/backend/internal/gamification"
	"skillswap/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestApplyExchange_CreditsAndCountsCategory(t *testing.T) {
	// Arrange
	stats := models.NewUserStats("u-1")

	// Act
	levels := gamification.ApplyExchange(stats, models.CategoryProgramming)

	// Assert
	assert.Equal(t, 0, levels)
	assert.Equal(t, 1, stats.ExchangesCompleted)
	assert.Equal(t, 10, stats.Reputation)
	assert.Equal(t, 10, stats.Experience)
	assert.Equal(t, 1, stats.CategoryCount(models.CategoryProgramming))
}

func TestLevelUp(t *testing.T) {
	tests := []struct {
		name       string
		level      int
		experience int
		wantLevel  int
		wantExp    int
		wantGained int
	}{
		{"below threshold", 1, 99, 1, 99, 0},
		{"exact threshold", 1, 100, 2, 0, 1},
		{"several levels at once", 1, 350, 3, 50, 2},
		{"level two needs 200", 2, 199, 2, 199, 0},
		{"zero level is normalized", 0, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &models.UserStats{Level: tt.level, Experience: tt.experience}
			gained := gamification.LevelUp(stats)
			assert.Equal(t, tt.wantGained, gained)
			assert.Equal(t, tt.wantLevel, stats.Level)
			assert.Equal(t, tt.wantExp, stats.Experience)
		})
	}
}

func TestApplyExchange_TenthExchangeLevelsUp(t *testing.T) {
	stats := models.NewUserStats("u-1")
	total := 0
	for i := 0; i < 10; i++ {
		total += gamification.ApplyExchange(stats, models.CategoryMath)
	}

	assert.Equal(t, 1, total)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 0, stats.Experience)
	assert.Equal(t, 100, stats.Reputation)
}

func TestApplyRating_RecomputesAverage(t *testing.T) {
	stats := models.NewUserStats("u-1")

	gamification.ApplyRating(stats, 5)
	gamification.ApplyRating(stats, 4)
	gamification.ApplyRating(stats, 4)

	assert.Equal(t, 3, stats.TotalRatings)
	assert.InDelta(t, 4.33, stats.AverageRating, 0.0001)
	assert.Equal(t, 26, stats.Reputation)
}

func TestProgress(t *testing.T) {
	p := gamification.Progress(&models.UserStats{Level: 2, Experience: 50})

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 200, p.NextLevelAt)
	assert.Equal(t, 150, p.ExperienceLeft)
	assert.InDelta(t, 25.0, p.ProgressPct, 0.0001)
}

func TestEarnedBadges(t *testing.T) {
	tests := []struct {
		name  string
		stats models.UserStats
		want  []models.BadgeType
	}{
		{
			name:  "fresh account",
			stats: *models.NewUserStats("u"),
			want:  nil,
		},
		{
			name:  "first exchange",
			stats: models.UserStats{ExchangesCompleted: 1},
			want:  []models.BadgeType{models.BadgeFirstExchange},
		},
		{
			name:  "mentor",
			stats: models.UserStats{ExchangesCompleted: 25},
			want:  []models.BadgeType{models.BadgeFirstExchange, models.BadgePopular, models.BadgeMentor},
		},
		{
			name:  "top rated needs five ratings",
			stats: models.UserStats{TotalRatings: 4, AverageRating: 5},
			want:  nil,
		},
		{
			name:  "top rated",
			stats: models.UserStats{TotalRatings: 5, AverageRating: 4.8},
			want:  []models.BadgeType{models.BadgeTopRated},
		},
		{
			name: "category expert",
			stats: models.UserStats{
				ExchangesCompleted: 12,
				CategoryExchanges:  datatypes.NewJSONType(map[models.AdCategory]int{models.CategoryDesign: 10, models.CategoryMath: 2}),
			},
			want: []models.BadgeType{models.BadgeFirstExchange, models.BadgePopular, models.BadgeCategoryExpert},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.stats
			assert.Equal(t, tt.want, gamification.EarnedBadges(&stats))
		})
	}
}

func TestBadgeByType(t *testing.T) {
	b, ok := gamification.BadgeByType(models.BadgeMentor)
	assert.True(t, ok)
	assert.Equal(t, "Mentor", b.Name)

	_, ok = gamification.BadgeByType("unknown")
	assert.False(t, ok)
}
