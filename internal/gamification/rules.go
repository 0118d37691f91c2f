// Package gamification keeps reputation, levels, badges and reviews.
package gamification

import (
	"math"

	"skillswap/backend/internal/config"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// BadgeDefinitions is the catalogue seeded into the badges table.
var BadgeDefinitions = []models.Badge{
	{Type: models.BadgeNewcomer, Name: "Newcomer", Description: "Joined SkillSwap", Icon: "👋"},
	{Type: models.BadgeFirstExchange, Name: "First Exchange", Description: "Completed the first exchange", Icon: "🤝"},
	{Type: models.BadgePopular, Name: "Popular", Description: "Completed 10 exchanges", Icon: "⭐"},
	{Type: models.BadgeMentor, Name: "Mentor", Description: "Completed 25 exchanges", Icon: "🎓"},
	{Type: models.BadgeExpert, Name: "Expert", Description: "Completed 50 exchanges", Icon: "🏆"},
	{Type: models.BadgeTopRated, Name: "Top Rated", Description: "Average rating of 4.8 or more with at least 5 reviews", Icon: "💎"},
	{Type: models.BadgeCategoryExpert, Name: "Category Expert", Description: "Completed 10 exchanges in one category", Icon: "🎯"},
}

// BadgeByType returns the catalogue entry for t.
func BadgeByType(t models.BadgeType) (models.Badge, bool) {
	return lo.Find(BadgeDefinitions, func(b models.Badge) bool { return b.Type == t })
}

// ApplyExchange credits one completed exchange in category and returns the number of levels gained.
func ApplyExchange(stats *models.UserStats, category models.AdCategory) int {
	stats.ExchangesCompleted++
	stats.Reputation += config.ExchangeReputationReward
	stats.Experience += config.ExchangeExperienceReward

	counts := lo.Assign(stats.CategoryExchanges.Data())
	if category != "" {
		counts[category]++
	}
	stats.CategoryExchanges = datatypes.NewJSONType(counts)

	return LevelUp(stats)
}

// ApplyRating adds a review of rating stars to the target's stats.
func ApplyRating(stats *models.UserStats, rating int) {
	total := stats.AverageRating*float64(stats.TotalRatings) + float64(rating)
	stats.TotalRatings++
	stats.AverageRating = math.Round(total/float64(stats.TotalRatings)*100) / 100
	stats.Reputation += rating * config.ReviewReputationFactor
}

// LevelUp converts experience into levels: reaching level*100 experience consumes
// it and moves to the next level.
func LevelUp(stats *models.UserStats) int {
	if stats.Level < 1 {
		stats.Level = 1
	}
	gained := 0
	for stats.Experience >= stats.Level*config.ExperiencePerLevel {
		stats.Experience -= stats.Level * config.ExperiencePerLevel
		stats.Level++
		gained++
	}
	return gained
}

// Progress reports the distance to the next level.
func Progress(stats *models.UserStats) models.LevelProgress {
	level := lo.Max([]int{stats.Level, 1})
	next := level * config.ExperiencePerLevel
	pct := math.Round(float64(stats.Experience)/float64(next)*10000) / 100
	return models.LevelProgress{
		Level:          level,
		Experience:     stats.Experience,
		NextLevelAt:    next,
		ProgressPct:    pct,
		ExperienceLeft: lo.Max([]int{next - stats.Experience, 0}),
	}
}

// EarnedBadges lists the stat-based badges stats qualifies for. Newcomer is granted on registration.
func EarnedBadges(stats *models.UserStats) []models.BadgeType {
	var out []models.BadgeType
	n := stats.ExchangesCompleted
	if n >= 1 {
		out = append(out, models.BadgeFirstExchange)
	}
	if n >= config.PopularExchanges {
		out = append(out, models.BadgePopular)
	}
	if n >= config.MentorExchanges {
		out = append(out, models.BadgeMentor)
	}
	if n >= config.ExpertExchanges {
		out = append(out, models.BadgeExpert)
	}
	if stats.TotalRatings >= config.TopRatedMinRatings && stats.AverageRating >= config.TopRatedAverage {
		out = append(out, models.BadgeTopRated)
	}
	if lo.SomeBy(lo.Values(stats.CategoryExchanges.Data()), func(c int) bool { return c >= config.CategoryExpertExchanges }) {
		out = append(out, models.BadgeCategoryExpert)
	}
	return out
}
