package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserStats accumulates exchange and review results for one user.
type UserStats struct {
	UserID             string  `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Reputation         int     `gorm:"not null;default:0;index" json:"reputation"`
	ExchangesCompleted int     `gorm:"not null;default:0" json:"exchanges_completed"`
	TotalRatings       int     `gorm:"not null;default:0" json:"total_ratings"`
	AverageRating      float64 `gorm:"not null;default:0" json:"average_rating"`
	Level              int     `gorm:"not null;default:1" json:"level"`
	Experience         int     `gorm:"not null;default:0" json:"experience"`
	// CategoryExchanges counts completed exchanges per ad category.
	CategoryExchanges datatypes.JSONType[map[AdCategory]int] `json:"category_exchanges"`
	UpdatedAt         time.Time                              `json:"updated_at"`
}

// NewUserStats returns the starting stats of a fresh account.
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:            userID,
		Level:             1,
		CategoryExchanges: datatypes.NewJSONType(map[AdCategory]int{}),
	}
}

// CategoryCount returns the number of completed exchanges in category.
func (s *UserStats) CategoryCount(category AdCategory) int {
	return s.CategoryExchanges.Data()[category]
}

type BadgeType string

const (
	BadgeNewcomer       BadgeType = "newcomer"
	BadgeFirstExchange  BadgeType = "first_exchange"
	BadgePopular        BadgeType = "popular"
	BadgeMentor         BadgeType = "mentor"
	BadgeExpert         BadgeType = "expert"
	BadgeTopRated       BadgeType = "top_rated"
	BadgeCategoryExpert BadgeType = "category_expert"
)

// Badge is an achievement definition.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Type        BadgeType `gorm:"uniqueIndex;size:32;not null" json:"type"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
}

// UserBadge links a badge to the user who earned it.
type UserBadge struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	BadgeID   uint      `gorm:"primaryKey" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`

	Badge *Badge `json:"badge,omitempty"`
}

// Review is a rating left by one deal participant for the other.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DealID       uint      `gorm:"uniqueIndex:idx_review_deal_author;not null" json:"deal_id"`
	AuthorID     string    `gorm:"uniqueIndex:idx_review_deal_author;type:varchar(36);not null" json:"author_id"`
	TargetUserID string    `gorm:"index;type:varchar(36);not null" json:"target_user_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Text         string    `gorm:"type:text" json:"text"`
	CreatedAt    time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
	Deal   *Deal `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ReviewOut is the wire shape of a review.
type ReviewOut struct {
	ID           uint      `json:"id"`
	DealID       uint      `json:"deal_id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	TargetUserID string    `json:"target_user_id"`
	Rating       int       `json:"rating"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Review) Out() ReviewOut {
	return ReviewOut{
		ID:           r.ID,
		DealID:       r.DealID,
		AuthorID:     r.AuthorID,
		AuthorName:   r.Author.DisplayName(),
		TargetUserID: r.TargetUserID,
		Rating:       r.Rating,
		Text:         r.Text,
		CreatedAt:    r.CreatedAt,
	}
}

// LeaderboardEntry is one row of the reputation leaderboard.
type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id"`
	Name               string  `json:"name"`
	AvatarURL          *string `json:"avatar_url"`
	Reputation         int     `json:"reputation"`
	Level              int     `json:"level"`
	ExchangesCompleted int     `json:"exchanges_completed"`
	AverageRating      float64 `json:"average_rating"`
}

// LevelProgress describes how far a user is towards the next level.
type LevelProgress struct {
	Level          int     `json:"level"`
	Experience     int     `json:"experience"`
	NextLevelAt    int     `json:"next_level_at"`
	ProgressPct    float64 `json:"progress_percent"`
	ExperienceLeft int     `json:"experience_left"`
}

func (UserStats) TableName() string { return "user_stats" }
func (UserBadge) TableName() string { return "user_badges" }
