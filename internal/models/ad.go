package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdCategory string

const (
	CategoryProgramming AdCategory = "programming"
	CategoryDesign      AdCategory = "design"
	CategoryLanguages   AdCategory = "languages"
	CategoryMath        AdCategory = "math"
	CategoryScience     AdCategory = "science"
	CategoryBusiness    AdCategory = "business"
	CategoryMusic       AdCategory = "music"
	CategorySports      AdCategory = "sports"
	CategoryOther       AdCategory = "other"
)

// AdCategories lists every valid category in display order.
var AdCategories = []AdCategory{
	CategoryProgramming, CategoryDesign, CategoryLanguages, CategoryMath, CategoryScience,
	CategoryBusiness, CategoryMusic, CategorySports, CategoryOther,
}

type AdLevel string

const (
	LevelBeginner     AdLevel = "beginner"
	LevelIntermediate AdLevel = "intermediate"
	LevelAdvanced     AdLevel = "advanced"
)

var AdLevels = []AdLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}

type AdFormat string

const (
	FormatOnline  AdFormat = "online"
	FormatOffline AdFormat = "offline"
	FormatHybrid  AdFormat = "hybrid"
)

var AdFormats = []AdFormat{FormatOnline, FormatOffline, FormatHybrid}

// Ad is a classified listing offering a skill.
type Ad struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID    string     `gorm:"index;type:varchar(36);not null" json:"author_id"`
	Category    AdCategory `gorm:"size:32;index;not null" json:"category"`
	Title       string     `gorm:"size:120;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Level       AdLevel    `gorm:"size:32;not null" json:"level"`
	Format      AdFormat   `gorm:"size:32;not null" json:"format"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}

func (a *Ad) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// AdFilter describes a paginated ads query.
type AdFilter struct {
	Category *AdCategory
	Level    *AdLevel
	Format   *AdFormat
	Query    string
	AuthorID string
	// Sort is "newest" (default) or "popular".
	Sort     string
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page.
func (f AdFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
