package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Необхідний для pq.StringArray
	"gorm.io/gorm"
)

// UserRole is the access level of an account.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User is an account identified by its phone number.
type User struct {
	// ID is a UUID generated in BeforeCreate.
	ID    string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Phone string   `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Role  UserRole `gorm:"size:16;not null;default:student" json:"role"`
	// IsActive is false for banned users.
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *UserProfile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Stats   *UserStats   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"stats,omitempty"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Він генерує новий UUID для користувача, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns "First Last" from the profile, or a placeholder when the profile is empty.
func (u *User) DisplayName() string {
	if u == nil || u.Profile == nil {
		return "User"
	}
	return u.Profile.FullName()
}

// UserProfile holds the public, user-editable part of an account.
type UserProfile struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     string         `gorm:"uniqueIndex;type:varchar(36);not null" json:"user_id"`
	FirstName  string         `gorm:"size:100" json:"first_name"`
	LastName   string         `gorm:"size:100" json:"last_name"`
	AvatarURL  *string        `gorm:"size:500" json:"avatar_url"`
	Bio        string         `gorm:"type:text" json:"bio"`
	University string         `gorm:"size:200" json:"university"`
	Faculty    string         `gorm:"size:200" json:"faculty"`
	Year       *int           `json:"year"`
	Skills     pq.StringArray `gorm:"type:text[]" json:"skills"` // Теги навичок
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// FullName joins first and last name.
func (p *UserProfile) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return "User"
	}
	return name
}

func (UserProfile) TableName() string { return "user_profiles" }
