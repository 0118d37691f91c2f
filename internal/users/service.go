// Package users serves account profiles.
package users

import (
	"context"
	"strings"

	"skillswap/backend/internal/models"

	"github.com/lib/pq"
	"github.com/samber/lo"
)

type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetStats(ctx context.Context, userID string) (*models.UserStats, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error)
}

// ProfileUpdate is the body of PATCH /users/me. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName  *string  `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string  `json:"last_name" binding:"omitempty,max=100"`
	AvatarURL  *string  `json:"avatar_url" binding:"omitempty,max=500"`
	Bio        *string  `json:"bio" binding:"omitempty,max=2000"`
	University *string  `json:"university" binding:"omitempty,max=200"`
	Faculty    *string  `json:"faculty" binding:"omitempty,max=200"`
	Year       *int     `json:"year" binding:"omitempty,min=1,max=6"`
	Skills     []string `json:"skills" binding:"omitempty,max=30,dive,min=1,max=50"`
}

// Fields returns the column values to write.
func (u ProfileUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("bio", u.Bio)
	set("university", u.University)
	set("faculty", u.Faculty)
	if u.AvatarURL != nil {
		fields["avatar_url"] = lo.EmptyableToPtr(strings.TrimSpace(*u.AvatarURL))
	}
	if u.Year != nil {
		fields["year"] = *u.Year
	}
	if u.Skills != nil {
		skills := lo.Uniq(lo.FilterMap(u.Skills, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		}))
		fields["skills"] = pq.StringArray(skills)
	}
	return fields
}

// PublicUser is a profile as seen by other users. The phone number is never exposed.
type PublicUser struct {
	ID      string              `json:"id"`
	Role    models.UserRole     `json:"role"`
	Profile *models.UserProfile `json:"profile"`
	Stats   *models.UserStats   `json:"stats"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Me returns the caller's account with profile and stats.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Stats = stats
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.UserProfile, error) {
	return s.store.UpdateProfile(ctx, userID, upd.Fields())
}

// Public returns another user's public profile.
func (s *Service) Public(ctx context.Context, userID string) (*PublicUser, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicUser{ID: user.ID, Role: user.Role, Profile: user.Profile, Stats: user.Stats}, nil
}
