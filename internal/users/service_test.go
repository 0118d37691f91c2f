package users_test

import (
	"context"
	"testing"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"
	"skillswap/backend/internal/users"

	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users   map[string]*models.User
	updates map[string]interface{}
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetStats(_ context.Context, userID string) (*models.UserStats, error) {
	return models.NewUserStats(userID), nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error) {
	f.updates = fields
	return &models.UserProfile{UserID: userID}, nil
}

func TestProfileUpdate_Fields(t *testing.T) {
	upd := users.ProfileUpdate{
		FirstName: lo.ToPtr("  Ann "),
		AvatarURL: lo.ToPtr(""),
		Year:      lo.ToPtr(3),
		Skills:    []string{"go", " go", "", "sql"},
	}

	fields := upd.Fields()

	assert.Equal(t, "Ann", fields["first_name"])
	assert.Nil(t, fields["avatar_url"])
	assert.Contains(t, fields, "avatar_url")
	assert.Equal(t, 3, fields["year"])
	assert.Equal(t, pq.StringArray{"go", "sql"}, fields["skills"])
	assert.NotContains(t, fields, "last_name")
	assert.NotContains(t, fields, "bio")
}

func TestPublic_HidesPhone(t *testing.T) {
	store := &fakeStore{users: map[string]*models.User{
		"u-1": {ID: "u-1", Phone: "+79991234567", Role: models.RoleStudent, Profile: &models.UserProfile{FirstName: "Ann"}},
	}}
	svc := users.NewService(store)

	pub, err := svc.Public(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Equal(t, "u-1", pub.ID)
	assert.Equal(t, "Ann", pub.Profile.FirstName)
	assert.Equal(t, 1, pub.Stats.Level)

	_, err = svc.Public(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUpdateProfile_PassesFields(t *testing.T) {
	store := &fakeStore{}
	svc := users.NewService(store)

	_, err := svc.UpdateProfile(context.Background(), "u-1", users.ProfileUpdate{Bio: lo.ToPtr("hi")})

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"bio": "hi"}, store.updates)
}
