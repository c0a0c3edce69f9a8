package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/auth"
)

func ptr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	view, err := env.users.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Empty(t, view.PasswordHash)
	assert.NotNil(t, view.Followers)
	assert.NotNil(t, view.Following)

	_, err = env.users.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfile_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	view, err := env.users.UpdateProfile(ctx, alice.ID, ProfileInput{Bio: ptr("  curious  ")})
	require.NoError(t, err)
	assert.Equal(t, "curious", view.Profile.Bio)
	assert.Equal(t, "First", view.Profile.FirstName, "nil fields keep their value")

	view, err = env.users.UpdateProfile(ctx, alice.ID, ProfileInput{FirstName: ptr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.Profile.FirstName)
	assert.Equal(t, "curious", view.Profile.Bio)

	_, err = env.users.UpdateProfile(ctx, alice.ID, ProfileInput{LastName: ptr("")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.users.UpdateProfile(ctx, alice.ID, ProfileInput{Bio: ptr(strings.Repeat("b", MaxBioLength+1))})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	err := env.users.ChangePassword(ctx, alice.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	err = env.users.ChangePassword(ctx, alice.ID, "secret1", "secret1")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = env.users.ChangePassword(ctx, alice.ID, "secret1", "123")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, env.users.ChangePassword(ctx, alice.ID, "secret1", "newsecret"))

	_, err = env.auth.Login(ctx, "alice@x.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	_, err = env.auth.Login(ctx, "alice@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestChangePassword_OverLongSharingPrefix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	current := strings.Repeat("p", auth.MaxPasswordBytes)

	res, err := env.auth.Register(ctx, RegisterInput{
		Username:  "alice",
		Email:     "alice@x.com",
		Password:  current,
		FirstName: "Alice",
		LastName:  "Liddell",
	})
	require.NoError(t, err)

	err = env.users.ChangePassword(ctx, res.User.ID, current, current+"suffix")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, appErr.Message, "72 bytes")
}

func TestSetAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	view, err := env.users.SetAvatar(ctx, alice.ID, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-test.png", view.Profile.Photo)

	// a later text-only update keeps the photo
	view, err = env.users.UpdateProfile(ctx, alice.ID, ProfileInput{Bio: ptr("hi")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-test.png", view.Profile.Photo)
}
