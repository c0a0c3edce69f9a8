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

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "alice@x.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Liddell",
	}
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)
	in := validRegistration()
	in.Username = "  alice  "
	in.Email = "Alice@X.com"

	res, err := env.auth.Register(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)

	stored, err := env.db.GetUserByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"), "password must be stored as a bcrypt hash")

	subject, err := env.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, subject)
}

func TestRegister_DuplicateIdentityCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	dupUsername := validRegistration()
	dupUsername.Email = "other@x.com"
	_, err = env.auth.Register(ctx, dupUsername)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = env.db.GetUserByEmail(ctx, "other@x.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	dupEmail := validRegistration()
	dupEmail.Username = "alice2"
	dupEmail.Email = "ALICE@x.com"
	_, err = env.auth.Register(ctx, dupEmail)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	exists, err := env.db.UserExists(ctx, "alice2", "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"short username", func(in *RegisterInput) { in.Username = "al" }, "username"},
		{"long username", func(in *RegisterInput) { in.Username = strings.Repeat("a", 31) }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "password"},
		{"long password", func(in *RegisterInput) { in.Password = strings.Repeat("p", 73) }, "password"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "  " }, "firstName"},
		{"long last name", func(in *RegisterInput) { in.LastName = strings.Repeat("l", 51) }, "lastName"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := validRegistration()
			tc.mutate(&in)

			_, err := env.auth.Register(context.Background(), in)

			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}
}

func TestLogin_TokenResolvesToSameUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	res, err := env.auth.Login(context.Background(), "ALICE@x.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, alice.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)
	subject, err := env.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, subject)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.auth.Login(context.Background(), "alice@x.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = env.auth.Login(context.Background(), "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	_, err = env.auth.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin_RejectsSuffixPastBcryptLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	password := strings.Repeat("p", auth.MaxPasswordBytes)

	_, err := env.auth.Register(ctx, RegisterInput{
		Username:  "alice",
		Email:     "alice@x.com",
		Password:  password,
		FirstName: "Alice",
		LastName:  "Liddell",
	})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "alice@x.com", password+"extra")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	_, err = env.auth.Login(ctx, "alice@x.com", password)
	assert.NoError(t, err)
}
