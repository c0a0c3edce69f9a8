package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/auth"
	"github.com/sakif/minisocial/internal/model"
	sqliteRepo "github.com/sakif/minisocial/internal/repository/sqlite"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeImages records uploads without touching the filesystem.
type fakeImages struct {
	saved int
	err   error
}

func (f *fakeImages) SaveImage(r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.saved++
	return "/uploads/image-test.png", nil
}

// testEnv wires every service onto one in-memory SQLite database.
type testEnv struct {
	db         *sqliteRepo.DB
	tokens     *auth.TokenService
	images     *fakeImages
	auth       *AuthService
	users      *UserService
	follows    *RelationshipService
	posts      *PostService
	comments   *CommentService
	engagement *EngagementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	images := &fakeImages{}

	return &testEnv{
		db:         db,
		tokens:     tokens,
		images:     images,
		auth:       NewAuthService(db, tokens, passwords, logger),
		users:      NewUserService(db, passwords, images, logger),
		follows:    NewRelationshipService(db, db, logger),
		posts:      NewPostService(db, db, images, logger),
		comments:   NewCommentService(db, db, logger),
		engagement: NewEngagementService(db, db, db, logger),
	}
}

// register creates a user named name with email name@x.com and password
// "secret1".
func (e *testEnv) register(t *testing.T, name string) *model.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username:  name,
		Email:     name + "@x.com",
		Password:  "secret1",
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) post(t *testing.T, author *model.User, text string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), author.ID, text, nil)
	require.NoError(t, err)
	return p
}

var errBoom = errors.New("boom")

// =========================================================================
// NewPage TESTS
// =========================================================================

func TestNewPage(t *testing.T) {
	cases := []struct {
		name        string
		page, limit int
		want        model.PageRequest
	}{
		{"defaults", 0, 0, model.PageRequest{Page: 1, Limit: 10}},
		{"negative", -3, -1, model.PageRequest{Page: 1, Limit: 10}},
		{"explicit", 3, 25, model.PageRequest{Page: 3, Limit: 25}},
		{"capped", 1, 1000, model.PageRequest{Page: 1, Limit: MaxPageLimit}},
		{"huge page", math.MaxInt, 100, model.PageRequest{Page: math.MaxInt / 100, Limit: 100}},
		{"huge page default limit", math.MaxInt, 0, model.PageRequest{Page: math.MaxInt / DefaultPageLimit, Limit: DefaultPageLimit}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewPage(tc.page, tc.limit)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}

func TestValidators_CountRunes(t *testing.T) {
	// three runes, six bytes
	name, err := validateUsername("ñañ")
	require.NoError(t, err)
	assert.Equal(t, "ñañ", name)

	_, err = requireText("content", "content", strings.Repeat("é", MaxCommentLength), MaxCommentLength)
	assert.NoError(t, err)
	_, err = requireText("content", "content", strings.Repeat("é", MaxCommentLength+1), MaxCommentLength)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestValidateEmail(t *testing.T) {
	got, err := validateEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)

	for _, bad := range []string{"", "   ", "alice", "alice@", "@x.com", "a b@x.com"} {
		_, err := validateEmail(bad)
		assert.ErrorIs(t, err, apperror.ErrValidation, "email %q", bad)
	}
}
