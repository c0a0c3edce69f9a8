package mongodb

import (
	"context"
	"os"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
)

// newTestStore connects to MONGO_TEST_URI and uses a throwaway database
// that is dropped when the test ends. Without the variable the test skips.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	s, err := New(context.Background(), uri, "minisocial_test_"+xid.New().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func createUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Profile:      model.Profile{FirstName: "Test", LastName: username},
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("post", "not-hex")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	err := s.CreateUser(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	found, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	updated, err := s.UpdateProfile(ctx, alice.ID, model.Profile{FirstName: "Alice", LastName: "A", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Profile.FirstName)
	assert.Equal(t, "hi", updated.Profile.Bio)

	exists, err := s.UserExists(ctx, "nobody", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFollowSets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	require.NoError(t, s.AddFollowing(ctx, alice.ID, bob.ID))
	require.NoError(t, s.AddFollowing(ctx, alice.ID, bob.ID))
	require.NoError(t, s.AddFollower(ctx, bob.ID, alice.ID))

	a, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, a.Following)

	ok, err := s.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveFollowing(ctx, alice.ID, bob.ID))
	require.NoError(t, s.RemoveFollower(ctx, bob.ID, alice.ID))

	b, err := s.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, b.Followers)

	assert.ErrorIs(t, s.AddFollowing(ctx, alice.ID, alice.ID), apperror.ErrSelfReference)
}

func TestPostsAndLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	post := &model.Post{AuthorID: alice.ID, Content: "hello"}
	require.NoError(t, s.CreatePost(ctx, post))

	comment := &model.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "hi"}
	require.NoError(t, s.CreateComment(ctx, comment))

	require.NoError(t, s.CreateLike(ctx, &model.Like{UserID: alice.ID, Target: model.LikeTargetPost, TargetID: post.ID}))
	require.NoError(t, s.CreateLike(ctx, &model.Like{UserID: alice.ID, Target: model.LikeTargetComment, TargetID: comment.ID}))

	err := s.CreateLike(ctx, &model.Like{UserID: alice.ID, Target: model.LikeTargetPost, TargetID: post.ID})
	assert.ErrorIs(t, err, apperror.ErrAlreadyLiked)

	require.NoError(t, s.IncrementPostLikes(ctx, post.ID, 1))
	got, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)

	posts, total, err := s.ListPosts(ctx, alice.ID, model.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, posts, 1)

	require.NoError(t, s.DeleteLike(ctx, alice.ID, model.LikeTargetPost, post.ID))
	assert.ErrorIs(t, s.DeleteLike(ctx, alice.ID, model.LikeTargetPost, post.ID), apperror.ErrLikeNotFound)

	require.NoError(t, s.DeletePost(ctx, post.ID))
	comments, _, err := s.ListComments(ctx, post.ID, model.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
