// Package repository declares the storage contracts the services depend on.
//
// Two backends implement them: repository/sqlite (embedded, the default) and
// repository/mongo (document store). Every method is a single independent
// write or read; none of them open a transaction spanning two calls.
package repository

import (
	"context"

	"github.com/sakif/minisocial/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a new user. A duplicate username or email is
	// reported as apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UserExists reports whether any user holds the username or the email.
	UserExists(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// GetUserSummaries resolves ids to summaries, skipping unknown ids.
	// Order follows the input order.
	GetUserSummaries(ctx context.Context, ids []string) ([]model.UserSummary, error)
}

// FollowRepository manages the two follow sets. Add and Remove are
// idempotent set operations on ONE side of the edge each.
type FollowRepository interface {
	IsFollowing(ctx context.Context, userID, targetID string) (bool, error)
	AddFollowing(ctx context.Context, userID, targetID string) error
	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollowing(ctx context.Context, userID, targetID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	// ListPosts returns a page of posts, newest first, and the total count.
	// An empty authorID lists every post.
	ListPosts(ctx context.Context, authorID string, page model.PageRequest) ([]model.Post, int, error)
	UpdatePostContent(ctx context.Context, id, content string) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementPostLikes(ctx context.Context, id string, delta int) error
	IncrementPostComments(ctx context.Context, id string, delta int) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, postID string, page model.PageRequest) ([]model.Comment, int, error)
	UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	IncrementCommentLikes(ctx context.Context, id string, delta int) error
}

type LikeRepository interface {
	// FindLike returns apperror.ErrNotFound when the user has no like on the target.
	FindLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) (*model.Like, error)
	// CreateLike reports a duplicate (user, target) pair as apperror.ErrAlreadyLiked.
	CreateLike(ctx context.Context, like *model.Like) error
	// DeleteLike reports a missing like as apperror.ErrLikeNotFound.
	DeleteLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) error
}

// Store bundles every repository behind one handle owned by the server.
type Store interface {
	UserRepository
	FollowRepository
	PostRepository
	CommentRepository
	LikeRepository
	Close() error
}
