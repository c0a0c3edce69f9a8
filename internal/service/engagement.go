package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/repository"
)

// EngagementService likes and unlikes posts and comments.
//
// The Like record is the source of truth and is written first; the
// target's likesCount is a cached count bumped by exactly one afterwards.
// If the bump fails the like stands and the counter is one behind.
type EngagementService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	logger   *slog.Logger
}

func NewEngagementService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{posts: posts, comments: comments, likes: likes, logger: logger}
}

// LikeResult is the target's counter after the operation.
type LikeResult struct {
	Target     model.LikeTarget `json:"target"`
	TargetID   string           `json:"targetId"`
	LikesCount int              `json:"likesCount"`
}

// target bundles the per-kind reads and writes so the four public
// operations share one like/unlike path.
type target struct {
	kind  model.LikeTarget
	check func(ctx context.Context, id string) error
	count func(ctx context.Context, id string) (int, error)
	bump  func(ctx context.Context, id string, delta int) error
}

func (s *EngagementService) postTarget() target {
	return target{
		kind: model.LikeTargetPost,
		check: func(ctx context.Context, id string) error {
			_, err := s.posts.GetPostByID(ctx, id)
			return err
		},
		count: func(ctx context.Context, id string) (int, error) {
			p, err := s.posts.GetPostByID(ctx, id)
			if err != nil {
				return 0, err
			}
			return p.LikesCount, nil
		},
		bump: s.posts.IncrementPostLikes,
	}
}

func (s *EngagementService) commentTarget() target {
	return target{
		kind: model.LikeTargetComment,
		check: func(ctx context.Context, id string) error {
			_, err := s.comments.GetCommentByID(ctx, id)
			return err
		},
		count: func(ctx context.Context, id string) (int, error) {
			c, err := s.comments.GetCommentByID(ctx, id)
			if err != nil {
				return 0, err
			}
			return c.LikesCount, nil
		},
		bump: s.comments.IncrementCommentLikes,
	}
}

func (s *EngagementService) LikePost(ctx context.Context, actorID, postID string) (*LikeResult, error) {
	return s.like(ctx, s.postTarget(), actorID, postID)
}

func (s *EngagementService) UnlikePost(ctx context.Context, actorID, postID string) (*LikeResult, error) {
	return s.unlike(ctx, s.postTarget(), actorID, postID)
}

func (s *EngagementService) LikeComment(ctx context.Context, actorID, commentID string) (*LikeResult, error) {
	return s.like(ctx, s.commentTarget(), actorID, commentID)
}

func (s *EngagementService) UnlikeComment(ctx context.Context, actorID, commentID string) (*LikeResult, error) {
	return s.unlike(ctx, s.commentTarget(), actorID, commentID)
}

func (s *EngagementService) like(ctx context.Context, t target, actorID, id string) (*LikeResult, error) {
	if err := t.check(ctx, id); err != nil {
		return nil, err
	}

	_, err := s.likes.FindLike(ctx, actorID, t.kind, id)
	switch {
	case err == nil:
		return nil, apperror.New(apperror.ErrAlreadyLiked, fmt.Sprintf("you already liked this %s", t.kind))
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/engagement: checking like: %w", err)
	}

	// the unique index still rejects a duplicate that raced past FindLike
	if err := s.likes.CreateLike(ctx, &model.Like{UserID: actorID, Target: t.kind, TargetID: id}); err != nil {
		return nil, err
	}
	if err := t.bump(ctx, id, 1); err != nil {
		return nil, fmt.Errorf("service/engagement: bumping %s %s: %w", t.kind, id, err)
	}

	s.logger.Info("liked",
		slog.String("target", string(t.kind)),
		slog.String("targetID", id),
		slog.String("userID", actorID),
	)
	return s.result(ctx, t, id)
}

func (s *EngagementService) unlike(ctx context.Context, t target, actorID, id string) (*LikeResult, error) {
	if err := t.check(ctx, id); err != nil {
		return nil, err
	}

	// DeleteLike reports a missing like itself, so check and delete are
	// one store call.
	if err := s.likes.DeleteLike(ctx, actorID, t.kind, id); err != nil {
		return nil, err
	}
	if err := t.bump(ctx, id, -1); err != nil {
		return nil, fmt.Errorf("service/engagement: bumping %s %s: %w", t.kind, id, err)
	}

	s.logger.Info("unliked",
		slog.String("target", string(t.kind)),
		slog.String("targetID", id),
		slog.String("userID", actorID),
	)
	return s.result(ctx, t, id)
}

func (s *EngagementService) result(ctx context.Context, t target, id string) (*LikeResult, error) {
	n, err := t.count(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Target: t.kind, TargetID: id, LikesCount: n}, nil
}
