package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/repository"
)

// RelationshipService maintains the follow graph. Each user holds two sets,
// following and followers; an edge a→b is b in a.following and a in
// b.followers. Sets make add and remove idempotent, and membership is the
// only source of truth: there is no separate follower count.
type RelationshipService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewRelationshipService(users repository.UserRepository, follows repository.FollowRepository, logger *slog.Logger) *RelationshipService {
	return &RelationshipService{users: users, follows: follows, logger: logger}
}

// Follow adds the edge actor→target.
//
// The membership pre-check is best effort: two concurrent Follow calls can
// both pass it. The set inserts are idempotent, so the worst case is both
// callers getting success for one edge.
func (s *RelationshipService) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperror.New(apperror.ErrSelfReference, "you cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	following, err := s.follows.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("service/relationship: checking follow: %w", err)
	}
	if following {
		return apperror.New(apperror.ErrAlreadyFollowing, "you are already following this user")
	}

	// two independent writes, see the package doc
	if err := s.follows.AddFollowing(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("service/relationship: adding following: %w", err)
	}
	if err := s.follows.AddFollower(ctx, targetID, actorID); err != nil {
		return fmt.Errorf("service/relationship: adding follower: %w", err)
	}

	s.logger.Info("user followed",
		slog.String("userID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}

// Unfollow removes the edge actor→target from both sets.
func (s *RelationshipService) Unfollow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperror.New(apperror.ErrSelfReference, "you cannot unfollow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	following, err := s.follows.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("service/relationship: checking follow: %w", err)
	}
	if !following {
		return apperror.New(apperror.ErrNotFollowing, "you are not following this user")
	}

	if err := s.follows.RemoveFollowing(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("service/relationship: removing following: %w", err)
	}
	if err := s.follows.RemoveFollower(ctx, targetID, actorID); err != nil {
		return fmt.Errorf("service/relationship: removing follower: %w", err)
	}

	s.logger.Info("user unfollowed",
		slog.String("userID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}
