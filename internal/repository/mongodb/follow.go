package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/minisocial/internal/apperror"
)

func (s *Store) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	uid, err := objectID("user", userID)
	if err != nil {
		return false, err
	}
	tid, err := objectID("user", targetID)
	if err != nil {
		return false, err
	}

	n, err := s.users.CountDocuments(ctx,
		bson.M{"_id": uid, "following": tid},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("mongodb: checking follow %s -> %s: %w", userID, targetID, err)
	}
	return n > 0, nil
}

func (s *Store) AddFollowing(ctx context.Context, userID, targetID string) error {
	return s.updateEdge(ctx, "$addToSet", "following", userID, targetID)
}

func (s *Store) AddFollower(ctx context.Context, userID, followerID string) error {
	return s.updateEdge(ctx, "$addToSet", "followers", userID, followerID)
}

func (s *Store) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	return s.updateEdge(ctx, "$pull", "following", userID, targetID)
}

func (s *Store) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return s.updateEdge(ctx, "$pull", "followers", userID, followerID)
}

// updateEdge applies $addToSet or $pull to one of the user's follow sets.
// Both operators are idempotent. The document store has no CHECK
// constraint, so the self-edge guard lives here.
func (s *Store) updateEdge(ctx context.Context, op, field, userID, otherID string) error {
	if userID == otherID {
		return apperror.New(apperror.ErrSelfReference, "a user cannot follow themselves")
	}
	uid, err := objectID("user", userID)
	if err != nil {
		return err
	}
	oid, err := objectID("user", otherID)
	if err != nil {
		return err
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{op: bson.M{field: oid}},
	)
	if err != nil {
		return fmt.Errorf("mongodb: %s %s of %s: %w", op, field, userID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}
