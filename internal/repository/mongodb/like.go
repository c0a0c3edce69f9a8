package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
)

// likeDoc carries exactly one of Post or Comment. omitempty keeps the other
// field absent, which is what the partial unique indexes key on.
type likeDoc struct {
	ID        primitive.ObjectID  `bson:"_id"`
	User      primitive.ObjectID  `bson:"user"`
	Post      *primitive.ObjectID `bson:"post,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
}

// likeFilter builds the (user, target) filter shared by find and delete.
func likeFilter(userID string, target model.LikeTarget, targetID string) (bson.M, error) {
	var field string
	switch target {
	case model.LikeTargetPost:
		field = "post"
	case model.LikeTargetComment:
		field = "comment"
	default:
		return nil, fmt.Errorf("mongodb: unknown like target %q", target)
	}

	uid, err := objectID("user", userID)
	if err != nil {
		return nil, err
	}
	tid, err := objectID(string(target), targetID)
	if err != nil {
		return nil, err
	}
	return bson.M{"user": uid, field: tid}, nil
}

func (s *Store) FindLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) (*model.Like, error) {
	filter, err := likeFilter(userID, target, targetID)
	if err != nil {
		return nil, err
	}

	var doc likeDoc
	if err := s.likes.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("like", targetID)
		}
		return nil, fmt.Errorf("mongodb: finding like on %s %s: %w", target, targetID, err)
	}
	return &model.Like{
		ID:        doc.ID.Hex(),
		UserID:    userID,
		Target:    target,
		TargetID:  targetID,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *Store) CreateLike(ctx context.Context, like *model.Like) error {
	filter, err := likeFilter(like.UserID, like.Target, like.TargetID)
	if err != nil {
		return err
	}

	doc := likeDoc{
		ID:        primitive.NewObjectID(),
		User:      filter["user"].(primitive.ObjectID),
		CreatedAt: now(),
	}
	tid := filter[string(like.Target)].(primitive.ObjectID)
	if like.Target == model.LikeTargetPost {
		doc.Post = &tid
	} else {
		doc.Comment = &tid
	}

	if _, err := s.likes.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.New(apperror.ErrAlreadyLiked, fmt.Sprintf("you already liked this %s", like.Target))
		}
		return fmt.Errorf("mongodb: creating like on %s %s: %w", like.Target, like.TargetID, err)
	}

	like.ID = doc.ID.Hex()
	like.CreatedAt = doc.CreatedAt
	return nil
}

func (s *Store) DeleteLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) error {
	filter, err := likeFilter(userID, target, targetID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.New(apperror.ErrLikeNotFound, "like not found")
		}
		return err
	}

	res, err := s.likes.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb: deleting like on %s %s: %w", target, targetID, err)
	}
	if res.DeletedCount == 0 {
		return apperror.New(apperror.ErrLikeNotFound, "like not found")
	}
	return nil
}
