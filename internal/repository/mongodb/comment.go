package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
)

type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Post       primitive.ObjectID `bson:"post"`
	Author     primitive.ObjectID `bson:"author"`
	Content    string             `bson:"content"`
	LikesCount int                `bson:"likesCount"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *commentDoc) toModel() model.Comment {
	return model.Comment{
		ID:         d.ID.Hex(),
		PostID:     d.Post.Hex(),
		AuthorID:   d.Author.Hex(),
		Content:    d.Content,
		LikesCount: d.LikesCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	post, err := objectID("post", comment.PostID)
	if err != nil {
		return err
	}
	author, err := objectID("user", comment.AuthorID)
	if err != nil {
		return err
	}

	ts := now()
	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		Post:      post,
		Author:    author,
		Content:   comment.Content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: creating comment on %s: %w", comment.PostID, err)
	}

	comment.ID = doc.ID.Hex()
	comment.LikesCount = 0
	comment.CreatedAt = ts
	comment.UpdatedAt = ts
	return nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := objectID("comment", id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("mongodb: getting comment %s: %w", id, err)
	}

	comments, err := s.populateComments(ctx, []commentDoc{doc})
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (s *Store) ListComments(ctx context.Context, postID string, page model.PageRequest) ([]model.Comment, int, error) {
	post, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return []model.Comment{}, 0, nil
	}
	filter := bson.M{"post": post}

	total, err := s.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: counting comments: %w", err)
	}

	cursor, err := s.comments.Find(ctx, filter, options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit)))
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: listing comments: %w", err)
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("mongodb: decoding comments: %w", err)
	}

	comments, err := s.populateComments(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return comments, int(total), nil
}

func (s *Store) populateComments(ctx context.Context, docs []commentDoc) ([]model.Comment, error) {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].Author.Hex()
	}
	authors, err := s.authorSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	comments := make([]model.Comment, len(docs))
	for i := range docs {
		comments[i] = docs[i].toModel()
		comments[i].Author = authors[comments[i].AuthorID]
	}
	return comments, nil
}

func (s *Store) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	oid, err := objectID("comment", id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	err = s.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("mongodb: updating comment %s: %w", id, err)
	}

	comments, err := s.populateComments(ctx, []commentDoc{doc})
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	oid, err := objectID("comment", id)
	if err != nil {
		return err
	}
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongodb: deleting comment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

func (s *Store) IncrementCommentLikes(ctx context.Context, id string, delta int) error {
	return s.bumpCounter(ctx, s.comments, "comment", "likesCount", id, delta)
}
