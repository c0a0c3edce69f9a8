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

type postDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Author        primitive.ObjectID `bson:"author"`
	Content       string             `bson:"content"`
	Image         string             `bson:"image,omitempty"`
	LikesCount    int                `bson:"likesCount"`
	CommentsCount int                `bson:"commentsCount"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *postDoc) toModel() model.Post {
	return model.Post{
		ID:            d.ID.Hex(),
		AuthorID:      d.Author.Hex(),
		Content:       d.Content,
		Image:         d.Image,
		LikesCount:    d.LikesCount,
		CommentsCount: d.CommentsCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// newestFirst orders by creation time, then by _id, whose leading bytes
// are a timestamp as well.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	author, err := objectID("user", post.AuthorID)
	if err != nil {
		return err
	}

	ts := now()
	doc := postDoc{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Content:   post.Content,
		Image:     post.Image,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: creating post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.LikesCount = 0
	post.CommentsCount = 0
	post.CreatedAt = ts
	post.UpdatedAt = ts
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := objectID("post", id)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("mongodb: getting post %s: %w", id, err)
	}

	posts, err := s.populatePosts(ctx, []postDoc{doc})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *Store) ListPosts(ctx context.Context, authorID string, page model.PageRequest) ([]model.Post, int, error) {
	filter := bson.M{}
	if authorID != "" {
		author, err := primitive.ObjectIDFromHex(authorID)
		if err != nil {
			// no post can belong to a malformed id
			return []model.Post{}, 0, nil
		}
		filter["author"] = author
	}

	total, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: counting posts: %w", err)
	}

	cursor, err := s.posts.Find(ctx, filter, options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit)))
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: listing posts: %w", err)
	}

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("mongodb: decoding posts: %w", err)
	}

	posts, err := s.populatePosts(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return posts, int(total), nil
}

// populatePosts converts documents and fills each author summary with one
// batched user lookup.
func (s *Store) populatePosts(ctx context.Context, docs []postDoc) ([]model.Post, error) {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].Author.Hex()
	}
	authors, err := s.authorSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, len(docs))
	for i := range docs {
		posts[i] = docs[i].toModel()
		posts[i].Author = authors[posts[i].AuthorID]
	}
	return posts, nil
}

func (s *Store) UpdatePostContent(ctx context.Context, id, content string) (*model.Post, error) {
	oid, err := objectID("post", id)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	err = s.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("mongodb: updating post %s: %w", id, err)
	}

	posts, err := s.populatePosts(ctx, []postDoc{doc})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// DeletePost removes the post document only; comments and likes stay.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	oid, err := objectID("post", id)
	if err != nil {
		return err
	}
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongodb: deleting post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

func (s *Store) IncrementPostLikes(ctx context.Context, id string, delta int) error {
	return s.bumpCounter(ctx, s.posts, "post", "likesCount", id, delta)
}

func (s *Store) IncrementPostComments(ctx context.Context, id string, delta int) error {
	return s.bumpCounter(ctx, s.posts, "post", "commentsCount", id, delta)
}

// bumpCounter applies $inc by exactly delta.
func (s *Store) bumpCounter(ctx context.Context, coll *mongo.Collection, resource, field, id string, delta int) error {
	oid, err := objectID(resource, id)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("mongodb: bumping %s.%s for %s: %w", resource, field, id, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
