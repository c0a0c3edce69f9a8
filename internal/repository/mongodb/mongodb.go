// Package mongodb implements the repository interfaces on a MongoDB
// database. It is the document-store alternative to repository/sqlite and
// is selected with STORE_DRIVER=mongo.
//
// Users embed their follow sets as arrays of ObjectIDs, so follow and
// unfollow are $addToSet / $pull updates on a single document each. Post
// and comment counters are maintained with $inc. Uniqueness (username,
// email, one like per user and target) lives in indexes created by New,
// and duplicate-key errors are translated into apperror values.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/repository"
)

// compile-time check that *Store implements repository.Store
var _ repository.Store = (*Store)(nil)

const connectTimeout = 10 * time.Second

// Store holds the client and one handle per collection.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	likes    *mongo.Collection
}

// New connects to uri, pings the primary and makes sure every index exists.
func New(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: pinging primary: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		likes:    db.Collection("likes"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: creating indexes: %w", err)
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ensureIndexes is idempotent: creating an index that already exists with
// the same keys and options is a no-op on the server.
func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.comments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		// A sparse compound index would still index documents that only
		// carry "user", so each pair gets a partial filter on its own field.
		{s.likes, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "post", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"post": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "comment", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"comment": bson.M{"$exists": true}}),
			},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("%s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// objectID parses a hex id. A malformed id cannot name any document, so it
// is reported as NotFound for the given resource.
func objectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(resource, id)
	}
	return oid, nil
}

// now is truncated to the millisecond precision BSON dates store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func hexIDs(oids []primitive.ObjectID) []string {
	ids := make([]string, len(oids))
	for i, oid := range oids {
		ids[i] = oid.Hex()
	}
	return ids
}
