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

type userDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	PasswordHash string               `bson:"password"`
	Profile      model.Profile        `bson:"profile"`
	Followers    []primitive.ObjectID `bson:"followers"`
	Following    []primitive.ObjectID `bson:"following"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Profile:      d.Profile,
		Followers:    hexIDs(d.Followers),
		Following:    hexIDs(d.Following),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	ts := now()
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Profile:      user.Profile,
		Followers:    []primitive.ObjectID{},
		Following:    []primitive.ObjectID{},
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("user", "username or email already registered")
		}
		return fmt.Errorf("mongodb: inserting user %q: %w", user.Username, err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("mongodb: finding user %s: %w", key, err)
	}
	return doc.toModel(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid}, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email}, email)
}

func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb: checking user existence: %w", err)
	}
	return n > 0, nil
}

// UpdateProfile keeps the stored photo when profile.Photo is empty.
func (s *Store) UpdateProfile(ctx context.Context, id string, profile model.Profile) (*model.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"profile.firstName": profile.FirstName,
		"profile.lastName":  profile.LastName,
		"profile.bio":       profile.Bio,
		"updatedAt":         now(),
	}
	if profile.Photo != "" {
		set["profile.photo"] = profile.Photo
	}

	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongodb: updating profile %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	oid, err := objectID("user", id)
	if err != nil {
		return err
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": now()}},
	)
	if err != nil {
		return fmt.Errorf("mongodb: updating password for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// GetUserSummaries resolves ids with one $in query. Malformed or unknown
// ids are skipped; the result follows the input order.
func (s *Store) GetUserSummaries(ctx context.Context, ids []string) ([]model.UserSummary, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []model.UserSummary{}, nil
	}

	cursor, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"username": 1, "profile": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb: loading user summaries: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding user summaries: %w", err)
	}

	byID := make(map[string]model.UserSummary, len(docs))
	for _, d := range docs {
		byID[d.ID.Hex()] = model.UserSummary{ID: d.ID.Hex(), Username: d.Username, Profile: d.Profile}
	}

	summaries := make([]model.UserSummary, 0, len(byID))
	for _, id := range ids {
		if sum, ok := byID[id]; ok {
			summaries = append(summaries, sum)
		}
	}
	return summaries, nil
}

// authorSummaries loads the summaries for a batch of author ids, keyed by id.
func (s *Store) authorSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	summaries, err := s.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.UserSummary, len(summaries))
	for i := range summaries {
		byID[summaries[i].ID] = &summaries[i]
	}
	return byID, nil
}
