package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

const usersCollection = "users"

// CredentialStore implements ports.AccountRepository on a MongoDB collection.
// Password updates are single-document $set operations and therefore atomic
// per user.
type CredentialStore struct {
	coll *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"hashed_password"`
	IsActive       bool               `bson:"is_active"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique indexes that back domain.ErrConflict.
func (r *CredentialStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *CredentialStore) Create(ctx context.Context, user *domain.Credential) (*domain.Credential, error) {
	doc := mongoUser{
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt.Unix(),
		UpdatedAt:      user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *CredentialStore) FindHashedPassword(ctx context.Context, username string) (string, error) {
	var mu mongoUser
	opts := options.FindOne().SetProjection(bson.M{"hashed_password": 1})
	if err := r.coll.FindOne(ctx, bson.M{"username": username}, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("find password hash: %w", err)
	}
	return mu.HashedPassword, nil
}

func (r *CredentialStore) FindProfile(ctx context.Context, username string) (*domain.Credential, error) {
	var mu mongoUser
	opts := options.FindOne().SetProjection(bson.M{"hashed_password": 0})
	if err := r.coll.FindOne(ctx, bson.M{"username": username}, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.Credential{
		ID:        mu.ID.Hex(),
		Username:  mu.Username,
		Email:     mu.Email,
		IsActive:  mu.IsActive,
		CreatedAt: unixToTime(mu.CreatedAt),
		UpdatedAt: unixToTime(mu.UpdatedAt),
	}, nil
}

func (r *CredentialStore) SaveHashedPassword(ctx context.Context, username, hashedPassword string) error {
	update := bson.M{"$set": bson.M{
		"hashed_password": hashedPassword,
		"updated_at":      time.Now().UTC().Unix(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks connectivity for the readiness probe.
func (r *CredentialStore) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
