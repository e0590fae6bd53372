package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

func TestCredentialStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find hashed password", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "auth.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "hashed_password", Value: "$2a$12$hash"},
		}))

		hash, err := store.FindHashedPassword(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, "$2a$12$hash", hash)
	})

	mt.Run("find hashed password missing user", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "auth.users", mtest.FirstBatch))

		_, err := store.FindHashedPassword(ctx, "ghost")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("find profile", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		oid := primitive.NewObjectID()
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "auth.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "is_active", Value: true},
			{Key: "created_at", Value: created.Unix()},
			{Key: "updated_at", Value: created.Unix()},
		}))

		profile, err := store.FindProfile(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), profile.ID)
		assert.Equal(mt, "alice", profile.Username)
		assert.True(mt, profile.IsActive)
		assert.Equal(mt, created, profile.CreatedAt)
		assert.Empty(mt, profile.HashedPassword)
	})

	mt.Run("save hashed password", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, store.SaveHashedPassword(ctx, "alice", "$2a$12$new"))
	})

	mt.Run("save hashed password missing user", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		assert.ErrorIs(mt, store.SaveHashedPassword(ctx, "ghost", "$2a$12$new"), domain.ErrNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		now := time.Now().UTC()
		user, err := store.Create(ctx, &domain.Credential{
			Username:       "alice",
			Email:          "alice@example.com",
			HashedPassword: "$2a$12$hash",
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		require.NoError(mt, err)
		assert.NotEmpty(mt, user.ID)
		assert.Equal(mt, "alice", user.Username)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		store := NewCredentialStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: auth.users index: username_1",
		}))

		_, err := store.Create(ctx, &domain.Credential{Username: "alice", Email: "alice@example.com"})
		assert.ErrorIs(mt, err, domain.ErrConflict)
	})
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertEvent(context.Background(), &domain.AuthEvent{
			ID:         "evt-1",
			Username:   "alice",
			Kind:       domain.EventLoginFailed,
			Reason:     "bad password",
			OccurredAt: time.Now(),
		})
		require.NoError(mt, err)
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
		}))

		err := repo.InsertEvent(context.Background(), &domain.AuthEvent{ID: "evt-2", Username: "alice"})
		assert.Error(mt, err)
	})
}
