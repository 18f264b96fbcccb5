package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/avelara/keyauth-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResetTokenStore persists ResetToken documents in the reset_tokens
// collection.
type ResetTokenStore struct {
	coll *mongo.Collection
}

// NewResetTokenStore creates a ResetTokenStore on the given database.
func NewResetTokenStore(db *mongo.Database) *ResetTokenStore {
	return &ResetTokenStore{coll: db.Collection(resetTokensCollection)}
}

// Replace removes any tokens belonging to the user and inserts the new
// one, keeping at most one live token per user. A concurrent second
// request can at worst leave its own, most recent, token live.
func (s *ResetTokenStore) Replace(ctx context.Context, token *models.ResetToken) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"userId": token.UserID}); err != nil {
		return err
	}

	res, err := s.coll.InsertOne(ctx, token)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = id
	}
	return nil
}

// FindLiveByHash retrieves the token with the given digest, provided it
// has not expired. Absent and expired tokens are the same outcome.
func (s *ResetTokenStore) FindLiveByHash(ctx context.Context, hash string, now time.Time) (models.ResetToken, error) {
	var token models.ResetToken
	err := s.coll.FindOne(ctx, bson.M{
		"tokenHash": hash,
		"expiresAt": bson.M{"$gt": now},
	}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ResetToken{}, fmt.Errorf("reset token: %w", apperr.ErrInvalidResetToken)
	}
	if err != nil {
		return models.ResetToken{}, err
	}
	return token, nil
}

// Delete removes a consumed token so its secret cannot be redeemed twice.
func (s *ResetTokenStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteExpired purges tokens whose expiry has passed and returns how
// many were removed.
func (s *ResetTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
