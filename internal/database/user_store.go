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

// UserStore persists User documents in the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a UserStore on the given database.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// Insert stores a new user and fills in its assigned id.
// A duplicate email reports apperr.ErrConflict.
func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, apperr.ErrConflict)
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// FindByID retrieves a user by its hex id.
func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}

	var user models.User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindByEmail retrieves a user by email, including the password hash.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile applies the given non-empty profile fields. Email and
// password are deliberately not reachable through this path.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, name, image, bio, phone string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}

	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if image != "" {
		set["image"] = image
	}
	if bio != "" {
		set["bio"] = bio
	}
	if phone != "" {
		set["phone"] = phone
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id string, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"password": hash, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
