package database

// In-memory store implementations mirroring the Mongo stores' error
// contract, used by tests.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/avelara/keyauth-be/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemUserStore is an in-memory UserStore.
type MemUserStore struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by hex id
}

// NewMemUserStore creates an empty MemUserStore.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[string]models.User)}
}

// Insert stores a new user, assigning its id and timestamps.
func (s *MemUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s: %w", user.Email, apperr.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID.Hex()] = *user
	return nil
}

// FindByID retrieves a user by its hex id.
func (s *MemUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return user, nil
}

// FindByEmail retrieves a user by email, including the password hash.
func (s *MemUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
}

// UpdateProfile applies the given non-empty profile fields.
func (s *MemUserStore) UpdateProfile(_ context.Context, id string, name, image, bio, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if name != "" {
		user.Name = name
	}
	if image != "" {
		user.Image = image
	}
	if bio != "" {
		user.Bio = bio
	}
	if phone != "" {
		user.Phone = phone
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *MemUserStore) UpdatePassword(_ context.Context, id string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

// Remove drops a user, if present.
func (s *MemUserStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// MemResetTokenStore is an in-memory ResetTokenStore.
type MemResetTokenStore struct {
	mu     sync.Mutex
	tokens map[primitive.ObjectID]models.ResetToken
}

// NewMemResetTokenStore creates an empty MemResetTokenStore.
func NewMemResetTokenStore() *MemResetTokenStore {
	return &MemResetTokenStore{tokens: make(map[primitive.ObjectID]models.ResetToken)}
}

// Replace removes any tokens belonging to the user and inserts the new one.
func (s *MemResetTokenStore) Replace(_ context.Context, token *models.ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.UserID == token.UserID {
			delete(s.tokens, id)
		}
	}
	token.ID = primitive.NewObjectID()
	s.tokens[token.ID] = *token
	return nil
}

// FindLiveByHash retrieves the unexpired token with the given digest.
func (s *MemResetTokenStore) FindLiveByHash(_ context.Context, hash string, now time.Time) (models.ResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.TokenHash == hash && t.Live(now) {
			return t, nil
		}
	}
	return models.ResetToken{}, fmt.Errorf("reset token: %w", apperr.ErrInvalidResetToken)
}

// Delete removes a token by id.
func (s *MemResetTokenStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}

// DeleteExpired purges tokens whose expiry has passed.
func (s *MemResetTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, t := range s.tokens {
		if !t.Live(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

// ByUser returns all stored tokens for a user, live or not.
func (s *MemResetTokenStore) ByUser(userID primitive.ObjectID) []models.ResetToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ResetToken
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}
