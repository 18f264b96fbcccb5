package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/models"
)

// Passwords shorter than this are rejected on registration, password
// change and password reset.
const minPasswordLen = 6

// UserStore defines the persistence operations user flows depend on.
// Implemented by database.UserStore; faked in tests.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, name, image, bio, phone string) error
	UpdatePassword(ctx context.Context, id string, hash string) error
}

// RegisterInput carries the fields accepted on signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    string
	Bio      string
	Phone    string
}

// ProfileUpdate carries the optional fields accepted on profile update.
// Empty fields are left untouched.
type ProfileUpdate struct {
	Name  string
	Image string
	Bio   string
	Phone string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (models.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
}

// UserService provides business logic for user management.
type UserService struct {
	users    UserStore
	verifier *auth.Verifier
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, verifier *auth.Verifier) *UserService {
	return &UserService{users: users, verifier: verifier}
}

// Register validates the input, hashes the password and stores the new
// user. The returned user never carries the hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		return models.User{}, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.User{}, fmt.Errorf("invalid email %q: %w", in.Email, apperr.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return models.User{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, apperr.ErrValidation)
	}

	hash, err := s.verifier.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Image:        defaultIfEmpty(in.Image, models.DefaultImage),
		Bio:          defaultIfEmpty(in.Bio, models.DefaultBio),
		Phone:        defaultIfEmpty(in.Phone, models.DefaultPhone),
	}

	if err := s.users.Insert(ctx, &user); err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. An unknown email reports
// NotFound and a wrong password InvalidCredentials, matching the API
// contract clients already depend on.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}

	if !s.verifier.CheckPassword(password, user.PasswordHash) {
		return models.User{}, fmt.Errorf("authentication failed: %w", apperr.ErrInvalidCredentials)
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetByID retrieves a single user by their id, hash stripped.
func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies the provided profile fields and returns the
// updated user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (models.User, error) {
	if err := s.users.UpdateProfile(ctx, id, strings.TrimSpace(in.Name), in.Image, in.Bio, in.Phone); err != nil {
		return models.User{}, err
	}
	return s.GetByID(ctx, id)
}

// ChangePassword verifies the current password, then hashes and sets a
// new password for a user.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, apperr.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.verifier.CheckPassword(oldPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", apperr.ErrInvalidCredentials)
	}

	hash, err := s.verifier.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
