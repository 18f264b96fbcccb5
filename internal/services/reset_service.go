package services

import (
	"context"
	"fmt"
	"time"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/mailer"
	"github.com/avelara/keyauth-be/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetTokenStore defines the persistence operations the reset flow
// depends on. Implemented by database.ResetTokenStore; faked in tests.
type ResetTokenStore interface {
	Replace(ctx context.Context, token *models.ResetToken) error
	FindLiveByHash(ctx context.Context, hash string, now time.Time) (models.ResetToken, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetProvider defines the interface for the password-reset flow.
type PasswordResetProvider interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawSecret, newPassword string) error
}

// PasswordResetService issues single-use, time-limited reset tokens and
// exchanges them for password changes.
type PasswordResetService struct {
	users    UserStore
	tokens   ResetTokenStore
	verifier *auth.Verifier
	mail     mailer.Mailer

	clientURL string
	ttl       time.Duration
}

// NewPasswordResetService creates a new PasswordResetService. clientURL
// is the frontend base used to build reset links; ttl is how long an
// issued token stays redeemable.
func NewPasswordResetService(users UserStore, tokens ResetTokenStore, verifier *auth.Verifier, mail mailer.Mailer, clientURL string, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		users:     users,
		tokens:    tokens,
		verifier:  verifier,
		mail:      mail,
		clientURL: clientURL,
		ttl:       ttl,
	}
}

// RequestReset issues a fresh reset token for the user registered under
// email and mails them the redemption link. Issuing replaces any earlier
// token, so at most one is ever live per user. Delivery failures are
// logged but not surfaced; the caller gets the same acknowledgment
// either way.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, digest, err := auth.NewResetSecret()
	if err != nil {
		return err
	}

	now := time.Now()
	token := models.ResetToken{
		UserID:    user.ID,
		TokenHash: digest,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Replace(ctx, &token); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.clientURL, raw)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Click the link below to reset your password. It is valid for %.0f minutes.</p><p><a href=%q>%s</a></p><p>If you did not request a reset, you can ignore this email.</p>",
		user.Name, s.ttl.Minutes(), resetURL, resetURL,
	)
	if err := s.mail.Send(user.Email, "Password Reset Request", body); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to send password reset email")
	}
	return nil
}

// ResetPassword redeems a raw reset secret for a password change. The
// token is deleted once the new password is stored, so a secret can be
// used at most once.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawSecret, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, apperr.ErrValidation)
	}

	token, err := s.tokens.FindLiveByHash(ctx, auth.HashResetSecret(rawSecret), time.Now())
	if err != nil {
		return err
	}

	// The owner can vanish between issuance and redemption.
	user, err := s.users.FindByID(ctx, token.UserID.Hex())
	if err != nil {
		return err
	}

	hash, err := s.verifier.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID.Hex(), hash); err != nil {
		return err
	}

	// Delete after the password write: a failed write must not burn the
	// token, a succeeded one must.
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Failed to delete consumed reset token")
	}
	return nil
}
