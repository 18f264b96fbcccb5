package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/database"
	"github.com/avelara/keyauth-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientURL = "http://localhost:3000"

func newResetFixture(t *testing.T) (*PasswordResetService, *UserService, *database.MemUserStore, *database.MemResetTokenStore, *fakeMailer) {
	t.Helper()
	users := database.NewMemUserStore()
	tokens := database.NewMemResetTokenStore()
	mail := &fakeMailer{}
	verifier := newTestVerifier(t)
	userSvc := NewUserService(users, verifier)
	resetSvc := NewPasswordResetService(users, tokens, verifier, mail, testClientURL, 5*time.Minute)
	return resetSvc, userSvc, users, tokens, mail
}

// secretFromMail digs the raw secret out of the emailed reset link.
func secretFromMail(t *testing.T, m sentMail) string {
	t.Helper()
	marker := testClientURL + "/resetpassword/"
	idx := strings.Index(m.body, marker)
	require.GreaterOrEqual(t, idx, 0, "mail body should contain a reset link")
	rest := m.body[idx+len(marker):]
	end := strings.IndexAny(rest, `"<`)
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}

func TestRequestReset(t *testing.T) {
	resetSvc, userSvc, _, tokens, mail := newResetFixture(t)
	user := registerAlice(t, userSvc)

	err := resetSvc.RequestReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	live := tokens.ByUser(user.ID)
	require.Len(t, live, 1)
	token := live[0]
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), token.ExpiresAt, 2*time.Second)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "alice@example.com", mail.sent[0].to)
	assert.Equal(t, "Password Reset Request", mail.sent[0].subject)

	secret := secretFromMail(t, mail.sent[0])
	assert.Equal(t, token.TokenHash, auth.HashResetSecret(secret), "only the digest is stored")
	assert.NotContains(t, token.TokenHash, secret)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	resetSvc, _, _, tokens, mail := newResetFixture(t)

	err := resetSvc.RequestReset(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, mail.sent)

	// Nothing was issued: a purge dated past any 5-minute expiry finds
	// no tokens to remove.
	deleted, err := tokens.DeleteExpired(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRequestResetReplacesPriorToken(t *testing.T) {
	resetSvc, userSvc, _, tokens, mail := newResetFixture(t)
	user := registerAlice(t, userSvc)

	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))
	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))

	live := tokens.ByUser(user.ID)
	require.Len(t, live, 1, "second issuance must invalidate the first")
	require.Len(t, mail.sent, 2)

	// The first link is dead, the second redeems.
	firstSecret := secretFromMail(t, mail.sent[0])
	secondSecret := secretFromMail(t, mail.sent[1])

	err := resetSvc.ResetPassword(context.Background(), firstSecret, "NewPassw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrInvalidResetToken))

	assert.NoError(t, resetSvc.ResetPassword(context.Background(), secondSecret, "NewPassw0rd!"))
}

func TestRequestResetMailFailureStillAcknowledged(t *testing.T) {
	resetSvc, userSvc, _, tokens, mail := newResetFixture(t)
	user := registerAlice(t, userSvc)
	mail.sendErr = fmt.Errorf("smtp relay down")

	err := resetSvc.RequestReset(context.Background(), "alice@example.com")
	assert.NoError(t, err, "delivery failure is not surfaced to the caller")
	assert.Len(t, tokens.ByUser(user.ID), 1)
}

func TestResetPassword(t *testing.T) {
	resetSvc, userSvc, _, tokens, mail := newResetFixture(t)
	user := registerAlice(t, userSvc)

	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))
	secret := secretFromMail(t, mail.sent[0])

	require.NoError(t, resetSvc.ResetPassword(context.Background(), secret, "NewPassw0rd!"))

	_, err := userSvc.Authenticate(context.Background(), "alice@example.com", "NewPassw0rd!")
	assert.NoError(t, err)
	_, err = userSvc.Authenticate(context.Background(), "alice@example.com", "Passw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))

	assert.Empty(t, tokens.ByUser(user.ID), "consumed token must be deleted")
}

func TestResetPasswordSingleUse(t *testing.T) {
	resetSvc, userSvc, _, _, mail := newResetFixture(t)
	registerAlice(t, userSvc)

	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))
	secret := secretFromMail(t, mail.sent[0])

	require.NoError(t, resetSvc.ResetPassword(context.Background(), secret, "NewPassw0rd!"))

	err := resetSvc.ResetPassword(context.Background(), secret, "OtherPassw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrInvalidResetToken))
}

func TestResetPasswordUnknownSecret(t *testing.T) {
	resetSvc, userSvc, _, _, _ := newResetFixture(t)
	registerAlice(t, userSvc)

	err := resetSvc.ResetPassword(context.Background(), "no-such-secret", "NewPassw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrInvalidResetToken))
}

func TestResetPasswordExpiredToken(t *testing.T) {
	users := database.NewMemUserStore()
	tokens := database.NewMemResetTokenStore()
	verifier := newTestVerifier(t)
	userSvc := NewUserService(users, verifier)
	resetSvc := NewPasswordResetService(users, tokens, verifier, &fakeMailer{}, testClientURL, 5*time.Minute)
	user := registerAlice(t, userSvc)

	raw, digest, err := auth.NewResetSecret()
	require.NoError(t, err)
	require.NoError(t, tokens.Replace(context.Background(), &models.ResetToken{
		UserID:    user.ID,
		TokenHash: digest,
		CreatedAt: time.Now().Add(-10 * time.Minute),
		ExpiresAt: time.Now().Add(-5 * time.Minute),
	}))

	err = resetSvc.ResetPassword(context.Background(), raw, "NewPassw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrInvalidResetToken))
}

func TestResetPasswordOwnerVanished(t *testing.T) {
	resetSvc, userSvc, users, _, mail := newResetFixture(t)
	user := registerAlice(t, userSvc)

	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))
	secret := secretFromMail(t, mail.sent[0])

	users.Remove(user.ID.Hex())

	err := resetSvc.ResetPassword(context.Background(), secret, "NewPassw0rd!")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestResetPasswordTooShort(t *testing.T) {
	resetSvc, userSvc, _, _, mail := newResetFixture(t)
	registerAlice(t, userSvc)

	require.NoError(t, resetSvc.RequestReset(context.Background(), "alice@example.com"))
	secret := secretFromMail(t, mail.sent[0])

	err := resetSvc.ResetPassword(context.Background(), secret, "tiny")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// A validation failure must not burn the token.
	assert.NoError(t, resetSvc.ResetPassword(context.Background(), secret, "NewPassw0rd!"))
}
