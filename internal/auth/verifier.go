package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// resetSecretBytes is the entropy of a raw reset secret. The emailed
// secret is the hex encoding, twice as many digits.
const resetSecretBytes = 32

// Config holds the process-wide signing secret and token lifetime,
// loaded once at startup. It is injected rather than read from the
// environment so tests can construct verifiers freely.
type Config struct {
	Secret     []byte
	SessionTTL time.Duration
}

// Claims defines the session token claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier hashes and compares passwords and issues and validates
// session tokens. Safe for concurrent use.
type Verifier struct {
	cfg Config
}

// NewVerifier creates a Verifier. It panics on an empty secret: running
// with a guessable signing key is strictly worse than not starting.
func NewVerifier(cfg Config) *Verifier {
	if len(cfg.Secret) == 0 {
		panic("auth: signing secret must not be empty")
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &Verifier{cfg: cfg}
}

// HashPassword returns the salted bcrypt hash of a raw password.
// Each call salts independently, so equal inputs yield distinct hashes.
func (v *Verifier) HashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether raw matches the stored hash. A malformed
// hash is simply a non-match; comparison timing does not depend on how
// far the inputs agree.
func (v *Verifier) CheckPassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// IssueSessionToken creates a signed session token for the given user id.
func (v *Verifier) IssueSessionToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.cfg.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.cfg.Secret)
}

// VerifySessionToken checks signature and expiry and returns the embedded
// user id. Every failure mode collapses to apperr.ErrUnauthorized; the
// cause is logged server-side only.
func (v *Verifier) VerifySessionToken(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.cfg.Secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		log.Debug().Err(err).Msg("Session token rejected")
		return "", apperr.ErrUnauthorized
	}
	return claims.UserID, nil
}

// NewResetSecret generates a random reset secret and the SHA-256 digest
// under which it is persisted. Only the raw value is ever emailed; only
// the digest is ever stored.
func NewResetSecret() (raw, digest string, err error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset secret: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetSecret(raw), nil
}

// HashResetSecret recomputes the storage digest of a raw reset secret.
func HashResetSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
