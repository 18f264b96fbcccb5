package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetToken is a pending password-reset grant for a single user.
// Only the SHA-256 digest of the emailed secret is stored; the raw
// secret exists nowhere but in the reset link itself.
type ResetToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	TokenHash string             `bson:"tokenHash"`
	CreatedAt time.Time          `bson:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt"`
}

// Live reports whether the token is still redeemable at the given instant.
func (t ResetToken) Live(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
