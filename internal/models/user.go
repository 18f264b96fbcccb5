package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Defaults for optional profile fields on registration.
const (
	DefaultImage = "https://cdn-icons-png.flaticon.com/512/149/149071.png"
	DefaultBio   = "Bio not set yet."
	DefaultPhone = "+00 000 000 000"
)

// User represents a user account document.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"` // Never expose this to the client
	Image        string             `bson:"image" json:"image"`
	Bio          string             `bson:"bio" json:"bio"`
	Phone        string             `bson:"phone" json:"phone"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
