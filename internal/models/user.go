package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a stored account. Role and Categories feed the access policy;
// everything else is profile data.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name         string               `json:"name" bson:"name"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash string               `json:"-" bson:"password_hash"`
	Role         string               `json:"role" bson:"role"`
	Categories   []primitive.ObjectID `json:"categories,omitempty" bson:"categories,omitempty"`
	Phone        string               `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}
