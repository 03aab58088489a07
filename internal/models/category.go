package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is reference data products point at. Identifiers are opaque and
// stable; products store the id, never the name.
type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" binding:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedBy   AuditEntry         `json:"created_by" bson:"created_by"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
