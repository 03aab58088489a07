package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLowStockThreshold applies when a product is created without an
// explicit threshold.
const DefaultLowStockThreshold = 10

// AuditAction labels an entry in a product's audit trail.
type AuditAction string

const (
	AuditCreate     AuditAction = "create"
	AuditEdit       AuditAction = "edit"
	AuditCorrection AuditAction = "correction"
	AuditDelete     AuditAction = "delete"
)

// AuditEntry records who touched a product and when. Correction entries mark
// absolute quantity overrides, as opposed to sale-driven decrements which
// never appear here.
type AuditEntry struct {
	ID     string             `json:"id" bson:"id"`
	User   primitive.ObjectID `json:"user" bson:"user"`
	Name   string             `json:"name" bson:"name"`
	Action AuditAction        `json:"action" bson:"action"`
	Date   time.Time          `json:"date" bson:"date"`
}

// ImageMeta holds blob-store metadata for a product image. Only the returned
// URL and descriptive fields are stored, never the bytes.
type ImageMeta struct {
	FileName    string `json:"file_name" bson:"file_name"`
	URL         string `json:"url" bson:"url"`
	ContentType string `json:"content_type" bson:"content_type"`
	Size        int64  `json:"size" bson:"size"`
}

// Product represents a product in the catalog.
type Product struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	SKU               string               `json:"sku" bson:"sku"`
	Name              string               `json:"name" bson:"name"`
	Description       string               `json:"description,omitempty" bson:"description,omitempty"`
	CategoryID        primitive.ObjectID   `json:"category_id" bson:"category_id"`
	VendorIDs         []primitive.ObjectID `json:"vendor_ids,omitempty" bson:"vendor_ids,omitempty"`
	Quantity          int64                `json:"quantity" bson:"quantity"`
	PriceCents        int64                `json:"price_cents" bson:"price_cents"`
	Currency          string               `json:"currency" bson:"currency"`
	LowStockThreshold int64                `json:"low_stock_threshold" bson:"low_stock_threshold"`
	ExpiryDate        *time.Time           `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
	Image             *ImageMeta           `json:"image,omitempty" bson:"image,omitempty"`
	CreatedBy         AuditEntry           `json:"created_by" bson:"created_by"`
	EditedBy          []AuditEntry         `json:"edited_by,omitempty" bson:"edited_by,omitempty"`
	DeletedBy         *AuditEntry          `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
	IsDeleted         bool                 `json:"-" bson:"is_deleted"`
	CreatedAt         time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at" bson:"updated_at"`
}

// Threshold returns the configured low-stock threshold, falling back to the
// default when unset.
func (p *Product) Threshold() int64 {
	if p.LowStockThreshold > 0 {
		return p.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// ProductPatch represents the updatable fields of a product. Quantity is an
// absolute admin correction; sale-driven decrements go through the catalog's
// atomic delta path instead.
type ProductPatch struct {
	SKU               *string              `json:"sku,omitempty"`
	Name              *string              `json:"name,omitempty"`
	Description       *string              `json:"description,omitempty"`
	CategoryID        *primitive.ObjectID  `json:"category_id,omitempty"`
	VendorIDs         []primitive.ObjectID `json:"vendor_ids,omitempty"`
	Quantity          *int64               `json:"quantity,omitempty"`
	PriceCents        *int64               `json:"price_cents,omitempty"`
	Currency          *string              `json:"currency,omitempty"`
	LowStockThreshold *int64               `json:"low_stock_threshold,omitempty"`
	ExpiryDate        *time.Time           `json:"expiry_date,omitempty"`
	ClearExpiryDate   bool                 `json:"clear_expiry_date,omitempty"`
	Image             *ImageMeta           `json:"-"`
}

// IsZero reports whether the patch carries no changes at all.
func (p ProductPatch) IsZero() bool {
	return p.SKU == nil && p.Name == nil && p.Description == nil &&
		p.CategoryID == nil && p.VendorIDs == nil && p.Quantity == nil &&
		p.PriceCents == nil && p.Currency == nil && p.LowStockThreshold == nil &&
		p.ExpiryDate == nil && !p.ClearExpiryDate && p.Image == nil
}
