// Package service implements the inventory consistency core: the product
// catalog, the transaction ledger, the notification engine and the stats
// rollups. Storage is abstracted behind small interfaces so the core's
// invariants can be exercised without a database.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/models"
)

// ProductStore is the catalog's persistence contract. ApplyDelta must be
// atomic per product: a decrement is a single conditional write that either
// lands with quantity >= 0 or fails with no effect.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (*models.Product, error)
	FindAll(ctx context.Context, categories []primitive.ObjectID, page, pageSize int) ([]*models.Product, int64, error)
	FindLowStock(ctx context.Context, categories []primitive.ObjectID) ([]*models.Product, error)
	FindExpiring(ctx context.Context, categories []primitive.ObjectID, from, to time.Time) ([]*models.Product, error)
	FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*models.Product, error)
	ApplyDelta(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error)
	SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int64, audit models.AuditEntry) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, audit models.AuditEntry) (*models.Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, audit models.AuditEntry) error
}

// TransactionStore persists immutable sale records and serves rollups.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	FindAll(ctx context.Context, performedBy *primitive.ObjectID) ([]*models.Transaction, error)
	Stats(ctx context.Context, from, to time.Time) (*models.SalesStats, error)
}

// NotificationStore persists alert records.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindAll(ctx context.Context) ([]*models.Notification, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CategoryRef is the reference-store contract used to validate category
// links on products.
type CategoryRef interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// VendorRef is the reference-store contract used to validate vendor links.
type VendorRef interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}
