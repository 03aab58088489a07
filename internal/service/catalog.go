package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/access"
	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

// Catalog owns product records and is the single owner of quantity
// mutation. Every operation takes the requesting principal explicitly and
// applies the category-scope policy before touching storage.
type Catalog struct {
	products   ProductStore
	categories CategoryRef
	vendors    VendorRef
	log        *slog.Logger
}

func NewCatalog(products ProductStore, categories CategoryRef, vendors VendorRef, log *slog.Logger) *Catalog {
	return &Catalog{products: products, categories: categories, vendors: vendors, log: log}
}

// CreateProductInput carries the fields accepted on product creation.
type CreateProductInput struct {
	SKU               string
	Name              string
	Description       string
	CategoryID        primitive.ObjectID
	VendorIDs         []primitive.ObjectID
	Quantity          int64
	PriceCents        int64
	Currency          string
	LowStockThreshold int64
	ExpiryDate        *time.Time
	Image             *models.ImageMeta
}

func auditEntry(principal access.Principal, action models.AuditAction) models.AuditEntry {
	return models.AuditEntry{
		ID:     uuid.NewString(),
		User:   principal.ID,
		Name:   principal.Name,
		Action: action,
		Date:   time.Now(),
	}
}

// Create validates and inserts a new product.
func (c *Catalog) Create(ctx context.Context, in CreateProductInput, principal access.Principal) (*models.Product, error) {
	if in.Name == "" {
		return nil, apperr.ValidationField("name", "name is required")
	}
	if in.CategoryID.IsZero() {
		return nil, apperr.ValidationField("category_id", "category is required")
	}
	if in.Quantity < 0 {
		return nil, apperr.ValidationField("quantity", "quantity cannot be negative")
	}
	if in.PriceCents <= 0 {
		return nil, apperr.ValidationField("price_cents", "price must be positive")
	}
	if in.LowStockThreshold < 0 {
		return nil, apperr.ValidationField("low_stock_threshold", "threshold cannot be negative")
	}

	if !access.Allows(principal, in.CategoryID) {
		return nil, apperr.New(apperr.Authorization, "no access to this category")
	}

	ok, err := c.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.NotFound, "category not found")
	}
	for _, vid := range in.VendorIDs {
		ok, err := c.vendors.Exists(ctx, vid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.NotFound, "vendor not found")
		}
	}

	threshold := in.LowStockThreshold
	if threshold == 0 {
		threshold = models.DefaultLowStockThreshold
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	product := &models.Product{
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		CategoryID:        in.CategoryID,
		VendorIDs:         in.VendorIDs,
		Quantity:          in.Quantity,
		PriceCents:        in.PriceCents,
		Currency:          currency,
		LowStockThreshold: threshold,
		ExpiryDate:        in.ExpiryDate,
		Image:             in.Image,
		CreatedBy:         auditEntry(principal, models.AuditCreate),
	}
	if err := c.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get fetches one product within the principal's scope. When audit is set
// and the principal is an admin, soft-deleted products are also returned.
func (c *Catalog) Get(ctx context.Context, id primitive.ObjectID, principal access.Principal, audit bool) (*models.Product, error) {
	includeDeleted := audit && principal.IsAdmin()
	product, err := c.products.FindByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if !access.Allows(principal, product.CategoryID) {
		return nil, apperr.New(apperr.Authorization, "no access to this product")
	}
	return product, nil
}

// scope translates the principal into a listing filter: nil for admins
// (unrestricted), the configured set for employees. An employee with no
// categories sees nothing.
func scope(principal access.Principal) []primitive.ObjectID {
	if principal.IsAdmin() {
		return nil
	}
	if principal.Categories == nil {
		return []primitive.ObjectID{}
	}
	return principal.Categories
}

// List returns one page of non-deleted products within scope, with the
// total count across all pages.
func (c *Catalog) List(ctx context.Context, principal access.Principal, page, pageSize int) ([]*models.Product, int64, error) {
	return c.products.FindAll(ctx, scope(principal), page, pageSize)
}

// ListLowStock returns in-scope products at or below their threshold. This
// is a read: it never creates notifications.
func (c *Catalog) ListLowStock(ctx context.Context, principal access.Principal) ([]*models.Product, error) {
	return c.products.FindLowStock(ctx, scope(principal))
}

// ListExpiringSoon returns in-scope products expiring within 30 days of now.
func (c *Catalog) ListExpiringSoon(ctx context.Context, principal access.Principal, now time.Time) ([]*models.Product, error) {
	return c.products.FindExpiring(ctx, scope(principal), now, now.Add(expiryWindow))
}

// ListByVendor returns the products linked to a vendor.
func (c *Catalog) ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*models.Product, error) {
	return c.products.FindByVendor(ctx, vendorID)
}

// Update applies a patch. The policy is re-checked against the current
// category and, when the patch moves the product, against the destination
// too. A quantity field is an absolute admin correction recorded with its
// own audit action; it never rides the sale-decrement path.
func (c *Catalog) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, principal access.Principal) (*models.Product, error) {
	if patch.IsZero() {
		return nil, apperr.New(apperr.Validation, "no fields to update")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, apperr.ValidationField("quantity", "quantity cannot be negative")
	}
	if patch.PriceCents != nil && *patch.PriceCents <= 0 {
		return nil, apperr.ValidationField("price_cents", "price must be positive")
	}

	product, err := c.products.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !access.Allows(principal, product.CategoryID) {
		return nil, apperr.New(apperr.Authorization, "no access to this product")
	}
	if patch.CategoryID != nil && *patch.CategoryID != product.CategoryID {
		if !access.Allows(principal, *patch.CategoryID) {
			return nil, apperr.New(apperr.Authorization, "no access to the destination category")
		}
		ok, err := c.categories.Exists(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.NotFound, "category not found")
		}
	}
	for _, vid := range patch.VendorIDs {
		ok, err := c.vendors.Exists(ctx, vid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.NotFound, "vendor not found")
		}
	}

	if patch.Quantity != nil {
		if err := c.products.SetQuantity(ctx, id, *patch.Quantity, auditEntry(principal, models.AuditCorrection)); err != nil {
			return nil, err
		}
		patch.Quantity = nil
		if patch.IsZero() {
			return c.products.FindByID(ctx, id, false)
		}
	}

	return c.products.Update(ctx, id, patch, auditEntry(principal, models.AuditEdit))
}

// SoftDelete marks a product deleted, keeping it readable for audit.
func (c *Catalog) SoftDelete(ctx context.Context, id primitive.ObjectID, principal access.Principal) error {
	product, err := c.products.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if !access.Allows(principal, product.CategoryID) {
		return apperr.New(apperr.Authorization, "no access to this product")
	}
	return c.products.SoftDelete(ctx, id, auditEntry(principal, models.AuditDelete))
}
