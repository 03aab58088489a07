package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{collection: collection}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.ID = primitive.NewObjectID()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// FindByID fetches one product. Soft-deleted products are excluded unless
// includeDeleted is set (audit reads).
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	if !includeDeleted {
		filter["is_deleted"] = false
	}

	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// scopeFilter builds the base listing filter. categories == nil means
// unrestricted (admin); an empty non-nil slice matches nothing.
func scopeFilter(categories []primitive.ObjectID) bson.M {
	filter := bson.M{"is_deleted": false}
	if categories != nil {
		filter["category_id"] = bson.M{"$in": categories}
	}
	return filter
}

// FindAll lists one page of products within the given category scope,
// newest first, and counts the total matches for the pagination envelope.
func (r *ProductRepository) FindAll(ctx context.Context, categories []primitive.ObjectID, page, pageSize int) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := scopeFilter(categories)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindLowStock lists non-deleted products whose quantity is at or below
// their low-stock threshold, within the given scope.
func (r *ProductRepository) FindLowStock(ctx context.Context, categories []primitive.ObjectID) ([]*models.Product, error) {
	filter := scopeFilter(categories)
	filter["$expr"] = bson.M{"$lte": bson.A{"$quantity", "$low_stock_threshold"}}
	return r.find(ctx, filter)
}

// FindExpiring lists non-deleted products whose expiry date falls inside
// [from, to], within the given scope.
func (r *ProductRepository) FindExpiring(ctx context.Context, categories []primitive.ObjectID, from, to time.Time) ([]*models.Product, error) {
	filter := scopeFilter(categories)
	filter["expiry_date"] = bson.M{"$gte": from, "$lte": to}
	return r.find(ctx, filter)
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ApplyDelta adjusts a product's quantity by delta as a single conditional
// update: the filter guards quantity >= -delta so a decrement can never push
// stock negative, no matter how the callers interleave. Returns the new
// quantity, apperr.InsufficientStock when the guard fails, or
// apperr.NotFound when the product is missing or soft-deleted.
func (r *ProductRepository) ApplyDelta(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "is_deleted": false}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated.Quantity, nil
	}
	if err != mongo.ErrNoDocuments {
		return 0, err
	}

	// The guard and a missing product are indistinguishable above.
	if _, ferr := r.FindByID(ctx, id, false); ferr != nil {
		return 0, ferr
	}
	return 0, apperr.New(apperr.InsufficientStock, "insufficient stock")
}

// SetQuantity overwrites the quantity as an absolute admin correction and
// records the audit entry alongside it.
func (r *ProductRepository) SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int64, audit models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "is_deleted": false}
	update := bson.M{
		"$set": bson.M{
			"quantity":   quantity,
			"updated_at": time.Now(),
		},
		"$push": bson.M{"edited_by": audit},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

// Update applies a field patch and appends the audit entry. Quantity is
// deliberately absent here; it moves only through ApplyDelta and
// SetQuantity.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, audit models.AuditEntry) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if patch.SKU != nil {
		set["sku"] = *patch.SKU
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.CategoryID != nil {
		set["category_id"] = *patch.CategoryID
	}
	if patch.VendorIDs != nil {
		set["vendor_ids"] = patch.VendorIDs
	}
	if patch.PriceCents != nil {
		set["price_cents"] = *patch.PriceCents
	}
	if patch.Currency != nil {
		set["currency"] = *patch.Currency
	}
	if patch.LowStockThreshold != nil {
		set["low_stock_threshold"] = *patch.LowStockThreshold
	}
	if patch.ExpiryDate != nil {
		set["expiry_date"] = *patch.ExpiryDate
	}
	if patch.Image != nil {
		set["image"] = patch.Image
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"edited_by": audit},
	}
	if patch.ClearExpiryDate {
		update["$unset"] = bson.M{"expiry_date": ""}
	}

	filter := bson.M{"_id": id, "is_deleted": false}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, err
	}
	return &updated, nil
}

// SoftDelete marks a product deleted and records who did it. The document
// stays readable for audit but drops out of every forward-looking query.
func (r *ProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, audit models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "is_deleted": false}
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_by": audit,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

// FindByVendor lists non-deleted products linked to a vendor.
func (r *ProductRepository) FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*models.Product, error) {
	return r.find(ctx, bson.M{"is_deleted": false, "vendor_ids": vendorID})
}
