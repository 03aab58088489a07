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

type VendorRepository struct {
	collection *mongo.Collection
}

func NewVendorRepository(collection *mongo.Collection) *VendorRepository {
	return &VendorRepository{collection: collection}
}

// Create inserts a vendor after checking for a duplicate name+contact pair.
func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"name": vendor.Name, "contact": vendor.Contact})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.New(apperr.Validation, "vendor already exists")
	}

	vendor.ID = primitive.NewObjectID()
	now := time.Now()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, vendor)
	return err
}

// FindByID fetches one vendor.
func (r *VendorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var vendor models.Vendor
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vendor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

// FindAll lists vendors by name.
func (r *VendorRepository) FindAll(ctx context.Context) ([]*models.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vendors := make([]*models.Vendor, 0)
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// Update applies a vendor patch.
func (r *VendorRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.VendorPatch) (*models.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Contact != nil {
		set["contact"] = *patch.Contact
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var vendor models.Vendor
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&vendor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

// Delete removes a vendor. Vendors hold no audit trail, so this is a hard
// delete as in the original reference data.
func (r *VendorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "vendor not found")
	}
	return nil
}

// Exists reports whether a vendor with this id exists.
func (r *VendorRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
