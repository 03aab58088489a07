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

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(collection *mongo.Collection) *CategoryRepository {
	return &CategoryRepository{collection: collection}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	category.ID = primitive.NewObjectID()
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.IsDeleted = false

	_, err := r.collection.InsertOne(ctx, category)
	return err
}

// FindByID fetches one non-deleted category.
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var category models.Category
	filter := bson.M{"_id": id, "is_deleted": false}
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "category not found")
		}
		return nil, err
	}
	return &category, nil
}

// FindAll lists non-deleted categories by name.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_deleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]*models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Exists reports whether a non-deleted category with this id exists. This is
// the reference-store contract product validation consumes.
func (r *CategoryRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id, "is_deleted": false})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks a category deleted.
func (r *CategoryRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "is_deleted": false}
	update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "category not found")
	}
	return nil
}
