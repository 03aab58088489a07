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

type TransactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(collection *mongo.Collection) *TransactionRepository {
	return &TransactionRepository{collection: collection}
}

// Insert persists a completed sale. Transactions are immutable: there is no
// update or delete path on this collection.
func (r *TransactionRepository) Insert(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

// FindByID fetches one transaction.
func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var tx models.Transaction
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "transaction not found")
		}
		return nil, err
	}
	return &tx, nil
}

// FindAll lists transactions newest first. A non-nil performedBy restricts
// the listing to sales recorded by that user (employee view).
func (r *TransactionRepository) FindAll(ctx context.Context, performedBy *primitive.ObjectID) ([]*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if performedBy != nil {
		filter["performed_by.user"] = *performedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	txs := make([]*models.Transaction, 0)
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Stats aggregates sales inside [from, to]: total amount, transaction count,
// top five products by quantity sold, and a payment-method breakdown.
func (r *TransactionRepository) Stats(ctx context.Context, from, to time.Time) (*models.SalesStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	match := bson.M{"transaction_date": bson.M{"$gte": from, "$lte": to}}
	stats := &models.SalesStats{
		TopProducts:     []models.ProductSales{},
		ByPaymentMethod: []models.PaymentMethodSales{},
	}

	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}
	stats.TotalTransactions = total

	// Total sales amount.
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_cents"}}}},
	})
	if err != nil {
		return nil, err
	}
	var totals []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		stats.TotalSalesCents = totals[0].Total
	}

	// Top selling products.
	cursor, err = r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$products"}},
		{{Key: "$group", Value: bson.M{
			"_id":                 "$products.product_id",
			"name":                bson.M{"$first": "$products.name"},
			"total_quantity":      bson.M{"$sum": "$products.quantity"},
			"total_revenue_cents": bson.M{"$sum": "$products.total_cents"},
		}}},
		{{Key: "$sort", Value: bson.M{"total_quantity": -1}}},
		{{Key: "$limit", Value: 5}},
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &stats.TopProducts); err != nil {
		return nil, err
	}

	// Sales by payment method.
	cursor, err = r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$payment_method",
			"count":       bson.M{"$sum": 1},
			"total_cents": bson.M{"$sum": "$total_cents"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &stats.ByPaymentMethod); err != nil {
		return nil, err
	}

	return stats, nil
}
