package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods accepted on a sale.
const (
	PaymentCash         = "Cash"
	PaymentCreditCard   = "Credit Card"
	PaymentDebitCard    = "Debit Card"
	PaymentBankTransfer = "Bank Transfer"
	PaymentOther        = "Other"
)

// Payment statuses.
const (
	PaymentPaid    = "Paid"
	PaymentPending = "Pending"
	PaymentFailed  = "Failed"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is one of the accepted statuses.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentFailed:
		return true
	}
	return false
}

// LineItem is one (product, quantity) pair within a sale. Name and price are
// snapshots captured at sale time so later catalog edits never change a
// recorded transaction.
type LineItem struct {
	ProductID  primitive.ObjectID `json:"product_id" bson:"product_id"`
	Name       string             `json:"name" bson:"name"`
	Quantity   int64              `json:"quantity" bson:"quantity"`
	PriceCents int64              `json:"price_cents" bson:"price_cents"`
	TotalCents int64              `json:"total_cents" bson:"total_cents"`
}

// Customer identifies who a sale was made to. Only the name is required.
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// PerformedBy snapshots the principal that recorded a sale, including the
// role held at the time.
type PerformedBy struct {
	User primitive.ObjectID `json:"user" bson:"user"`
	Name string             `json:"name" bson:"name"`
	Role string             `json:"role" bson:"role"`
}

// Transaction is an immutable record of a completed sale.
type Transaction struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Reference       string             `json:"reference" bson:"reference"`
	Lines           []LineItem         `json:"products" bson:"products"`
	Customer        Customer           `json:"customer" bson:"customer"`
	TotalCents      int64              `json:"total_cents" bson:"total_cents"`
	PaymentMethod   string             `json:"payment_method" bson:"payment_method"`
	PaymentStatus   string             `json:"payment_status" bson:"payment_status"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	PerformedBy     PerformedBy        `json:"performed_by" bson:"performed_by"`
	TransactionDate time.Time          `json:"transaction_date" bson:"transaction_date"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

// ProductSales is one row of the top-products rollup.
type ProductSales struct {
	ProductID         primitive.ObjectID `json:"product_id" bson:"_id"`
	Name              string             `json:"name" bson:"name"`
	TotalQuantity     int64              `json:"total_quantity" bson:"total_quantity"`
	TotalRevenueCents int64              `json:"total_revenue_cents" bson:"total_revenue_cents"`
}

// PaymentMethodSales is one row of the payment-method breakdown.
type PaymentMethodSales struct {
	Method     string `json:"method" bson:"_id"`
	Count      int64  `json:"count" bson:"count"`
	TotalCents int64  `json:"total_cents" bson:"total_cents"`
}

// SalesStats aggregates the ledger over a date range.
type SalesStats struct {
	TotalSalesCents   int64                `json:"total_sales_cents"`
	TotalTransactions int64                `json:"total_transactions"`
	TopProducts       []ProductSales       `json:"top_products"`
	ByPaymentMethod   []PaymentMethodSales `json:"by_payment_method"`
}
