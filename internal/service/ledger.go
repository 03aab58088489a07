package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/access"
	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

// Ledger records sales. A sale validates access, decrements stock through
// the catalog store's atomic delta, persists an immutable transaction, and
// triggers the notification engine for every touched product. Either every
// line item's stock change lands or none does.
type Ledger struct {
	products     ProductStore
	transactions TransactionStore
	notifier     *Notifier
	log          *slog.Logger
	now          func() time.Time
}

func NewLedger(products ProductStore, transactions TransactionStore, notifier *Notifier, log *slog.Logger) *Ledger {
	return &Ledger{
		products:     products,
		transactions: transactions,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// SaleLine is one requested (product, quantity) pair.
type SaleLine struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int64              `json:"quantity"`
}

// SaleInput is a proposed sale.
type SaleInput struct {
	Lines         []SaleLine      `json:"products"`
	Customer      models.Customer `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Notes         string          `json:"notes"`
}

// RecordSale validates and applies a sale.
//
// Steps 1-2 (validation, product resolution, authorization) fail fast with
// no side effects. Step 3 applies one atomic decrement per distinct product
// in ascending product-id order; a failure rolls back the deltas already
// applied in this sale. The transaction is persisted with the name and
// price snapshots taken at resolution time, and notifications are evaluated
// once per touched product against its post-decrement quantity.
func (l *Ledger) RecordSale(ctx context.Context, in SaleInput, principal access.Principal) (*models.Transaction, error) {
	if len(in.Lines) == 0 {
		return nil, apperr.ValidationField("products", "at least one line item is required")
	}
	if in.Customer.Name == "" {
		return nil, apperr.ValidationField("customer.name", "customer name is required")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperr.ValidationField("payment_method", "unknown payment method")
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = models.PaymentPaid
	}
	if !models.ValidPaymentStatus(in.PaymentStatus) {
		return nil, apperr.ValidationField("payment_status", "unknown payment status")
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, apperr.ValidationField("products", "line quantity must be positive")
		}
	}

	// Resolve every product once, snapshot name and price, and collapse the
	// per-product totals so each product gets exactly one decrement even when
	// it appears in multiple lines.
	resolved := make(map[primitive.ObjectID]*models.Product)
	deltas := make(map[primitive.ObjectID]int64)
	lines := make([]models.LineItem, 0, len(in.Lines))
	var total int64

	for _, line := range in.Lines {
		product, ok := resolved[line.ProductID]
		if !ok {
			var err error
			product, err = l.products.FindByID(ctx, line.ProductID, false)
			if err != nil {
				return nil, err
			}
			if !access.Allows(principal, product.CategoryID) {
				return nil, apperr.Newf(apperr.Authorization, "no permission to sell product %s", product.Name)
			}
			resolved[line.ProductID] = product
		}

		lineTotal := line.Quantity * product.PriceCents
		lines = append(lines, models.LineItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   line.Quantity,
			PriceCents: product.PriceCents,
			TotalCents: lineTotal,
		})
		deltas[line.ProductID] += line.Quantity
		total += lineTotal
	}

	// Fixed ascending-id order keeps concurrent sales from deadlocking on
	// each other when the store serializes per-document updates.
	order := make([]primitive.ObjectID, 0, len(deltas))
	for id := range deltas {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Hex() < order[j].Hex() })

	newQuantities := make(map[primitive.ObjectID]int64, len(order))
	applied := make([]primitive.ObjectID, 0, len(order))
	for _, id := range order {
		newQty, err := l.products.ApplyDelta(ctx, id, -deltas[id])
		if err != nil {
			l.rollback(ctx, applied, deltas)
			if apperr.IsKind(err, apperr.InsufficientStock) {
				return nil, apperr.Newf(apperr.InsufficientStock, "insufficient stock for product %s", resolved[id].Name)
			}
			return nil, err
		}
		newQuantities[id] = newQty
		applied = append(applied, id)
	}

	now := l.now()
	tx := &models.Transaction{
		Reference:     uuid.NewString(),
		Lines:         lines,
		Customer:      in.Customer,
		TotalCents:    total,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		Notes:         in.Notes,
		PerformedBy: models.PerformedBy{
			User: principal.ID,
			Name: principal.Name,
			Role: string(principal.Role),
		},
		TransactionDate: now,
	}
	if err := l.transactions.Insert(ctx, tx); err != nil {
		l.rollback(ctx, applied, deltas)
		return nil, err
	}

	// Notification failures never fail the sale.
	for _, id := range order {
		l.notifier.ProductSold(ctx, resolved[id], newQuantities[id], now)
	}

	return tx, nil
}

// rollback re-credits the deltas already applied in a failed sale, in
// reverse order. A positive delta cannot fail the stock guard; anything else
// that goes wrong here is logged loudly because it means drifted stock.
func (l *Ledger) rollback(ctx context.Context, applied []primitive.ObjectID, deltas map[primitive.ObjectID]int64) {
	for i := len(applied) - 1; i >= 0; i-- {
		id := applied[i]
		if _, err := l.products.ApplyDelta(ctx, id, deltas[id]); err != nil {
			l.log.Error("sale rollback failed, stock may have drifted",
				"product", id.Hex(), "delta", deltas[id], "error", err)
		}
	}
}

// Get fetches one transaction. Employees may only read sales they recorded.
func (l *Ledger) Get(ctx context.Context, id primitive.ObjectID, principal access.Principal) (*models.Transaction, error) {
	tx, err := l.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && tx.PerformedBy.User != principal.ID {
		return nil, apperr.New(apperr.Authorization, "no permission to view this transaction")
	}
	return tx, nil
}

// List returns transactions: all of them for admins, own sales for
// employees.
func (l *Ledger) List(ctx context.Context, principal access.Principal) ([]*models.Transaction, error) {
	if principal.IsAdmin() {
		return l.transactions.FindAll(ctx, nil)
	}
	id := principal.ID
	return l.transactions.FindAll(ctx, &id)
}
