package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/mailer"
	"stockmate/internal/models"
)

// expiryWindow is how far ahead the expiring-soon condition looks.
const expiryWindow = 30 * 24 * time.Hour

// Condition is an alert condition derived from product state.
type Condition string

const (
	ConditionLowStock     Condition = "low_stock"
	ConditionOutOfStock   Condition = "out_of_stock"
	ConditionExpiringSoon Condition = "expiring_soon"
)

// CheckLowStock reports whether the product sits at or below its low-stock
// threshold.
func CheckLowStock(p *models.Product) bool {
	return p.Quantity <= p.Threshold()
}

// CheckExpiringSoon reports whether the product expires within the window.
func CheckExpiringSoon(p *models.Product, now time.Time) bool {
	return p.ExpiryDate != nil && !p.ExpiryDate.After(now.Add(expiryWindow))
}

// Notifier derives alert conditions from catalog state changes, persists
// notification records, and sends best-effort email through a background
// worker. Notification creation is decoupled from delivery so the audit
// trail survives even if every email attempt fails.
type Notifier struct {
	notifications NotificationStore
	sender        mailer.Sender
	recipients    []string
	log           *slog.Logger

	queue chan mailer.Message
	wg    sync.WaitGroup
	once  sync.Once
}

func NewNotifier(notifications NotificationStore, sender mailer.Sender, recipients []string, log *slog.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		sender:        sender,
		recipients:    recipients,
		log:           log,
		queue:         make(chan mailer.Message, 64),
	}
}

// Start launches the email worker. Safe to call once; Close drains the
// queue and waits for it.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.worker()
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for m := range n.queue {
		if err := n.sender.Send(m); err != nil {
			n.log.Warn("notification email failed", "subject", m.Subject, "error", err)
		}
	}
}

// Close stops accepting email work and waits for in-flight sends.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.queue) })
	n.wg.Wait()
}

func message(p *models.Product, condition Condition, quantity int64) string {
	switch condition {
	case ConditionOutOfStock:
		return fmt.Sprintf("Product %s is out of stock. Please restock it.", p.Name)
	case ConditionLowStock:
		return fmt.Sprintf("Product %s is low on stock (%d left, threshold %d).", p.Name, quantity, p.Threshold())
	case ConditionExpiringSoon:
		return fmt.Sprintf("Product %s expires on %s.", p.Name, p.ExpiryDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("Product %s needs attention.", p.Name)
}

// Notify creates the notification record for a (product, condition) pair and
// enqueues a best-effort email to the configured recipients. The record is
// the source of truth; email failure is logged by the worker and never
// surfaces to the caller.
func (n *Notifier) Notify(ctx context.Context, p *models.Product, condition Condition, quantity int64) (*models.Notification, error) {
	record := &models.Notification{
		Message:   message(p, condition, quantity),
		ProductID: p.ID,
		CreatedAt: time.Now(),
	}
	if err := n.notifications.Insert(ctx, record); err != nil {
		return nil, err
	}

	if len(n.recipients) > 0 {
		m := mailer.Message{
			To:      n.recipients,
			Subject: fmt.Sprintf("Inventory alert: %s", p.Name),
			Body:    record.Message,
		}
		select {
		case n.queue <- m:
		default:
			n.log.Warn("email queue full, dropping alert email", "product", p.ID.Hex())
		}
	}

	return record, nil
}

// ProductSold evaluates one touched product after a sale and emits at most
// one notification per condition for this sale event. quantity is the
// post-decrement stock level returned by the atomic delta.
func (n *Notifier) ProductSold(ctx context.Context, p *models.Product, quantity int64, now time.Time) {
	post := *p
	post.Quantity = quantity

	if CheckLowStock(&post) {
		condition := ConditionLowStock
		if quantity == 0 {
			condition = ConditionOutOfStock
		}
		if _, err := n.Notify(ctx, p, condition, quantity); err != nil {
			n.log.Error("could not record stock notification", "product", p.ID.Hex(), "error", err)
		}
	}
	if CheckExpiringSoon(&post, now) {
		if _, err := n.Notify(ctx, p, ConditionExpiringSoon, quantity); err != nil {
			n.log.Error("could not record expiry notification", "product", p.ID.Hex(), "error", err)
		}
	}
}

// List returns all pending notifications, newest first.
func (n *Notifier) List(ctx context.Context) ([]*models.Notification, error) {
	return n.notifications.FindAll(ctx)
}

// Acknowledge deletes a notification.
func (n *Notifier) Acknowledge(ctx context.Context, id primitive.ObjectID) error {
	return n.notifications.Delete(ctx, id)
}
