package service

import (
	"context"
	"time"

	"stockmate/internal/access"
	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

// statsDefaultWindow is the reporting range when the caller gives none.
const statsDefaultWindow = 30 * 24 * time.Hour

// Stats serves read-only rollups over the ledger. Admin only.
type Stats struct {
	transactions TransactionStore
}

func NewStats(transactions TransactionStore) *Stats {
	return &Stats{transactions: transactions}
}

// Sales aggregates the ledger between from and to. Zero bounds default to
// the last 30 days.
func (s *Stats) Sales(ctx context.Context, principal access.Principal, from, to time.Time) (*models.SalesStats, error) {
	if !principal.IsAdmin() {
		return nil, apperr.New(apperr.Authorization, "admin access required for sales statistics")
	}
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-statsDefaultWindow)
	}
	if from.After(to) {
		return nil, apperr.ValidationField("start", "start date is after end date")
	}
	return s.transactions.Stats(ctx, from, to)
}
