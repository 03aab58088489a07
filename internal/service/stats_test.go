package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

func TestSalesStatsAdminOnly(t *testing.T) {
	stats := NewStats(newMemTransactions())

	_, err := stats.Sales(context.Background(), employeePrincipal(), time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}

func TestSalesStatsRejectsInvertedRange(t *testing.T) {
	stats := NewStats(newMemTransactions())
	now := time.Now()

	_, err := stats.Sales(context.Background(), adminPrincipal(), now, now.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestSalesStatsDefaultWindow(t *testing.T) {
	txs := newMemTransactions()
	now := time.Now()
	insert := func(age time.Duration, cents int64, method string) {
		require.NoError(t, txs.Insert(context.Background(), &models.Transaction{
			TotalCents:      cents,
			PaymentMethod:   method,
			PerformedBy:     models.PerformedBy{User: primitive.NewObjectID()},
			TransactionDate: now.Add(-age),
		}))
	}
	insert(24*time.Hour, 1000, models.PaymentCash)
	insert(5*24*time.Hour, 2500, models.PaymentCreditCard)
	insert(60*24*time.Hour, 9999, models.PaymentCash)

	got, err := NewStats(txs).Sales(context.Background(), adminPrincipal(), time.Time{}, time.Time{})
	require.NoError(t, err)

	// The 60-day-old sale falls outside the default 30-day window.
	assert.Equal(t, int64(2), got.TotalTransactions)
	assert.Equal(t, int64(3500), got.TotalSalesCents)
}

func TestSalesStatsExplicitRange(t *testing.T) {
	txs := newMemTransactions()
	now := time.Now()
	require.NoError(t, txs.Insert(context.Background(), &models.Transaction{
		TotalCents:      1000,
		PaymentMethod:   models.PaymentCash,
		TransactionDate: now.Add(-10 * 24 * time.Hour),
	}))

	got, err := NewStats(txs).Sales(context.Background(), adminPrincipal(),
		now.Add(-5*24*time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, got.TotalTransactions)
}
