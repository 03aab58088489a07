package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/middleware"
	"stockmate/internal/service"
)

type SaleHandler struct {
	ledger   *service.Ledger
	stats    *service.Stats
	products *ProductHandler
}

func NewSaleHandler(ledger *service.Ledger, stats *service.Stats, products *ProductHandler) *SaleHandler {
	return &SaleHandler{ledger: ledger, stats: stats, products: products}
}

// POST /v1/sales
func (h *SaleHandler) RecordSale(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var in service.SaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	tx, err := h.ledger.RecordSale(c.Request.Context(), in, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	// Quantities changed; cached product reads are stale now.
	h.products.InvalidateCache()
	c.JSON(http.StatusCreated, tx)
}

// GET /v1/sales
func (h *SaleHandler) ListSales(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	txs, err := h.ledger.List(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GET /v1/sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transaction ID"})
		return
	}

	tx, err := h.ledger.Get(c.Request.Context(), id, principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// GET /v1/sales/stats
func (h *SaleHandler) SalesStats(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var from, to time.Time
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid start date, use YYYY-MM-DD"})
			return
		}
		from = t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid end date, use YYYY-MM-DD"})
			return
		}
		to = t
	}

	stats, err := h.stats.Sales(c.Request.Context(), principal, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
