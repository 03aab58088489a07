package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/models"
	"stockmate/internal/repository"
	"stockmate/internal/service"
)

type VendorHandler struct {
	vendors *repository.VendorRepository
	catalog *service.Catalog
}

func NewVendorHandler(vendors *repository.VendorRepository, catalog *service.Catalog) *VendorHandler {
	return &VendorHandler{vendors: vendors, catalog: catalog}
}

// POST /v1/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var vendor models.Vendor
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.vendors.Create(c.Request.Context(), &vendor); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// GET /v1/vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendors.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// GET /v1/vendors/:id
//
// The response embeds the vendor's linked products, matching the vendor
// detail view.
func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid vendor ID"})
		return
	}
	vendor, err := h.vendors.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	products, err := h.catalog.ListByVendor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "products": products})
}

// PATCH /v1/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid vendor ID"})
		return
	}

	var patch models.VendorPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vendor, err := h.vendors.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// DELETE /v1/vendors/:id
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid vendor ID"})
		return
	}
	if err := h.vendors.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "vendor deleted"})
}
