package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/middleware"
	"stockmate/internal/models"
	"stockmate/internal/repository"
)

type CategoryHandler struct {
	categories *repository.CategoryRepository
}

func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// POST /v1/categories (admin only)
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
		return
	}

	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	category.CreatedBy = models.AuditEntry{
		ID:     uuid.NewString(),
		User:   principal.ID,
		Name:   principal.Name,
		Action: models.AuditCreate,
		Date:   time.Now(),
	}

	if err := h.categories.Create(c.Request.Context(), &category); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GET /v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /v1/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category ID"})
		return
	}
	category, err := h.categories.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DELETE /v1/categories/:id (admin only, soft delete)
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category ID"})
		return
	}
	if err := h.categories.SoftDelete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "category deleted"})
}
