package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/access"
	"stockmate/internal/apperr"
	"stockmate/internal/blob"
	"stockmate/internal/cache"
	"stockmate/internal/middleware"
	"stockmate/internal/models"
	"stockmate/internal/service"
)

const (
	productCachePrefix = "products:"
	getCacheTTL        = 5 * time.Minute
	listCacheTTL       = 2 * time.Minute

	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginationParams reads and clamps the page/page_size query parameters.
func paginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

type ProductHandler struct {
	catalog *service.Catalog
	cache   *cache.Cache
	blobs   blob.Store
}

func NewProductHandler(catalog *service.Catalog, c *cache.Cache, blobs blob.Store) *ProductHandler {
	return &ProductHandler{catalog: catalog, cache: c, blobs: blobs}
}

type createProductRequest struct {
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	CategoryID        string   `json:"category_id"`
	VendorIDs         []string `json:"vendor_ids"`
	Quantity          int64    `json:"quantity"`
	PriceCents        int64    `json:"price_cents"`
	Currency          string   `json:"currency"`
	LowStockThreshold int64    `json:"low_stock_threshold"`
	ExpiryDate        string   `json:"expiry_date"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.ValidationField("expiry_date", "invalid date, use YYYY-MM-DD")
}

func parseObjectIDs(values []string, field string) ([]primitive.ObjectID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v))
		if err != nil {
			return nil, apperr.ValidationField(field, "invalid id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r createProductRequest) toInput() (service.CreateProductInput, error) {
	categoryID, err := primitive.ObjectIDFromHex(r.CategoryID)
	if err != nil {
		return service.CreateProductInput{}, apperr.ValidationField("category_id", "invalid category id")
	}
	vendorIDs, err := parseObjectIDs(r.VendorIDs, "vendor_ids")
	if err != nil {
		return service.CreateProductInput{}, err
	}
	expiry, err := parseDate(r.ExpiryDate)
	if err != nil {
		return service.CreateProductInput{}, err
	}
	return service.CreateProductInput{
		SKU:               r.SKU,
		Name:              r.Name,
		Description:       r.Description,
		CategoryID:        categoryID,
		VendorIDs:         vendorIDs,
		Quantity:          r.Quantity,
		PriceCents:        r.PriceCents,
		Currency:          r.Currency,
		LowStockThreshold: r.LowStockThreshold,
		ExpiryDate:        expiry,
	}, nil
}

// createRequestFromForm reads a multipart product form. The image file, if
// any, goes to the blob store and only its metadata comes back.
func (h *ProductHandler) createRequestFromForm(c *gin.Context) (createProductRequest, *models.ImageMeta, error) {
	formInt := func(key string) int64 {
		n, _ := strconv.ParseInt(c.PostForm(key), 10, 64)
		return n
	}
	req := createProductRequest{
		SKU:               c.PostForm("sku"),
		Name:              c.PostForm("name"),
		Description:       c.PostForm("description"),
		CategoryID:        c.PostForm("category_id"),
		Quantity:          formInt("quantity"),
		PriceCents:        formInt("price_cents"),
		Currency:          c.PostForm("currency"),
		LowStockThreshold: formInt("low_stock_threshold"),
		ExpiryDate:        c.PostForm("expiry_date"),
	}
	if v := c.PostForm("vendor_ids"); v != "" {
		req.VendorIDs = strings.Split(v, ",")
	}

	image, err := h.imageFromForm(c)
	if err != nil {
		return req, nil, err
	}
	return req, image, nil
}

func (h *ProductHandler) imageFromForm(c *gin.Context) (*models.ImageMeta, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil // no image attached
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not read image", err)
	}
	defer f.Close()

	url, size, err := h.blobs.Store(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "image could not be uploaded", err)
	}
	return &models.ImageMeta{
		FileName:    fileHeader.Filename,
		URL:         url,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        size,
	}, nil
}

// POST /v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var req createProductRequest
	var image *models.ImageMeta
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var err error
		req, image, err = h.createRequestFromForm(c)
		if err != nil {
			writeError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}
	in.Image = image

	product, err := h.catalog.Create(c.Request.Context(), in, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cache.DeleteByPrefix(productCachePrefix)
	c.JSON(http.StatusCreated, product)
}

// GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product ID"})
		return
	}
	audit := c.Query("audit") == "true"

	cacheKey := fmt.Sprintf("%sget:%s", productCachePrefix, id.Hex())
	if !audit {
		if cached, found := h.cache.Get(cacheKey); found {
			product := cached.(*models.Product)
			if !access.Allows(principal, product.CategoryID) {
				c.JSON(http.StatusForbidden, ErrorResponse{Error: "no access to this product"})
				return
			}
			c.JSON(http.StatusOK, product)
			return
		}
	}

	product, err := h.catalog.Get(c.Request.Context(), id, principal, audit)
	if err != nil {
		writeError(c, err)
		return
	}
	if !audit {
		h.cache.Set(cacheKey, product, getCacheTTL)
	}
	c.JSON(http.StatusOK, product)
}

// GET /v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	page, pageSize := paginationParams(c)

	cacheKey := fmt.Sprintf("%slist:%s:p%d_s%d", productCachePrefix, principal.ID.Hex(), page, pageSize)
	if cached, found := h.cache.Get(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := h.catalog.List(c.Request.Context(), principal, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	response := gin.H{
		"data":        products,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	}
	h.cache.Set(cacheKey, response, listCacheTTL)
	c.JSON(http.StatusOK, response)
}

// GET /v1/products/low-stock
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	products, err := h.catalog.ListLowStock(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /v1/products/expiring
func (h *ProductHandler) ListExpiring(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	products, err := h.catalog.ListExpiringSoon(c.Request.Context(), principal, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type updateProductRequest struct {
	SKU               *string  `json:"sku"`
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	CategoryID        *string  `json:"category_id"`
	VendorIDs         []string `json:"vendor_ids"`
	Quantity          *int64   `json:"quantity"`
	PriceCents        *int64   `json:"price_cents"`
	Currency          *string  `json:"currency"`
	LowStockThreshold *int64   `json:"low_stock_threshold"`
	ExpiryDate        *string  `json:"expiry_date"`
}

func (r updateProductRequest) toPatch() (models.ProductPatch, error) {
	patch := models.ProductPatch{
		SKU:               r.SKU,
		Name:              r.Name,
		Description:       r.Description,
		Quantity:          r.Quantity,
		PriceCents:        r.PriceCents,
		Currency:          r.Currency,
		LowStockThreshold: r.LowStockThreshold,
	}
	if r.CategoryID != nil {
		id, err := primitive.ObjectIDFromHex(*r.CategoryID)
		if err != nil {
			return patch, apperr.ValidationField("category_id", "invalid category id")
		}
		patch.CategoryID = &id
	}
	vendorIDs, err := parseObjectIDs(r.VendorIDs, "vendor_ids")
	if err != nil {
		return patch, err
	}
	patch.VendorIDs = vendorIDs
	if r.ExpiryDate != nil {
		if *r.ExpiryDate == "" {
			// An explicit empty date clears the expiry and stops expiry alerts.
			patch.ClearExpiryDate = true
		} else {
			expiry, err := parseDate(*r.ExpiryDate)
			if err != nil {
				return patch, err
			}
			patch.ExpiryDate = expiry
		}
	}
	return patch, nil
}

// PATCH /v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product ID"})
		return
	}

	var req updateProductRequest
	var image *models.ImageMeta
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		image, err = h.imageFromForm(c)
		if err != nil {
			writeError(c, err)
			return
		}
		formStr := func(key string) *string {
			if v, ok := c.GetPostForm(key); ok {
				return &v
			}
			return nil
		}
		formInt := func(key string) *int64 {
			if v, ok := c.GetPostForm(key); ok {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					return &n
				}
			}
			return nil
		}
		req = updateProductRequest{
			SKU:               formStr("sku"),
			Name:              formStr("name"),
			Description:       formStr("description"),
			CategoryID:        formStr("category_id"),
			Quantity:          formInt("quantity"),
			PriceCents:        formInt("price_cents"),
			Currency:          formStr("currency"),
			LowStockThreshold: formInt("low_stock_threshold"),
			ExpiryDate:        formStr("expiry_date"),
		}
		if v, ok := c.GetPostForm("vendor_ids"); ok && v != "" {
			req.VendorIDs = strings.Split(v, ",")
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(c, err)
		return
	}
	patch.Image = image

	product, err := h.catalog.Update(c.Request.Context(), id, patch, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cache.DeleteByPrefix(productCachePrefix)
	c.JSON(http.StatusOK, product)
}

// DELETE /v1/products/:id (soft delete)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product ID"})
		return
	}

	if err := h.catalog.SoftDelete(c.Request.Context(), id, principal); err != nil {
		writeError(c, err)
		return
	}

	h.cache.DeleteByPrefix(productCachePrefix)
	c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

// InvalidateCache drops every cached product entry. The sale handler calls
// this after a recorded sale changes quantities.
func (h *ProductHandler) InvalidateCache() {
	h.cache.DeleteByPrefix(productCachePrefix)
}
