package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockmate/internal/apperr"
	"stockmate/internal/obs"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// writeError maps the error taxonomy onto HTTP statuses. Unknown errors are
// logged and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.InsufficientStock:
		status = http.StatusConflict
	default:
		obs.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := ErrorResponse{Error: err.Error()}
	var e *apperr.Error
	if errors.As(err, &e) {
		resp.Field = e.Field
	}
	c.JSON(status, resp)
}
