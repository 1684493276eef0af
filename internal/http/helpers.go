package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/database/orders"
)

// --- Response Types ---

// ErrorResponse is the standard error body: a machine-readable code plus a
// human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse is a standard success body with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: resource + " not found"})
}

// respondForbidden sends a 403 Forbidden response.
func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: message})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: message})
}

// respondInternalError logs the error with full detail and sends an opaque
// 500 response. The cause is never exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	zap.L().Error("internal error",
		zap.String("context", context),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}

// respondDomainError maps the shared domain errors onto the HTTP taxonomy.
// Anything unrecognized is treated as internal.
func respondDomainError(c *gin.Context, err error, context string) {
	var stockErr *database.InsufficientStockError
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, "resource")
	case errors.Is(err, database.ErrConflict):
		respondConflict(c, "already exists")
	case errors.Is(err, database.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty_cart", Message: "cart is empty"})
	case errors.Is(err, database.ErrSelfPurchase):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "self_purchase", Message: "you cannot purchase your own book"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "insufficient_stock", Message: stockErr.Error()})
	case errors.Is(err, orders.ErrCancelledImmutable):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
