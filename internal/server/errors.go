package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	reconciledomain "github.com/soleworks/soleledger/internal/reconcile/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware turns errors queued on the context into a JSON
// error body. Handlers call AbortWithError and return.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, inventorydomain.ErrInvalidPurchase),
		errors.Is(err, inventorydomain.ErrPurchaseInvariant),
		errors.Is(err, inventorydomain.ErrAmbiguousItem):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}

	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrItemNotFound),
		errors.Is(err, platformdomain.ErrUnknownPlatform),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case errors.Is(err, reconciledomain.ErrPersistenceConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
