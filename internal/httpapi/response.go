package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/investment"
	"go.uber.org/zap"
)

// Error types rendered in the error body.
const (
	ErrTypeService      = "SERVICE_ERROR"
	ErrTypeNotFound     = "NOT_FOUND"
	ErrTypeInvalid      = "INVALID_REQUEST"
	ErrTypeUnauthorized = "UNAUTHORIZED"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

func abortWith(c *gin.Context, status int, errType string, fields map[string]string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Type: errType, Fields: fields}})
}

// fail maps err onto a status and error type. Only unexpected failures are
// logged.
func (h *Handler) fail(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, fieldErrors(verrs))
	case errors.Is(err, investment.ErrUnknownItem):
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, map[string]string{"market_hash_name": "unknown item"})
	case errors.Is(err, cache.ErrItemNotFound),
		errors.Is(err, cache.ErrIconNotFound),
		errors.Is(err, investment.ErrNotFound):
		abortWith(c, http.StatusNotFound, ErrTypeNotFound, nil)
	default:
		h.logger().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Stringer("kind", cache.KindOf(err)),
			zap.Error(err),
		)
		abortWith(c, http.StatusInternalServerError, ErrTypeService, nil)
	}
}

func fieldErrors(verrs validation.Errors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for name, err := range verrs {
		fields[name] = err.Error()
	}
	return fields
}
