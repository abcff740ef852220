package httpapi

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ownerKey = "owner_id"

	// HealthTimeout bounds every dependency check run by /healthz.
	HealthTimeout = 2 * time.Second
)

// requireOwner rejects requests without the owner header.
func (h *Handler) requireOwner(c *gin.Context) {
	header := h.OwnerHeader
	if header == "" {
		header = DefaultOwnerHeader
	}

	id := strings.TrimSpace(c.GetHeader(header))
	if id == "" {
		abortWith(c, http.StatusUnauthorized, ErrTypeUnauthorized, nil)
		return
	}

	c.Set(ownerKey, id)
	c.Next()
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// NewEngine returns a gin engine with recovery, request logging and the
// handler's routes.
func NewEngine(h *Handler, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))

	engine.GET("/healthz", h.health)
	h.Register(engine)

	return engine
}

// health runs every registered check and answers 503 naming the failed ones.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthTimeout)
	defer cancel()

	var failed []string
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			h.logger().Warn("health check failed", zap.String("check", name), zap.Error(err))
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
