package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-market-cache/internal/investment"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/goliatone/go-market-cache/internal/search"
	"github.com/goliatone/go-market-cache/internal/valuation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultOwnerHeader carries the caller id when Handler.OwnerHeader is empty.
const DefaultOwnerHeader = "X-User-ID"

// Valuer prices single items and inventory batches.
type Valuer interface {
	PriceOf(ctx context.Context, name string) (model.PriceRecord, error)
	PriceCheck(ctx context.Context, lines []valuation.Line) (valuation.PriceCheckResult, error)
}

// RateSource returns the cached currency rates.
type RateSource interface {
	CurrencyRates(ctx context.Context) (model.CurrencyRates, error)
}

// IconResolver maps an item name to its catalog image URL.
type IconResolver interface {
	Icon(ctx context.Context, name string) (string, error)
}

// Suggester returns name suggestions for a search query.
type Suggester interface {
	Suggest(ctx context.Context, q string) ([]search.ItemIndexRow, error)
}

// Investments manages the investments of one owner.
type Investments interface {
	Create(ctx context.Context, ownerID string, in investment.CreateInput) (investment.Holding, error)
	List(ctx context.Context, ownerID string) ([]investment.Holding, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, in investment.UpdateInput) (investment.Holding, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the market API.
type Handler struct {
	Valuer      Valuer
	Rates       RateSource
	Icons       IconResolver
	Suggester   Suggester
	Investments Investments

	// Checks are run by /healthz, keyed by dependency name.
	Checks map[string]HealthCheck

	// OwnerHeader names the header the upstream auth layer sets.
	OwnerHeader string
	Logger      *zap.Logger
}

// Register mounts the API routes under /api.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/prices", h.getPrice)
	api.GET("/currencies", h.getCurrencies)
	api.GET("/icon/:name", h.getIcon)
	api.GET("/items/suggest", h.suggestItems)
	api.POST("/inventory/price-check", h.priceCheck)

	inv := api.Group("/investments", h.requireOwner)
	inv.POST("", h.createInvestment)
	inv.GET("", h.listInvestments)
	inv.PUT("/:id", h.updateInvestment)
	inv.DELETE("/:id", h.deleteInvestment)
}

func (h *Handler) getPrice(c *gin.Context) {
	name := strings.TrimSpace(c.Query("market_hash_name"))
	if name == "" {
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, map[string]string{"market_hash_name": "cannot be blank"})
		return
	}

	rec, err := h.Valuer.PriceOf(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) getCurrencies(c *gin.Context) {
	rates, err := h.Rates.CurrencyRates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *Handler) getIcon(c *gin.Context) {
	url, err := h.Icons.Icon(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) suggestItems(c *gin.Context) {
	rows, err := h.Suggester.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) priceCheck(c *gin.Context) {
	var lines []valuation.Line
	if err := c.ShouldBindJSON(&lines); err != nil {
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, nil)
		return
	}

	result, err := h.Valuer.PriceCheck(c.Request.Context(), lines)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(result.CacheFor.Seconds())))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) createInvestment(c *gin.Context) {
	var in investment.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, nil)
		return
	}

	holding, err := h.Investments.Create(c.Request.Context(), owner(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

func (h *Handler) listInvestments(c *gin.Context) {
	holdings, err := h.Investments.List(c.Request.Context(), owner(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *Handler) updateInvestment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in investment.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, nil)
		return
	}

	holding, err := h.Investments.Update(c.Request.Context(), owner(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *Handler) deleteInvestment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Investments.Delete(c.Request.Context(), owner(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWith(c, http.StatusBadRequest, ErrTypeInvalid, map[string]string{"id": "must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
