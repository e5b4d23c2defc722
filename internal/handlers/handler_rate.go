package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// rateHandler handles HTTP requests related to conversion rates.
type rateHandler struct {
	resolver   portssvc.RateResolverSvc
	reconciler portssvc.ReconciliationSvc
}

// newRateHandler creates a new rateHandler.
func newRateHandler(resolver portssvc.RateResolverSvc, reconciler portssvc.ReconciliationSvc) *rateHandler {
	return &rateHandler{
		resolver:   resolver,
		reconciler: reconciler,
	}
}

// registerRateRoutes registers routes related to rates.
func registerRateRoutes(rg *gin.RouterGroup, resolver portssvc.RateResolverSvc, reconciler portssvc.ReconciliationSvc) {
	h := newRateHandler(resolver, reconciler)

	rates := rg.Group("/rates")
	{
		rates.GET("/:from/:to", h.getRate)
		rates.POST("/refresh", h.refreshPostponed)
	}
}

// getRate resolves the conversion rate between two currencies for a day
// (defaulting to today). An unresolvable pair is not an error: the response
// carries known=false.
func (h *rateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := domain.CurrencyUnit(strings.ToUpper(c.Param("from")))
	to := domain.CurrencyUnit(strings.ToUpper(c.Param("to")))
	if !from.Valid() || !to.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3-4 uppercase letters"})
		return
	}

	day := domain.Today()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := domain.ParseDay(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	logger = logger.With(
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("day", day.String()),
	)
	logger.Info("Received request to resolve rate")

	rate := h.resolver.Resolve(c.Request.Context(), day, from, to)
	if rate == nil {
		logger.Info("Rate unknown")
	} else {
		logger.Info("Rate resolved", slog.String("rate", rate.String()))
	}

	c.JSON(http.StatusOK, dto.RateResponse{
		Day:   day.String(),
		From:  from.String(),
		To:    to.String(),
		Rate:  rate,
		Known: rate != nil,
	})
}

// refreshPostponed re-resolves the rates currently blocking postponed events,
// scheduling replay for any that now resolve.
func (h *rateHandler) refreshPostponed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to refresh postponed rates")

	if err := h.reconciler.RefreshPostponed(c.Request.Context()); err != nil {
		logger.Error("Failed to refresh postponed rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh postponed rates"})
		return
	}

	logger.Info("Postponed rate refresh scheduled")
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}
