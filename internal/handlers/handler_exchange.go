package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeHandler handles HTTP requests related to currency exchanges.
type exchangeHandler struct {
	exchangeService portssvc.ExchangeRecorderSvc
}

// newExchangeHandler creates a new exchangeHandler.
func newExchangeHandler(es portssvc.ExchangeRecorderSvc) *exchangeHandler {
	return &exchangeHandler{
		exchangeService: es,
	}
}

// registerExchangeRoutes registers routes related to exchanges.
func registerExchangeRoutes(rg *gin.RouterGroup, exchangeService portssvc.ExchangeRecorderSvc) {
	h := newExchangeHandler(exchangeService)

	exchanges := rg.Group("/exchanges")
	{
		exchanges.POST("", h.recordExchange)
	}
}

// recordExchange books a currency exchange between two accounts. Like
// mutations, an exchange with an unknown rate is parked and reported with
// deferred=true rather than rejected.
func (h *exchangeHandler) recordExchange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordExchange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	agent := agentFromRequest(c)
	logger = logger.With(
		slog.String("buy_account_id", req.BuyAccountID),
		slog.String("sell_account_id", req.SellAccountID),
		slog.String("agent", agent),
	)
	logger.Info("Received request to record exchange")

	result, err := h.exchangeService.RecordExchange(c.Request.Context(), req, agent)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording exchange", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for exchange")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to record exchange in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record exchange"})
		}
		return
	}

	if result.Deferred() {
		logger.Info("Exchange postponed pending conversion rate", slog.String("postponed_id", result.Postponed.PostponedID))
	} else {
		logger.Info("Exchange recorded successfully", slog.String("exchange_id", result.Exchange.ExchangeID))
	}
	c.JSON(http.StatusCreated, dto.ToExchangeResponse(result))
}
