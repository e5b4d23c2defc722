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

// mutationHandler handles HTTP requests related to funds mutations.
type mutationHandler struct {
	mutationService portssvc.MutationRecorderSvc
}

// newMutationHandler creates a new mutationHandler.
func newMutationHandler(ms portssvc.MutationRecorderSvc) *mutationHandler {
	return &mutationHandler{
		mutationService: ms,
	}
}

// registerMutationRoutes registers routes related to mutations.
func registerMutationRoutes(rg *gin.RouterGroup, mutationService portssvc.MutationRecorderSvc) {
	h := newMutationHandler(mutationService)

	mutations := rg.Group("/mutations")
	{
		mutations.POST("", h.recordMutation)
	}
}

// recordMutation books a funds mutation against an account. When no
// conversion rate between the event's currency and the account's currency is
// known yet, the event is parked and the response carries deferred=true; it
// is still 201, booking catches up once the rate is learned.
func (h *mutationHandler) recordMutation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordMutation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	agent := agentFromRequest(c)
	logger = logger.With(slog.String("account_id", req.AccountID), slog.String("agent", agent))
	logger.Info("Received request to record mutation", slog.String("unit", req.Unit))

	result, err := h.mutationService.RecordMutation(c.Request.Context(), req, agent)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording mutation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for mutation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to record mutation in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record mutation"})
		}
		return
	}

	if result.Deferred() {
		logger.Info("Mutation postponed pending conversion rate", slog.String("postponed_id", result.Postponed.PostponedID))
	} else {
		logger.Info("Mutation recorded successfully", slog.String("mutation_id", result.Mutation.MutationID))
	}
	c.JSON(http.StatusCreated, dto.ToMutationResponse(result))
}
