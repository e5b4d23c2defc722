package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// subjectHandler handles HTTP requests related to mutation subjects.
type subjectHandler struct {
	subjectService portssvc.SubjectSvcFacade
}

// newSubjectHandler creates a new subjectHandler.
func newSubjectHandler(ss portssvc.SubjectSvcFacade) *subjectHandler {
	return &subjectHandler{
		subjectService: ss,
	}
}

// registerSubjectRoutes registers routes related to subjects.
func registerSubjectRoutes(rg *gin.RouterGroup, subjectService portssvc.SubjectSvcFacade) {
	h := newSubjectHandler(subjectService)

	subjects := rg.Group("/subjects")
	{
		subjects.POST("", h.createSubject)
		subjects.GET("", h.listSubjects)
	}
}

// createSubject adds a new mutation subject. Reserved codes are rejected.
func (h *subjectHandler) createSubject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubject", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	agent := agentFromRequest(c)
	logger.Info("Received request to create subject", slog.String("code", req.Code))

	subject, err := h.subjectService.CreateSubject(c.Request.Context(), req, agent)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Attempted to create duplicate subject", slog.String("code", req.Code))
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Subject code '%s' already exists", req.Code)})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating subject", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create subject in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		}
		return
	}

	logger.Info("Subject created successfully", slog.String("subject_id", subject.SubjectID))
	c.JSON(http.StatusCreated, dto.ToSubjectResponse(subject))
}

// listSubjects retrieves all subjects, reserved ones included.
func (h *subjectHandler) listSubjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subjects, err := h.subjectService.ListSubjects(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list subjects from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subjects"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListSubjectResponse(subjects))
}
