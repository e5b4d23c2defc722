package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
)

// defaultAgent identifies requests that carry no X-Agent header. There is no
// user management here; the agent is a free-form audit label supplied by the
// calling frontend or script.
const defaultAgent = "api"

// agentFromRequest extracts the audit agent label from the request.
func agentFromRequest(c *gin.Context) string {
	if agent := c.GetHeader("X-Agent"); agent != "" {
		return agent
	}
	return defaultAgent
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	registerCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// registerCustomValidators hooks domain validators into the gin binding engine.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_code", dto.CurrencyCodeValidator)
	}
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	// Delegate route registration to specific handlers, passing required services
	registerAccountRoutes(v1, services.Account)
	registerSubjectRoutes(v1, services.Subject)
	registerMutationRoutes(v1, services.Mutation)
	registerExchangeRoutes(v1, services.Exchange)
	registerRateRoutes(v1, services.RateResolver, services.Reconciler)
}
