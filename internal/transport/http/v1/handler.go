// Package v1 provides the /api handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myrsple/azv-bot/internal/domain"
	"github.com/myrsple/azv-bot/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Thread API
	api.POST("/thread", h.CreateThread)
	api.POST("/thread/:threadId/message", h.PostMessage)
	api.GET("/thread/:threadId/messages", h.ListMessages)

	// Run API
	api.POST("/thread/:threadId/run", h.StartRun)
	api.GET("/thread/:threadId/run/:runId", h.GetRun)
	api.GET("/thread/:threadId/run/:runId/events", h.GetRunEvents)

	api.POST("/assistant", h.CreateAssistant)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

// respondError maps a service error to a status code. Upstream and
// configuration details stay in the log; the client gets the fallback text.
func respondError(c echo.Context, err error, fallback string) error {
	var violation *domain.PolicyViolation
	switch {
	case errors.Is(err, domain.ErrEmptyContent), errors.As(err, &violation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrRunInFlight):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
