package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler exposes the service health, including the token cache state
type Handler struct {
	authService *Service
}

// NewHandler creates a new Handler instance
func NewHandler(authService *Service) *Handler {
	return &Handler{authService: authService}
}

// RegisterRoutes registers the health route with the Echo instance
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
}

// handleHealth returns the health status of the backend service
func (h *Handler) handleHealth(c echo.Context) error {
	response := map[string]interface{}{
		"status":      "healthy",
		"tokenCached": h.authService.CachedTokens() > 0,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	return c.JSON(http.StatusOK, response)
}
