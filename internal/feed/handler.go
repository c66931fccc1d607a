package feed

import (
	"net/http"

	"photofeed-backend/internal/apperr"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Handler handles feed HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new feed handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers feed routes with the Echo router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/photos", h.GetPhotos)
}

// GetPhotos handles GET /api/photos
func (h *Handler) GetPhotos(c echo.Context) error {
	feed, err := h.service.BuildFeed(c.Request().Context())
	if err != nil {
		resp := apperr.GetErrorResponse(err)
		log.WithFields(log.Fields{
			"requestID": c.Response().Header().Get(echo.HeaderXRequestID),
			"status":    resp.StatusCode,
			"trace":     apperr.Trace(err),
		}).Error("error fetching photos")

		if resp.StatusCode == http.StatusInternalServerError {
			return c.JSON(resp.StatusCode, map[string]string{
				"error":   "Failed to fetch photos",
				"details": resp.Message,
			})
		}
		return c.JSON(resp.StatusCode, map[string]string{
			"error": resp.Message,
		})
	}

	return c.JSON(http.StatusOK, feed)
}
