package profile

import (
	"net/http"

	"photofeed-backend/pkg/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	profile *Profile
}

func NewHandler(profile *Profile) *Handler {
	return &Handler{profile: profile}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/profile", h.handleGetProfile)
}

// handleGetProfile returns the sidebar data: the current user and suggestions
func (h *Handler) handleGetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, models.UserData{
		CurrentUser:    h.profile.CurrentUser(),
		SuggestedUsers: h.profile.SuggestedUsers(),
	})
}
