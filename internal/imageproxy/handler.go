package imageproxy

import (
	"net/http"

	"photofeed-backend/internal/apperr"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	imageCacheControl  = "public, max-age=31536000, immutable"
	avatarCacheControl = "public, max-age=86400"
)

// Handler serves drive images re-encoded as WebP, plus allow-listed avatars
type Handler struct {
	tokens     TokenSource
	provider   Provider
	transcoder *Transcoder
	avatars    *AvatarFetcher
}

func NewHandler(tokens TokenSource, provider Provider, transcoder *Transcoder, avatars *AvatarFetcher) *Handler {
	return &Handler{
		tokens:     tokens,
		provider:   provider,
		transcoder: transcoder,
		avatars:    avatars,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/image", h.handleImageProxy)
	e.GET("/api/avatar", h.handleAvatarProxy)
}

// handleImageProxy handles GET /api/image?id=. Every request gets its own token.
func (h *Handler) handleImageProxy(c echo.Context) error {
	imageID := c.QueryParam("id")
	if imageID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Image ID is required",
		})
	}

	ctx := c.Request().Context()
	fail := func(err error) error {
		log.WithFields(log.Fields{
			"requestID": c.Response().Header().Get(echo.HeaderXRequestID),
			"imageID":   imageID,
			"trace":     apperr.Trace(err),
		}).Error("error fetching image")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch image",
		})
	}

	token, err := h.tokens.AccessToken(ctx)
	if err != nil {
		return fail(err)
	}

	stream, err := h.provider.GetFileStream(ctx, imageID, token)
	if err != nil {
		return fail(err)
	}
	defer stream.Close()

	encoded, err := h.transcoder.ToWebP(stream)
	if err != nil {
		return fail(err)
	}

	c.Response().Header().Set("Cache-Control", imageCacheControl)
	return c.Blob(http.StatusOK, "image/webp", encoded)
}

// handleAvatarProxy handles GET /api/avatar?url= for external profile pictures
func (h *Handler) handleAvatarProxy(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "url is required",
		})
	}

	target, err := h.avatars.Validate(rawURL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	body, contentType, err := h.avatars.Fetch(c.Request().Context(), target)
	if err != nil {
		log.WithFields(log.Fields{
			"requestID": c.Response().Header().Get(echo.HeaderXRequestID),
			"host":      target.Host,
			"trace":     apperr.Trace(err),
		}).Error("error fetching avatar")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch avatar",
		})
	}
	defer body.Close()

	c.Response().Header().Set("Cache-Control", avatarCacheControl)
	return c.Stream(http.StatusOK, contentType, body)
}
