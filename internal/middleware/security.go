package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// The feed API is read-only
var allowedMethods = []string{echo.GET, echo.HEAD, echo.OPTIONS}

func isLocal(domain string) bool {
	return strings.Contains(domain, "localhost") || strings.Contains(domain, "127.0.0.1")
}

// CORSConfig returns CORS middleware restricted to the frontend domain
func CORSConfig(domain string) echo.MiddlewareFunc {
	if domain == "" {
		// Fallback to localhost for development
		return middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"http://localhost:3000", "http://localhost:4200"},
			AllowMethods: allowedMethods,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			MaxAge:       86400, // 24 hours
		})
	}

	allowedOrigins := []string{"https://" + domain}

	// Only allow HTTP for explicit non-production domains
	if isLocal(domain) {
		allowedOrigins = append(allowedOrigins, "http://"+domain)
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: allowedMethods,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		MaxAge:       86400,
	})
}

// SecurityHeaders adds security headers to all responses
func SecurityHeaders(domain string) echo.MiddlewareFunc {
	csp := "default-src 'none'; frame-ancestors 'self'"
	if domain != "" && !isLocal(domain) {
		csp = "default-src 'none'; frame-ancestors https://" + domain
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			// Images are embedded by the frontend from another origin
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			h.Set("Permissions-Policy",
				"geolocation=(), microphone=(), camera=(), payment=(), usb=(), magnetometer=(), gyroscope=()")

			// HSTS only when the request came in over HTTPS, directly or via a proxy
			if c.Request().Header.Get("X-Forwarded-Proto") == "https" || c.Request().TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			return next(c)
		}
	}
}
