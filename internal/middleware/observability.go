package middleware

import (
	"strconv"
	"time"

	"photofeed-backend/internal/telemetry"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			entry := log.WithFields(log.Fields{
				"requestID": res.Header().Get(echo.HeaderXRequestID),
				"method":    req.Method,
				"path":      req.URL.Path,
				"status":    res.Status,
				"latencyMs": time.Since(start).Milliseconds(),
				"bytesOut":  res.Size,
			})
			switch {
			case res.Status >= 500:
				entry.Error("request failed")
			case res.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}

// Metrics records request counts and latency per route template
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			telemetry.HTTPRequests.WithLabelValues(route, c.Request().Method, strconv.Itoa(c.Response().Status)).Inc()
			telemetry.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
