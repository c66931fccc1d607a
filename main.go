package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photofeed-backend/internal/auth"
	"photofeed-backend/internal/config"
	"photofeed-backend/internal/feed"
	"photofeed-backend/internal/imageproxy"
	"photofeed-backend/internal/logging"
	"photofeed-backend/internal/middleware"
	"photofeed-backend/internal/profile"
	"photofeed-backend/internal/providers/onedrive"
	"photofeed-backend/internal/storage"
	"photofeed-backend/internal/telemetry"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load .env file for local development (ignored in Docker)
	if os.Getenv("DOCKER_ENV") == "" {
		if err := godotenv.Load(); err != nil {
			log.Info("No .env file found, using system environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	logging.SetupLog(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)
	log.WithField("config", cfg.String()).Info("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise tracing")
	}

	e := echo.New()
	e.HideBanner = true
	if err := initialize(e, cfg); err != nil {
		log.WithError(err).Fatal("failed to initialise services")
	}

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           otelhttp.NewHandler(e, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		// image transcodes can take a while on large originals
		WriteTimeout: 2*cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Port).Info("Starting photo feed server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to flush traces")
	}
}

func initialize(e *echo.Echo, cfg *config.Config) error {
	// One outbound client for the token endpoint, Graph and avatar CDNs
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	userProfile, err := profile.Load(cfg.UserDataPath)
	if err != nil {
		return err
	}

	// Initialize auth service, optionally caching tokens until shortly before expiry
	var tokenCache *auth.TokenCache
	if cfg.TokenCache.Enabled {
		tokenCache = auth.NewTokenCache(cfg.TokenCache.Size)
	}
	authService := auth.NewService(&cfg.OAuth, httpClient, tokenCache)
	auth.NewHandler(authService).RegisterRoutes(e)

	// Initialize provider and storage services
	oneDriveService := onedrive.NewOneDriveService(httpClient, cfg.GraphBaseURL)
	storageService := storage.NewService(oneDriveService)

	grouper := feed.NewGrouper(cfg.Feed, userProfile)
	feedService := feed.NewService(authService, storageService, grouper, cfg.FolderName)
	feed.NewHandler(feedService).RegisterRoutes(e)

	profile.NewHandler(userProfile).RegisterRoutes(e)

	transcoder := imageproxy.NewTranscoder(cfg.Image)
	avatars := imageproxy.NewAvatarFetcher(httpClient, cfg.Image.AvatarAllowedHosts)
	imageproxy.NewHandler(authService, oneDriveService, transcoder, avatars).RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(middleware.SecurityHeaders(cfg.Domain))
	e.Use(middleware.CORSConfig(cfg.Domain))

	return nil
}
