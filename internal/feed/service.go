package feed

import (
	"context"
	"fmt"

	"photofeed-backend/internal/apperr"
	"photofeed-backend/internal/config"
	"photofeed-backend/internal/telemetry"
	"photofeed-backend/pkg/models"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Service builds the photo feed: token, folder, listing, filtering, sorting and grouping
type Service struct {
	tokens     TokenSource
	storage    StorageService
	grouper    *Grouper
	folderName string
}

func NewService(tokens TokenSource, storage StorageService, grouper *Grouper, folderName string) *Service {
	return &Service{
		tokens:     tokens,
		storage:    storage,
		grouper:    grouper,
		folderName: folderName,
	}
}

// BuildFeed runs the whole pipeline for one request. Nothing is reused between calls
// except whatever the token source caches.
func (s *Service) BuildFeed(ctx context.Context) (resp *models.FeedResponse, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "feed.build")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// a missing folder name is reported as a bad request, not a server fault
	if s.folderName == "" {
		return nil, apperr.BadRequest(config.EnvFolderName + " not configured")
	}
	span.SetAttributes(attribute.String("feed.folder", s.folderName))

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	folder, err := s.storage.FindFolder(ctx, token, s.folderName)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperr.NotFound(fmt.Sprintf("Folder %q not found", s.folderName))
	}

	images, err := s.storage.ListImages(ctx, folder, token)
	if err != nil {
		return nil, err
	}

	sorted := SortByCaptureTime(images)
	posts := s.grouper.Group(sorted)

	grouped := 0
	for _, p := range posts {
		grouped += len(p.Images)
	}
	if dropped := len(sorted) - grouped; dropped > 0 {
		log.WithFields(log.Fields{
			"folder":  s.folderName,
			"dropped": dropped,
		}).Warn("images without any timestamp were left out of the feed")
	}

	span.SetAttributes(attribute.Int("feed.photos", len(sorted)), attribute.Int("feed.posts", len(posts)))
	telemetry.FeedPhotos.Set(float64(len(sorted)))

	return &models.FeedResponse{
		Posts:       posts,
		TotalPhotos: len(sorted),
	}, nil
}
