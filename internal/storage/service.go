package storage

import (
	"context"
	"fmt"
	"strings"

	"photofeed-backend/pkg/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// PageSize bounds the number of children requested per listing call
const PageSize = 200

// Service resolves the photo folder and lists its contents through a provider
type Service struct {
	provider Provider
}

// NewService creates a new storage service with an injected provider
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// FindFolder returns the folder with the exact given name, or nil when there is none
func (s *Service) FindFolder(ctx context.Context, token *oauth2.Token, folderName string) (*models.CloudItem, error) {
	return s.provider.FindFolderByName(ctx, token, folderName)
}

// ListFolderContents returns every direct child of the folder, following pages
// sequentially. A failing page discards everything gathered so far.
func (s *Service) ListFolderContents(ctx context.Context, item *models.CloudItem, token *oauth2.Token) ([]*models.CloudItem, error) {
	var allItems []*models.CloudItem
	var nextPageToken string
	pages := 0

	for {
		items, nextToken, err := s.provider.ListFolderContents(ctx, item, token, PageSize, nextPageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list folder contents: %w", err)
		}
		pages++

		allItems = append(allItems, items...)

		if nextToken == "" {
			break
		}
		nextPageToken = nextToken
	}

	log.WithFields(log.Fields{
		"folderID": item.ID,
		"pages":    pages,
		"items":    len(allItems),
	}).Debug("listed folder contents")

	return allItems, nil
}

// ListImages lists the folder and keeps only supported images
func (s *Service) ListImages(ctx context.Context, item *models.CloudItem, token *oauth2.Token) ([]*models.CloudItem, error) {
	allItems, err := s.ListFolderContents(ctx, item, token)
	if err != nil {
		return nil, err
	}
	return FilterImages(allItems), nil
}

// FilterImages keeps the files that IsSupportedImage accepts, in their original order
func FilterImages(items []*models.CloudItem) []*models.CloudItem {
	images := make([]*models.CloudItem, 0, len(items))
	for _, item := range items {
		if IsSupportedImage(item) {
			images = append(images, item)
		}
	}
	return images
}

// IsSupportedImage reports whether an item is an image file the transcoder can handle.
// HEIC/HEIF is rejected by MIME type or by file extension.
func IsSupportedImage(item *models.CloudItem) bool {
	if item == nil || !item.IsFile || item.MimeType == "" {
		return false
	}
	mimeType := strings.ToLower(item.MimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return false
	}
	if strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") {
		return false
	}
	name := strings.ToLower(item.Name)
	return !strings.HasSuffix(name, ".heic") && !strings.HasSuffix(name, ".heif")
}
