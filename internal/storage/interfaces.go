package storage

import (
	"context"

	"photofeed-backend/pkg/models"

	"golang.org/x/oauth2"
)

// Provider defines the folder operations needed from a cloud storage provider
type Provider interface {
	FindFolderByName(ctx context.Context, token *oauth2.Token, folderName string) (*models.CloudItem, error)
	ListFolderContents(ctx context.Context, item *models.CloudItem, token *oauth2.Token, pageSize int, nextPageToken string) ([]*models.CloudItem, string, error)
}
