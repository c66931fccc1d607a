package feed

import (
	"context"

	"photofeed-backend/pkg/models"

	"golang.org/x/oauth2"
)

// TokenSource hands out a valid Graph access token for each request
type TokenSource interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// StorageService resolves the photo folder and lists its images
type StorageService interface {
	FindFolder(ctx context.Context, token *oauth2.Token, folderName string) (*models.CloudItem, error)
	ListImages(ctx context.Context, item *models.CloudItem, token *oauth2.Token) ([]*models.CloudItem, error)
}

// Profile provides the static user data shown on every post
type Profile interface {
	CurrentUser() models.CurrentUser
	SuggestedUsers() []models.SuggestedUser
}
