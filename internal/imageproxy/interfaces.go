package imageproxy

import (
	"context"
	"io"

	"golang.org/x/oauth2"
)

// TokenSource hands out a valid Graph access token for each request
type TokenSource interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// Provider downloads the raw content of a drive item
type Provider interface {
	GetFileStream(ctx context.Context, itemID string, token *oauth2.Token) (io.ReadCloser, error)
}
