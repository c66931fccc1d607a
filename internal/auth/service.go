package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"photofeed-backend/internal/apperr"
	"photofeed-backend/internal/telemetry"
	"photofeed-backend/pkg/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Service exchanges the configured refresh token for short-lived Graph access tokens
type Service struct {
	config     *models.OAuthConfig
	httpClient *http.Client
	cache      *TokenCache // nil disables caching
}

// NewService creates a token service. Pass a nil cache to exchange on every call.
func NewService(config *models.OAuthConfig, httpClient *http.Client, cache *TokenCache) *Service {
	return &Service{
		config:     config,
		httpClient: httpClient,
		cache:      cache,
	}
}

// AccessToken returns a valid bearer token, exchanging the refresh token when needed
func (s *Service) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	if !s.config.HasCredentials() {
		return nil, apperr.Configuration("Missing MSAL_CLIENT_ID or MSAL_REFRESH_TOKEN in environment variables")
	}

	if s.cache != nil {
		if token, ok := s.cache.Get(s.config.ClientID); ok {
			telemetry.TokenExchanges.WithLabelValues(telemetry.OutcomeCacheHit).Inc()
			return token, nil
		}
	}

	token, err := s.refreshAccessToken(ctx)
	if err != nil {
		telemetry.TokenExchanges.WithLabelValues(telemetry.OutcomeFailure).Inc()
		return nil, err
	}
	telemetry.TokenExchanges.WithLabelValues(telemetry.OutcomeSuccess).Inc()

	if s.cache != nil {
		s.cache.Put(s.config.ClientID, token)
	}
	return token, nil
}

// CachedTokens reports how many tokens are currently cached
func (s *Service) CachedTokens() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// refreshAccessToken performs the refresh_token grant against the token endpoint
func (s *Service) refreshAccessToken(ctx context.Context) (*oauth2.Token, error) {
	data := url.Values{}
	data.Set("client_id", s.config.ClientID)
	data.Set("scope", strings.Join(s.config.Scopes, " "))
	data.Set("refresh_token", s.config.RefreshToken)
	data.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, apperr.Auth("failed to create token request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Auth("failed to refresh access token").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Auth("failed to read token response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("error refreshing token")
		return nil, apperr.Auth("failed to refresh access token").
			WithCause(fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, apperr.Auth("failed to decode token response").WithCause(err)
	}
	if tr.AccessToken == "" {
		return nil, apperr.Auth("token response has no access_token")
	}
	if tr.RefreshToken != "" && tr.RefreshToken != s.config.RefreshToken {
		log.Debug("token endpoint rotated the refresh token; the configured one stays in use")
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return token.WithExtra(map[string]interface{}{"scope": tr.Scope}), nil
}
