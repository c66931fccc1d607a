// Package config builds the service configuration from the environment once at start-up.
package config

import (
	"fmt"
	"strings"
	"time"

	"photofeed-backend/pkg/models"

	"github.com/spf13/viper"
)

// Environment variable names
const (
	EnvPort               = "PORT"
	EnvDomain             = "DOMAIN"
	EnvClientID           = "MSAL_CLIENT_ID"
	EnvRefreshToken       = "MSAL_REFRESH_TOKEN"
	EnvAuthority          = "MSAL_AUTHORITY"
	EnvFolderName         = "ONEDRIVE_FOLDER_NAME"
	EnvLegacyFolderName   = "NEXT_PUBLIC_ONEDRIVE_FOLDER_NAME"
	EnvGraphBaseURL       = "GRAPH_BASE_URL"
	EnvHTTPTimeout        = "HTTP_TIMEOUT"
	EnvTokenCacheEnabled  = "TOKEN_CACHE_ENABLED"
	EnvTokenCacheSize     = "TOKEN_CACHE_SIZE"
	EnvFeedTimezone       = "FEED_TIMEZONE"
	EnvFeedDescription    = "FEED_DESCRIPTION_FORMAT"
	EnvFeedDateLayout     = "FEED_DATE_LAYOUT"
	EnvWebPQuality        = "WEBP_QUALITY"
	EnvWebPMethod         = "WEBP_METHOD"
	EnvImageMaxBytes      = "IMAGE_MAX_BYTES"
	EnvUserDataPath       = "USER_DATA_PATH"
	EnvAvatarAllowedHosts = "AVATAR_ALLOWED_HOSTS"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvOTLPEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvServiceName        = "OTEL_SERVICE_NAME"
)

const (
	DefaultAuthority = "https://login.microsoftonline.com/common"
	DefaultGraphURL  = "https://graph.microsoft.com/v1.0"
	folderNameKey    = "folder_name"
)

// DefaultScopes are requested on every refresh-token exchange
var DefaultScopes = []string{"User.Read", "Files.Read", "Files.Read.All", "offline_access"}

// Config is the process-wide configuration, passed by reference into each component
type Config struct {
	Port         string
	Domain       string
	OAuth        models.OAuthConfig
	GraphBaseURL string
	FolderName   string
	HTTPTimeout  time.Duration
	UserDataPath string
	TokenCache   TokenCacheConfig
	Feed         FeedConfig
	Image        ImageConfig
	Log          LogConfig
	Telemetry    TelemetryConfig
}

type TokenCacheConfig struct {
	Enabled bool
	Size    int
}

// FeedConfig controls how posts are dated and described
type FeedConfig struct {
	Location          *time.Location
	DescriptionFormat string // fmt verb receives the formatted date
	DateLayout        string
}

// ImageConfig controls the WebP transcoder and the avatar proxy
type ImageConfig struct {
	Quality            int
	Method             int
	MaxBytes           int64
	AvatarAllowedHosts []string
}

type LogConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	return FromViper(New())
}

// New returns a viper instance bound to the environment with all defaults registered
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvPort, ":8080")
	v.SetDefault(EnvAuthority, DefaultAuthority)
	v.SetDefault(EnvGraphBaseURL, DefaultGraphURL)
	v.SetDefault(EnvHTTPTimeout, 30*time.Second)
	v.SetDefault(EnvTokenCacheEnabled, true)
	v.SetDefault(EnvTokenCacheSize, 8)
	v.SetDefault(EnvFeedTimezone, "UTC")
	v.SetDefault(EnvFeedDescription, "Fotitos del %s")
	v.SetDefault(EnvFeedDateLayout, "2/1/2006")
	v.SetDefault(EnvWebPQuality, 85)
	v.SetDefault(EnvWebPMethod, 4)
	v.SetDefault(EnvImageMaxBytes, 50<<20)
	v.SetDefault(EnvUserDataPath, "data/user-data.json")
	v.SetDefault(EnvAvatarAllowedHosts, "*.fbcdn.net")
	v.SetDefault(EnvLogLevel, "info")
	v.SetDefault(EnvLogFormat, "json")
	v.SetDefault(EnvServiceName, "photofeed")

	// the folder name keeps working under the old Next.js variable name
	_ = v.BindEnv(folderNameKey, EnvFolderName, EnvLegacyFolderName)

	return v
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	authority := strings.TrimRight(v.GetString(EnvAuthority), "/")

	loc, err := time.LoadLocation(v.GetString(EnvFeedTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvFeedTimezone, err)
	}

	cfg := &Config{
		Port:   v.GetString(EnvPort),
		Domain: v.GetString(EnvDomain),
		OAuth: models.OAuthConfig{
			ClientID:     v.GetString(EnvClientID),
			RefreshToken: v.GetString(EnvRefreshToken),
			Scopes:       DefaultScopes,
			Authority:    authority,
			TokenURL:     authority + "/oauth2/v2.0/token",
			Provider:     "onedrive",
		},
		GraphBaseURL: strings.TrimRight(v.GetString(EnvGraphBaseURL), "/"),
		FolderName:   strings.TrimSpace(v.GetString(folderNameKey)),
		HTTPTimeout:  v.GetDuration(EnvHTTPTimeout),
		UserDataPath: v.GetString(EnvUserDataPath),
		TokenCache: TokenCacheConfig{
			Enabled: v.GetBool(EnvTokenCacheEnabled),
			Size:    v.GetInt(EnvTokenCacheSize),
		},
		Feed: FeedConfig{
			Location:          loc,
			DescriptionFormat: v.GetString(EnvFeedDescription),
			DateLayout:        v.GetString(EnvFeedDateLayout),
		},
		Image: ImageConfig{
			Quality:            v.GetInt(EnvWebPQuality),
			Method:             v.GetInt(EnvWebPMethod),
			MaxBytes:           v.GetInt64(EnvImageMaxBytes),
			AvatarAllowedHosts: splitList(v.GetString(EnvAvatarAllowedHosts)),
		},
		Log: LogConfig{
			Level:  v.GetString(EnvLogLevel),
			Format: v.GetString(EnvLogFormat),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString(EnvOTLPEndpoint),
			ServiceName:  v.GetString(EnvServiceName),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate only rejects malformed values. Missing secrets are reported per request.
func (c *Config) validate() error {
	if c.Image.Quality < 0 || c.Image.Quality > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %d", EnvWebPQuality, c.Image.Quality)
	}
	if c.Image.Method < 0 || c.Image.Method > 6 {
		return fmt.Errorf("%s must be between 0 and 6, got %d", EnvWebPMethod, c.Image.Method)
	}
	if c.Image.MaxBytes <= 0 {
		return fmt.Errorf("%s must be positive", EnvImageMaxBytes)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvHTTPTimeout)
	}
	if c.TokenCache.Enabled && c.TokenCache.Size <= 0 {
		return fmt.Errorf("%s must be positive when the token cache is enabled", EnvTokenCacheSize)
	}
	return nil
}

// String renders the configuration without secrets
func (c *Config) String() string {
	return fmt.Sprintf("Port=%s, Authority=%s, GraphBaseURL=%s, FolderName=%q, ClientIDSet=%t, RefreshTokenSet=%t, TokenCache=%t",
		c.Port, c.OAuth.Authority, c.GraphBaseURL, c.FolderName,
		c.OAuth.ClientID != "", c.OAuth.RefreshToken != "", c.TokenCache.Enabled)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
