package models

// OAuthConfig holds the OAuth settings used to obtain Graph access tokens
type OAuthConfig struct {
	ClientID     string   `json:"client_id"`
	RefreshToken string   `json:"-"`
	Scopes       []string `json:"scopes"`
	Authority    string   `json:"authority"`
	TokenURL     string   `json:"token_url"`
	Provider     string   `json:"provider"`
}

// HasCredentials reports whether both the client id and the refresh token are set
func (c *OAuthConfig) HasCredentials() bool {
	return c.ClientID != "" && c.RefreshToken != ""
}
