package auth

import (
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/oauth2"
)

// expiryMargin is subtracted from the issuer's expiry so a cached token is
// never handed out moments before it lapses
const expiryMargin = time.Minute

// TokenCache keeps access tokens per client id until shortly before they expire
type TokenCache struct {
	cache gcache.Cache
}

func NewTokenCache(size int) *TokenCache {
	return newTokenCache(gcache.New(size).LRU().Build())
}

func newTokenCache(c gcache.Cache) *TokenCache {
	return &TokenCache{cache: c}
}

// Get returns the cached token for a client id if it is still valid
func (c *TokenCache) Get(clientID string) (*oauth2.Token, bool) {
	v, err := c.cache.Get(clientID)
	if err != nil {
		return nil, false
	}
	token, ok := v.(*oauth2.Token)
	if !ok || !token.Valid() {
		c.cache.Remove(clientID)
		return nil, false
	}
	return token, true
}

// Put stores a token until its expiry minus the safety margin.
// Tokens without an expiry, or about to expire, are not cached.
func (c *TokenCache) Put(clientID string, token *oauth2.Token) {
	if token == nil || token.Expiry.IsZero() {
		return
	}
	ttl := time.Until(token.Expiry) - expiryMargin
	if ttl <= 0 {
		return
	}
	_ = c.cache.SetWithExpire(clientID, token, ttl)
}

// Len reports the number of live entries
func (c *TokenCache) Len() int {
	return c.cache.Len(true)
}
