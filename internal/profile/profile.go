// Package profile serves the static user data shown next to the feed.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"photofeed-backend/pkg/models"

	log "github.com/sirupsen/logrus"
)

const unknownUsername = "unknown"

// Profile holds the user data loaded at start-up. It is read-only after Load.
type Profile struct {
	data models.UserData
}

// Load reads the user data JSON at path. A missing file yields an empty
// profile so the feed still renders; a malformed file is an error.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", path).Warn("user data file not found, using an empty profile")
		return New(models.UserData{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user data: %w", err)
	}

	var data models.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse user data %s: %w", path, err)
	}
	return New(data), nil
}

func New(data models.UserData) *Profile {
	if data.CurrentUser.Username == "" {
		data.CurrentUser.Username = unknownUsername
	}
	return &Profile{data: data}
}

// CurrentUser returns the feed owner with the avatar routed through the proxy
func (p *Profile) CurrentUser() models.CurrentUser {
	user := p.data.CurrentUser
	user.Avatar = AvatarURL(user.Avatar)
	return user
}

// SuggestedUsers returns a copy of the suggestions with proxied avatars
func (p *Profile) SuggestedUsers() []models.SuggestedUser {
	users := make([]models.SuggestedUser, len(p.data.SuggestedUsers))
	for i, user := range p.data.SuggestedUsers {
		user.Avatar = AvatarURL(user.Avatar)
		users[i] = user
	}
	return users
}

// AvatarURL rewrites external avatars to /api/avatar. Local paths are returned as is.
func AvatarURL(avatar string) string {
	lower := strings.ToLower(avatar)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return "/api/avatar?url=" + url.QueryEscape(avatar)
	}
	return avatar
}
