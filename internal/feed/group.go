package feed

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"sort"
	"time"

	"photofeed-backend/internal/config"
	"photofeed-backend/pkg/models"
)

const (
	OrientationLandscape = "h"
	OrientationPortrait  = "v"

	dayKeyLayout = "2006-01-02"
)

// Grouper turns a sorted image list into one post per (calendar day, orientation)
type Grouper struct {
	location          *time.Location
	descriptionFormat string
	dateLayout        string
	profile           Profile

	now   func() time.Time
	likes func() int
}

// NewGrouper creates a Grouper using the feed settings and the static profile
func NewGrouper(cfg config.FeedConfig, profile Profile) *Grouper {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Grouper{
		location:          loc,
		descriptionFormat: cfg.DescriptionFormat,
		dateLayout:        cfg.DateLayout,
		profile:           profile,
		now:               time.Now,
		likes:             func() int { return rand.IntN(200) + 10 },
	}
}

type group struct {
	key    string
	day    string
	first  time.Time
	images []*models.CloudItem
}

// Group buckets images by calendar day of GroupTime (in the configured zone) and by
// orientation. Images keep their input order inside a post; posts are ordered by
// descending day, and same-day posts keep the order in which they were first seen.
// Images with no timestamp at all are left out.
func (g *Grouper) Group(images []*models.CloudItem) []*models.Post {
	var groups []*group
	index := make(map[string]*group)

	for _, item := range images {
		at, ok := GroupTime(item)
		if !ok {
			continue
		}
		day := at.In(g.location).Format(dayKeyLayout)
		key := day + "-" + Orientation(item)

		grp, exists := index[key]
		if !exists {
			grp = &group{key: key, day: day, first: at}
			index[key] = grp
			groups = append(groups, grp)
		}
		grp.images = append(grp.images, item)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].day > groups[j].day
	})

	now := g.now()
	user := g.profile.CurrentUser()
	likedBy := "unknown"
	if suggested := g.profile.SuggestedUsers(); len(suggested) > 0 && suggested[0].Username != "" {
		likedBy = suggested[0].Username
	}

	posts := make([]*models.Post, 0, len(groups))
	for _, grp := range groups {
		urls := make([]string, len(grp.images))
		for i, item := range grp.images {
			urls[i] = ImageURL(item.ID)
		}

		posts = append(posts, &models.Post{
			ID:          grp.key,
			Username:    user.Username,
			UserAvatar:  user.Avatar,
			Images:      urls,
			Likes:       g.likes(),
			LikedBy:     likedBy,
			Description: fmt.Sprintf(g.descriptionFormat, grp.first.In(g.location).Format(g.dateLayout)),
			TimeAgo:     RelativeTime(now, grp.first),
		})
	}

	return posts
}

// Orientation classifies an item as landscape when it is at least as wide as tall
func Orientation(item *models.CloudItem) string {
	if item.IsLandscape() {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// ImageURL is the proxy URI the client uses to fetch an image
func ImageURL(id string) string {
	return "/api/image?id=" + url.QueryEscape(id)
}
