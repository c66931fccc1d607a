package models

// Post is a synthetic feed entry grouping same-day, same-orientation photos
type Post struct {
	ID          string   `json:"id"` // "YYYY-MM-DD-h" or "YYYY-MM-DD-v"
	Username    string   `json:"username"`
	UserAvatar  string   `json:"userAvatar"`
	Images      []string `json:"images"` // Proxy URIs, never raw bytes
	Likes       int      `json:"likes"`
	LikedBy     string   `json:"likedBy"`
	Description string   `json:"description"`
	TimeAgo     string   `json:"timeAgo"`
}

// FeedResponse is the body returned by GET /api/photos
type FeedResponse struct {
	Posts       []*Post `json:"posts"`
	TotalPhotos int     `json:"totalPhotos"`
}

// CurrentUser is the owner of the feed as shown in the sidebar
type CurrentUser struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// SuggestedUser is a static sidebar suggestion
type SuggestedUser struct {
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	FollowedBy string `json:"followedBy"`
}

// UserData is the static profile configuration of the feed
type UserData struct {
	CurrentUser    CurrentUser     `json:"currentUser"`
	SuggestedUsers []SuggestedUser `json:"suggestedUsers"`
}
