package models

import "time"

// CloudItem represents a file or folder in cloud storage
type CloudItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MimeType   string     `json:"mime_type,omitempty"`
	IsFolder   bool       `json:"is_folder"`
	IsFile     bool       `json:"is_file"`
	Provider   string     `json:"provider"`
	Width      int        `json:"width,omitempty"`
	Height     int        `json:"height,omitempty"`
	TakenAt    *time.Time `json:"taken_at,omitempty"`    // Photo capture time from camera metadata
	CreatedAt  *time.Time `json:"created_at,omitempty"`  // Creation time in the drive
	ModifiedAt *time.Time `json:"modified_at,omitempty"` // Last modification time in the drive
}

// IsLandscape reports whether the item is at least as wide as it is tall.
// Items without dimensions count as landscape.
func (i *CloudItem) IsLandscape() bool {
	return i.Width >= i.Height
}
