package onedrive

import "time"

// DriveItem represents an item in OneDrive (used for API responses)
type DriveItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file,omitempty"`
	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder,omitempty"`
	Image *struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"image,omitempty"`
	Photo *struct {
		TakenDateTime *time.Time `json:"takenDateTime,omitempty"`
	} `json:"photo,omitempty"`
	CreatedDateTime      *time.Time `json:"createdDateTime,omitempty"`
	LastModifiedDateTime *time.Time `json:"lastModifiedDateTime,omitempty"`
}

// APIResponse represents a collection response from the Graph API (search and children)
type APIResponse struct {
	Value    []DriveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink,omitempty"`
}

// APIError is the error envelope returned by the Graph API
type APIError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
