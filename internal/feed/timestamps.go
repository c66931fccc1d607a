package feed

import (
	"regexp"
	"time"

	"photofeed-backend/pkg/models"
)

var filenameDatePattern = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})`)

// FilenameDate extracts a YYYYMMDD prefix from a file name as noon UTC of that day.
// Prefixes that are not a real calendar date are ignored.
func FilenameDate(name string) (time.Time, bool) {
	m := filenameDatePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	day, err := time.Parse("20060102", m[1]+m[2]+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(12 * time.Hour), true
}

// SortTime is the timestamp used for ordering: file name date, then capture time,
// then creation time. Modification time is not part of this chain.
func SortTime(item *models.CloudItem) (time.Time, bool) {
	if t, ok := FilenameDate(item.Name); ok {
		return t, true
	}
	if item.TakenAt != nil {
		return *item.TakenAt, true
	}
	if item.CreatedAt != nil {
		return *item.CreatedAt, true
	}
	return time.Time{}, false
}

// GroupTime is the timestamp used for grouping: the SortTime chain with the
// modification time as a last fallback.
func GroupTime(item *models.CloudItem) (time.Time, bool) {
	if t, ok := SortTime(item); ok {
		return t, true
	}
	if item.ModifiedAt != nil {
		return *item.ModifiedAt, true
	}
	return time.Time{}, false
}
