package feed

import (
	"sort"
	"time"

	"photofeed-backend/pkg/models"
)

var epoch = time.Unix(0, 0).UTC()

// SortByCaptureTime returns a copy of items ordered newest first by SortTime.
// Items without a timestamp count as the unix epoch. Ties keep their input order.
func SortByCaptureTime(items []*models.CloudItem) []*models.CloudItem {
	type keyed struct {
		item *models.CloudItem
		at   time.Time
	}

	entries := make([]keyed, len(items))
	for i, item := range items {
		at, ok := SortTime(item)
		if !ok {
			at = epoch
		}
		entries[i] = keyed{item: item, at: at}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})

	sorted := make([]*models.CloudItem, len(entries))
	for i, e := range entries {
		sorted[i] = e.item
	}
	return sorted
}
