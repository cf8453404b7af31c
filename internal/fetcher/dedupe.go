package fetcher

import (
	"strings"

	"github.com/spacesedan/sentifi/internal/models"
)

// DedupeByTitle collapses records whose normalized titles collide, keeping
// the first occurrence in original order. Needed in query mode only, where
// the primary search and the subreddit fallback can return the same post.
func DedupeByTitle(records []models.SignalRecord) []models.SignalRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.SignalRecord, 0, len(records))

	for _, rec := range records {
		key := strings.ToLower(strings.TrimSpace(rec.Title))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
