package fetcher

import (
	"fmt"
	"time"
)

const (
	// TokenHorizon bounds token-keyed live fetches.
	TokenHorizon = 7 * 24 * time.Hour
	// QueryHorizon bounds free-text searches. Niche topics have sparser,
	// older content, so the window is wider.
	QueryHorizon = 30 * 24 * time.Hour
)

// IsFresh reports whether ts falls within horizon of now. A zero timestamp is
// never fresh; adapters that tolerate missing dates check for that first.
func IsFresh(ts time.Time, horizon time.Duration) bool {
	return freshAt(ts, horizon, time.Now())
}

func freshAt(ts time.Time, horizon time.Duration, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return now.Sub(ts) <= horizon
}

// TimeAgo renders the elapsed time since ts as a single-unit relative string
// like "3h ago". Empty for a zero timestamp.
func TimeAgo(ts time.Time) string {
	return timeAgoAt(ts, time.Now())
}

func timeAgoAt(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}

	diff := int(now.Sub(ts).Seconds())
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < 60:
		return fmt.Sprintf("%ds ago", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	default:
		return fmt.Sprintf("%dd ago", diff/86400)
	}
}
