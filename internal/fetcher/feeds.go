package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/spacesedan/sentifi/internal/clients"
	"github.com/spacesedan/sentifi/internal/models"
)

// Feed identifies one syndication upstream.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds returns the fixed news upstreams. All three are keyless.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
		{Name: "Decrypt", URL: "https://decrypt.co/feed"},
		{Name: "CoinGape", URL: "https://coingape.com/feed/"},
	}
}

// FeedAdapter fetches and normalizes RSS items across the configured
// upstreams. Like the forum adapter it fails soft per upstream.
type FeedAdapter struct {
	feeds  []Feed
	parser *gofeed.Parser
}

func NewFeedAdapter(feeds []Feed, timeout time.Duration) *FeedAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = clients.USER_AGENT
	parser.Client = &http.Client{Timeout: timeout}

	return &FeedAdapter{feeds: feeds, parser: parser}
}

// Fetch walks the upstreams in configured order until limit records are
// collected. The limit is global across upstreams and is checked before each
// upstream is queried at all.
func (a *FeedAdapter) Fetch(ctx context.Context, keywords []string, limit int, horizon time.Duration) []models.SignalRecord {
	records := make([]models.SignalRecord, 0, limit)

	for _, feed := range a.feeds {
		if len(records) >= limit {
			break
		}

		parsed, err := a.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			slog.Warn("[FeedAdapter] Feed fetch failed",
				slog.String("feed", feed.Name),
				slog.String("error", err.Error()))
			continue
		}

		for _, item := range parsed.Items {
			if len(records) >= limit {
				break
			}
			rec, ok := normalizeItem(feed.Name, item, keywords, horizon)
			if !ok {
				continue
			}
			records = append(records, rec)
		}
	}

	return records
}

func normalizeItem(feedName string, item *gofeed.Item, keywords []string, horizon time.Duration) (models.SignalRecord, bool) {
	title := strings.TrimSpace(item.Title)
	desc := strings.TrimSpace(item.Description)

	if !MatchesAny(title, desc, keywords) {
		return models.SignalRecord{}, false
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}
	// An item without a parsable date cannot fail the freshness gate.
	if !published.IsZero() && !IsFresh(published, horizon) {
		return models.SignalRecord{}, false
	}

	clean := truncateRunes(StripTags(desc), maxBodyChars)
	text := title
	if clean != "" && !strings.EqualFold(clean, title) {
		text = title + " — " + clean
	}
	if text == "" {
		return models.SignalRecord{}, false
	}

	return models.SignalRecord{
		Title:       title,
		Text:        text,
		URL:         strings.TrimSpace(item.Link),
		SourceName:  feedName,
		Origin:      models.OriginFeed,
		PublishedAt: published,
		Age:         feedAge(item, published),
	}, true
}

// feedAge prefers a parsed date; when the upstream publishes something the
// parser cannot read, the raw date prefix is better than nothing.
func feedAge(item *gofeed.Item, published time.Time) string {
	if !published.IsZero() {
		return TimeAgo(published)
	}
	raw := strings.TrimSpace(item.Published)
	if len(raw) > 16 {
		return raw[:16]
	}
	return raw
}
