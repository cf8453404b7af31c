package fetcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/sentifi/internal/clients"
	"github.com/spacesedan/sentifi/internal/models"
)

// RedditAdapter turns Reddit listings into normalized signal records. Every
// fetch fails soft: a network or parse error yields an empty slice and a log
// line, never an error to the caller.
type RedditAdapter struct {
	client *clients.RedditClient
}

func NewRedditAdapter(client *clients.RedditClient) *RedditAdapter {
	return &RedditAdapter{client: client}
}

// FetchHot pulls the hot listing of a subreddit, keeping posts that are
// fresh within horizon and mention at least one keyword.
func (a *RedditAdapter) FetchHot(ctx context.Context, subreddit string, keywords []string, limit int, horizon time.Duration) []models.SignalRecord {
	raw, err := a.client.HotListing(ctx, subreddit, limit)
	if err != nil {
		slog.Warn("[RedditAdapter] Hot listing fetch failed",
			slog.String("subreddit", subreddit),
			slog.String("error", err.Error()))
		return nil
	}
	return a.parseListing(raw, subreddit, keywords, limit, horizon, false)
}

// FetchSearch runs a sitewide post search for a free-text query.
func (a *RedditAdapter) FetchSearch(ctx context.Context, query string, keywords []string, limit int, horizon time.Duration) []models.SignalRecord {
	raw, err := a.client.Search(ctx, query, limit)
	if err != nil {
		slog.Warn("[RedditAdapter] Search failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil
	}
	return a.parseListing(raw, "search", keywords, limit, horizon, false)
}

// FetchFallback re-queries a topic's home subreddit when a search came back
// thin. No keyword filter here, the subreddit itself scopes the topic, and
// posts without a creation timestamp pass the freshness gate as fresh.
func (a *RedditAdapter) FetchFallback(ctx context.Context, subreddit string, limit int, horizon time.Duration) []models.SignalRecord {
	raw, err := a.client.HotListing(ctx, subreddit, limit)
	if err != nil {
		slog.Warn("[RedditAdapter] Subreddit fallback failed",
			slog.String("subreddit", subreddit),
			slog.String("error", err.Error()))
		return nil
	}
	return a.parseListing(raw, subreddit, nil, limit, horizon, true)
}

func (a *RedditAdapter) parseListing(raw []byte, sourceName string, keywords []string, limit int, horizon time.Duration, freshByDefault bool) []models.SignalRecord {
	var listing models.RedditListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		slog.Warn("[RedditAdapter] Failed to parse listing",
			slog.String("source", sourceName),
			slog.String("error", err.Error()))
		return nil
	}

	records := make([]models.SignalRecord, 0, limit)
	for _, child := range listing.Data.Children {
		if len(records) >= limit {
			break
		}
		post := child.Data

		title := strings.TrimSpace(post.Title)
		body := strings.TrimSpace(post.Selftext)
		if post.Stickied || body == "[removed]" || body == "[deleted]" {
			body = ""
		}

		var created time.Time
		if post.CreatedUTC > 0 {
			created = time.Unix(int64(post.CreatedUTC), 0).UTC()
		}
		if created.IsZero() {
			if !freshByDefault {
				continue
			}
		} else if !IsFresh(created, horizon) {
			continue
		}

		if !MatchesAny(title, body, keywords) {
			continue
		}

		text := combineText(title, body)
		if text == "" {
			continue
		}

		subreddit := post.Subreddit
		if subreddit == "" {
			subreddit = sourceName
		}

		records = append(records, models.SignalRecord{
			Title:       title,
			Text:        text,
			URL:         "https://reddit.com" + post.Permalink,
			SourceName:  subreddit,
			Origin:      models.OriginForum,
			Upvotes:     post.Ups,
			PublishedAt: created,
			Age:         TimeAgo(created),
		})
	}

	return records
}
