// Package fetcher implements the signal pipeline's fetch half: source
// adapters for Reddit and RSS upstreams, freshness and relevance filtering,
// title deduplication, and the two aggregation entry points that compose
// them. Nothing here ever returns an error for a network condition; the worst
// case is an empty FetchResult.
package fetcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spacesedan/sentifi/internal/clients"
	"github.com/spacesedan/sentifi/internal/models"
	"github.com/spacesedan/sentifi/internal/topics"
)

const (
	DefaultForumLimit = 8
	DefaultFeedLimit  = 10

	// fallbackThreshold is the search result count below which query mode
	// broadens into the detected topic's home subreddit.
	fallbackThreshold = 4
)

// Fetcher composes the source adapters into the two aggregation operations.
type Fetcher struct {
	forum *RedditAdapter
	feeds *FeedAdapter
}

func New(forum *RedditAdapter, feeds *FeedAdapter) *Fetcher {
	return &Fetcher{forum: forum, feeds: feeds}
}

// NewDefault wires the production adapters: the shared Reddit client and the
// fixed news upstreams.
func NewDefault() *Fetcher {
	return New(
		NewRedditAdapter(clients.GetRedditClient()),
		NewFeedAdapter(DefaultFeeds(), clients.DEFAULT_TIMEOUT),
	)
}

// FetchToken gathers fresh signals for a registered token: its home subreddit
// plus the news feeds, both filtered by the token's keyword list, 7-day
// horizon. Single query per source, so no dedup and no fallback.
func (f *Fetcher) FetchToken(ctx context.Context, token string, forumLimit, feedLimit int) models.FetchResult {
	topic, ok := topics.Lookup(token)
	if !ok {
		slog.Warn("[Fetcher] Unknown token", slog.String("token", token))
		return models.BuildFetchResult(nil, nil)
	}

	forum := f.forum.FetchHot(ctx, topic.Subreddit, topic.Keywords, forumLimit, TokenHorizon)
	feed := f.feeds.Fetch(ctx, topic.Keywords, feedLimit, TokenHorizon)

	return models.BuildFetchResult(forum, feed)
}

// FetchQuery searches Reddit and the news feeds for a free-text topic, 30-day
// horizon. A thin search result usually means the topic lives in a single
// community, so it broadens into the detected topic's subreddit before the
// forum stream is deduplicated by title. An empty query short-circuits to an
// empty result without touching the network.
func (f *Fetcher) FetchQuery(ctx context.Context, query string, forumLimit, feedLimit int) models.FetchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.BuildFetchResult(nil, nil)
	}

	keywords := QueryKeywords(query)
	forum := f.forum.FetchSearch(ctx, query, keywords, forumLimit, QueryHorizon)

	if len(forum) < fallbackThreshold {
		if topic, ok := topics.Detect(query); ok {
			slog.Info("[Fetcher] Broadening thin search via subreddit fallback",
				slog.String("query", query),
				slog.String("subreddit", topic.Subreddit),
				slog.Int("search_results", len(forum)))
			forum = append(forum, f.forum.FetchFallback(ctx, topic.Subreddit, forumLimit, QueryHorizon)...)
		}
	}
	forum = DedupeByTitle(forum)

	feed := f.feeds.Fetch(ctx, keywords, feedLimit, QueryHorizon)

	return models.BuildFetchResult(forum, feed)
}
