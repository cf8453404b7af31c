package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentifi/internal/clients"
	"github.com/spacesedan/sentifi/internal/models"
)

func redditPost(title, body, subreddit string, created time.Time, ups int) models.RedditChild {
	var createdUTC float64
	if !created.IsZero() {
		createdUTC = float64(created.Unix())
	}
	return models.RedditChild{Data: models.RedditPostData{
		Subreddit:  subreddit,
		Title:      title,
		Selftext:   body,
		Permalink:  "/r/" + subreddit + "/comments/abc123/",
		Ups:        ups,
		CreatedUTC: createdUTC,
	}}
}

func listingJSON(t *testing.T, children ...models.RedditChild) []byte {
	t.Helper()
	raw, err := json.Marshal(models.RedditListing{
		Data: models.RedditListingData{Children: children},
	})
	require.NoError(t, err)
	return raw
}

func rssFeed(items ...string) string {
	body := ""
	for _, item := range items {
		body += item
	}
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<rss version="2.0"><channel><title>Test Feed</title>` + body + `</channel></rss>`
}

func rssItem(title, description string, published time.Time) string {
	pubDate := ""
	if !published.IsZero() {
		pubDate = "<pubDate>" + published.Format(time.RFC1123Z) + "</pubDate>"
	}
	return fmt.Sprintf("<item><title>%s</title><description>%s</description>"+
		"<link>https://example.com/a</link>%s</item>", title, description, pubDate)
}

func newTestFetcher(redditHandler, feedHandler http.HandlerFunc) (*Fetcher, *httptest.Server, *httptest.Server) {
	redditSrv := httptest.NewServer(redditHandler)
	feedSrv := httptest.NewServer(feedHandler)

	forum := NewRedditAdapter(&clients.RedditClient{
		BaseURL: redditSrv.URL,
		Client:  redditSrv.Client(),
	})
	feeds := NewFeedAdapter([]Feed{{Name: "TestFeed", URL: feedSrv.URL}}, 2*time.Second)

	return New(forum, feeds), redditSrv, feedSrv
}

func TestFetchTokenCombinesForumAndFeeds(t *testing.T) {
	now := time.Now().UTC()

	listing := listingJSON(t,
		redditPost("Bitcoin breaks resistance", "bull run incoming", "Bitcoin", now.Add(-2*time.Hour), 120),
		redditPost("Why BTC mining difficulty matters", "", "Bitcoin", now.Add(-5*time.Hour), 40),
		redditPost("My cat learned a trick", "totally off topic", "Bitcoin", now.Add(-time.Hour), 900),
		redditPost("Daily discussion thread", "nothing relevant here", "Bitcoin", now.Add(-3*time.Hour), 10),
		redditPost("Sold all my bitcoin today", "[removed]", "Bitcoin", now.Add(-8*time.Hour), 66),
	)

	feed := rssFeed(
		rssItem("Bitcoin ETF inflows surge", "Institutional demand keeps climbing.", now.Add(-4*time.Hour)),
		rssItem("Ethereum staking update", "Nothing about the other chain.", now.Add(-time.Hour)),
		rssItem("BTC miners brace for halving", "", now.Add(-26*time.Hour)),
	)

	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/r/Bitcoin/hot.json", r.URL.Path)
			w.Write(listing)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, feed)
		},
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchToken(context.Background(), "BTC", 8, 10)

	require.Len(t, result.ForumItems, 3)
	require.Len(t, result.FeedItems, 2)
	assert.True(t, result.ForumOK)
	assert.True(t, result.FeedOK)
	assert.Equal(t, 5, result.Total)

	// combined texts are forum first, then feeds, in upstream order
	require.Len(t, result.CombinedTexts, 5)
	assert.Equal(t, "Bitcoin breaks resistance — bull run incoming", result.CombinedTexts[0])
	assert.Equal(t, "Why BTC mining difficulty matters", result.CombinedTexts[1])
	assert.Equal(t, "Sold all my bitcoin today", result.CombinedTexts[2])
	assert.Equal(t, "Bitcoin ETF inflows surge — Institutional demand keeps climbing.", result.CombinedTexts[3])
	assert.Equal(t, "BTC miners brace for halving", result.CombinedTexts[4])

	first := result.ForumItems[0]
	assert.Equal(t, models.OriginForum, first.Origin)
	assert.Equal(t, "Bitcoin", first.SourceName)
	assert.Equal(t, 120, first.Upvotes)
	assert.Equal(t, "2h ago", first.Age)
	assert.Equal(t, "https://reddit.com/r/Bitcoin/comments/abc123/", first.URL)

	assert.Equal(t, models.OriginFeed, result.FeedItems[0].Origin)
	assert.Equal(t, "TestFeed", result.FeedItems[0].SourceName)
}

func TestFetchTokenDropsStaleForumPosts(t *testing.T) {
	now := time.Now().UTC()

	listing := listingJSON(t,
		redditPost("Bitcoin ten days ago", "", "Bitcoin", now.Add(-10*24*time.Hour), 5),
		redditPost("Bitcoin just now", "", "Bitcoin", now.Add(-time.Minute), 5),
		redditPost("Bitcoin with no timestamp", "", "Bitcoin", time.Time{}, 5),
	)

	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) { w.Write(listing) },
		func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, rssFeed()) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchToken(context.Background(), "BTC", 8, 10)

	require.Len(t, result.ForumItems, 1)
	assert.Equal(t, "Bitcoin just now", result.ForumItems[0].Title)
}

func TestFetchTokenUnknownToken(t *testing.T) {
	var calls atomic.Int32
	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) { calls.Add(1) },
		func(w http.ResponseWriter, r *http.Request) { calls.Add(1) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchToken(context.Background(), "DOGE", 8, 10)

	assert.Zero(t, result.Total)
	assert.False(t, result.ForumOK)
	assert.False(t, result.FeedOK)
	assert.NotNil(t, result.CombinedTexts)
	assert.Zero(t, calls.Load())
}

func TestFetchQueryEmptyShortCircuits(t *testing.T) {
	var calls atomic.Int32
	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) { calls.Add(1) },
		func(w http.ResponseWriter, r *http.Request) { calls.Add(1) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchQuery(context.Background(), "   ", 8, 10)

	assert.Zero(t, result.Total)
	assert.Zero(t, calls.Load())
}

func TestFetchQueryFallbackAndDedupe(t *testing.T) {
	now := time.Now().UTC()

	searchListing := listingJSON(t,
		redditPost("Bitcoin halving countdown", "", "CryptoCurrency", now.Add(-24*time.Hour), 30),
		redditPost("bitcoin fees are wild", "", "Bitcoin", now.Add(-48*time.Hour), 12),
	)
	// the fallback returns one duplicate of a search hit plus one new post
	hotListing := listingJSON(t,
		redditPost("Bitcoin halving countdown", "", "Bitcoin", now.Add(-24*time.Hour), 700),
		redditPost("Long term holders are unfazed", "", "Bitcoin", now.Add(-6*time.Hour), 88),
	)

	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search.json":
				assert.Equal(t, "bitcoin halving", r.URL.Query().Get("q"))
				w.Write(searchListing)
			case "/r/Bitcoin/hot.json":
				w.Write(hotListing)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		},
		func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, rssFeed()) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchQuery(context.Background(), "bitcoin halving", 8, 10)

	// 2 search hits + 2 fallback posts, minus the shared title
	require.Len(t, result.ForumItems, 3)
	assert.Equal(t, "Bitcoin halving countdown", result.ForumItems[0].Title)
	assert.Equal(t, "CryptoCurrency", result.ForumItems[0].SourceName)
	assert.Equal(t, "bitcoin fees are wild", result.ForumItems[1].Title)
	assert.Equal(t, "Long term holders are unfazed", result.ForumItems[2].Title)
}

func TestFetchQueryNoFallbackWhenSearchIsRich(t *testing.T) {
	now := time.Now().UTC()

	searchListing := listingJSON(t,
		redditPost("bitcoin one", "", "a", now.Add(-time.Hour), 1),
		redditPost("bitcoin two", "", "b", now.Add(-time.Hour), 1),
		redditPost("bitcoin three", "", "c", now.Add(-time.Hour), 1),
		redditPost("bitcoin four", "", "d", now.Add(-time.Hour), 1),
	)

	var hotCalls atomic.Int32
	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/search.json" {
				w.Write(searchListing)
				return
			}
			hotCalls.Add(1)
		},
		func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, rssFeed()) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchQuery(context.Background(), "bitcoin news", 8, 10)

	assert.Len(t, result.ForumItems, 4)
	assert.Zero(t, hotCalls.Load())
}

func TestFetchTokenSourceFailureIsSoft(t *testing.T) {
	f, redditSrv, feedSrv := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
	)
	defer redditSrv.Close()
	defer feedSrv.Close()

	result := f.FetchToken(context.Background(), "ETH", 8, 10)

	assert.False(t, result.ForumOK)
	assert.False(t, result.FeedOK)
	assert.Zero(t, result.Total)
	assert.NotNil(t, result.CombinedTexts)
}

func TestFeedAdapterGlobalLimit(t *testing.T) {
	now := time.Now().UTC()
	feed := rssFeed(
		rssItem("one", "", now),
		rssItem("two", "", now),
		rssItem("three", "", now),
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	a := NewFeedAdapter([]Feed{
		{Name: "A", URL: srv.URL},
		{Name: "B", URL: srv.URL},
	}, 2*time.Second)

	records := a.Fetch(context.Background(), nil, 2, QueryHorizon)

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].SourceName)
	assert.Equal(t, "A", records[1].SourceName)
}

func TestFeedItemWithoutDatePassesFreshness(t *testing.T) {
	feed := rssFeed(rssItem("undated bitcoin story", "still counts", time.Time{}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	a := NewFeedAdapter([]Feed{{Name: "A", URL: srv.URL}}, 2*time.Second)
	records := a.Fetch(context.Background(), []string{"bitcoin"}, 10, TokenHorizon)

	require.Len(t, records, 1)
	assert.True(t, records[0].PublishedAt.IsZero())
}
