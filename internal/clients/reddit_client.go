package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	REDDIT_PUBLIC_URL = "https://www.reddit.com"
	REDDIT_OAUTH_URL  = "https://oauth.reddit.com"
	REDDIT_AUTH_URL   = "https://www.reddit.com/api/v1/access_token"
)

var (
	redditClientInstance *RedditClient
	redditClientOnce     sync.Once
)

// RedditClient wraps the public JSON API. It returns raw response bodies; the
// fetcher layer owns parsing and normalization.
type RedditClient struct {
	BaseURL string
	Client  *http.Client
}

func GetRedditClient() *RedditClient {
	redditClientOnce.Do(func() {
		redditClientInstance = NewRedditClient()
	})
	return redditClientInstance
}

// NewRedditClient builds a keyless client against the public endpoints. When
// REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are both set it switches to the
// OAuth host with client-credentials auth, which carries a far higher rate
// limit.
func NewRedditClient() *RedditClient {
	clientID := os.Getenv("REDDIT_CLIENT_ID")
	clientSecret := os.Getenv("REDDIT_CLIENT_SECRET")

	if clientID != "" && clientSecret != "" {
		oauthConf := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		client := oauthConf.Client(context.Background())
		client.Timeout = DEFAULT_TIMEOUT

		slog.Info("[RedditClient] Using authenticated OAuth client")
		return &RedditClient{BaseURL: REDDIT_OAUTH_URL, Client: client}
	}

	return &RedditClient{
		BaseURL: REDDIT_PUBLIC_URL,
		Client:  &http.Client{Timeout: DEFAULT_TIMEOUT},
	}
}

// HotListing fetches the hot listing of one subreddit.
func (rc *RedditClient) HotListing(ctx context.Context, subreddit string, limit int) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", rc.BaseURL, url.PathEscape(subreddit), limit)
	return rc.getJSON(ctx, endpoint)
}

// Search runs a sitewide free-text post search.
func (rc *RedditClient) Search(ctx context.Context, query string, limit int) ([]byte, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "relevance")
	params.Set("type", "link")

	endpoint := fmt.Sprintf("%s/search.json?%s", rc.BaseURL, params.Encode())
	return rc.getJSON(ctx, endpoint)
}

// getJSON issues the request with bounded retries. Reddit answers 429 without
// a User-Agent header, so every request carries one.
func (rc *RedditClient) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	backoff := INITIAL_BACKOFF
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("[RedditClient] failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err := rc.Client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return body, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
				slog.Warn("[RedditClient] Retryable status, backing off",
					slog.Int("status", resp.StatusCode),
					slog.Int("attempt", attempt),
					slog.Duration("backoff", backoff))
				lastErr = fmt.Errorf("[RedditClient] status %d", resp.StatusCode)
			default:
				return nil, fmt.Errorf("[RedditClient] unexpected status %d", resp.StatusCode)
			}
		}

		if attempt < MAX_RETRIES {
			time.Sleep(backoff)
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}
		}
	}

	return nil, fmt.Errorf("[RedditClient] request failed after %d attempts: %w", MAX_RETRIES, lastErr)
}
