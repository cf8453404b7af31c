package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/Bitcoin/hot.json", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer srv.Close()

	rc := &RedditClient{BaseURL: srv.URL, Client: srv.Client()}

	body, err := rc.HotListing(context.Background(), "Bitcoin", 8)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"children":[]}}`, string(body))
}

func TestSearchQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "monad testnet", q.Get("q"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "relevance", q.Get("sort"))
		assert.Equal(t, "link", q.Get("type"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rc := &RedditClient{BaseURL: srv.URL, Client: srv.Client()}

	_, err := rc.Search(context.Background(), "monad testnet", 10)
	require.NoError(t, err)
}

func TestGetJSONFailsFastOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rc := &RedditClient{BaseURL: srv.URL, Client: srv.Client()}

	_, err := rc.HotListing(context.Background(), "nope", 5)
	require.Error(t, err)
	assert.ErrorContains(t, err, "404")
	// 4xx other than 429 is not retryable
	assert.Equal(t, 1, calls)
}

func TestNewRedditClientKeyless(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")

	rc := NewRedditClient()
	assert.Equal(t, REDDIT_PUBLIC_URL, rc.BaseURL)
}

func TestNewRedditClientOAuth(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")

	rc := NewRedditClient()
	assert.Equal(t, REDDIT_OAUTH_URL, rc.BaseURL)
}
