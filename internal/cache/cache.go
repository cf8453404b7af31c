// Package cache keeps the most recent aggregate score per token in Valkey
// so repeated reads skip the fetch and classify round trip. The cache is
// optional; without VALKEY_INIT_ADDRESS every operation is a no-op.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/sentifi/internal/models"
)

const (
	SCORE_KEY_PREFIX = "sentiment:latest:"
	scoreTTL         = 15 * time.Minute
)

var (
	cacheOnce     sync.Once
	cacheInstance *ScoreCache
)

type ScoreCache struct {
	client valkey.Client
}

// GetScoreCache returns the shared cache, or nil when Valkey is not
// configured or unreachable. All ScoreCache methods are nil-safe.
func GetScoreCache() *ScoreCache {
	cacheOnce.Do(func() {
		addr := os.Getenv("VALKEY_INIT_ADDRESS")
		if addr == "" {
			return
		}

		opts := valkey.ClientOption{
			InitAddress:      []string{addr},
			Password:         os.Getenv("VALKEY_PASSWORD"),
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}
		if os.Getenv("VALKEY_TLS") == "true" {
			opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			slog.Warn("[ScoreCache] failed to create Valkey client, caching disabled",
				slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			slog.Warn("[ScoreCache] failed to ping Valkey, caching disabled",
				slog.String("error", err.Error()))
			client.Close()
			return
		}

		slog.Info("[ScoreCache] Successfully connected to valkey")
		cacheInstance = &ScoreCache{client: client}
	})
	return cacheInstance
}

// SetLatest caches the aggregate for key, which is either a token symbol
// or a free-form query.
func (sc *ScoreCache) SetLatest(ctx context.Context, key string, result models.AggregateSentiment) {
	if sc == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Warn("[ScoreCache] failed to marshal result",
			slog.String("error", err.Error()))
		return
	}

	cmd := sc.client.B().Set().
		Key(SCORE_KEY_PREFIX + key).
		Value(string(payload)).
		Ex(scoreTTL).
		Build()
	if err := sc.client.Do(ctx, cmd).Error(); err != nil {
		slog.Warn("[ScoreCache] failed to cache result",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (sc *ScoreCache) Latest(ctx context.Context, key string) (models.AggregateSentiment, bool) {
	var result models.AggregateSentiment
	if sc == nil {
		return result, false
	}

	res := sc.client.Do(ctx, sc.client.B().Get().Key(SCORE_KEY_PREFIX+key).Build())
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ScoreCache] failed to read cached result",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return result, false
	}

	payload, err := res.AsBytes()
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		slog.Warn("[ScoreCache] failed to decode cached result",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return result, false
	}
	return result, true
}

func (sc *ScoreCache) Close() {
	if sc == nil {
		return
	}
	sc.client.Close()
}
