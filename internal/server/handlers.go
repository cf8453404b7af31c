package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentifi/internal/cache"
	"github.com/spacesedan/sentifi/internal/fetcher"
	"github.com/spacesedan/sentifi/internal/ledger"
	"github.com/spacesedan/sentifi/internal/models"
	"github.com/spacesedan/sentifi/internal/publisher"
	"github.com/spacesedan/sentifi/internal/store"
	"github.com/spacesedan/sentifi/internal/topics"
)

type handlers struct {
	deps Deps
}

type fetchRequest struct {
	Token      string `json:"token"`
	Query      string `json:"query"`
	ForumLimit int    `json:"forum_limit"`
	FeedLimit  int    `json:"feed_limit"`
}

func (fr *fetchRequest) subject() string {
	if fr.Token != "" {
		return strings.ToUpper(strings.TrimSpace(fr.Token))
	}
	return strings.TrimSpace(fr.Query)
}

func (fr *fetchRequest) applyDefaults() {
	if fr.ForumLimit <= 0 {
		fr.ForumLimit = fetcher.DefaultForumLimit
	}
	if fr.FeedLimit <= 0 {
		fr.FeedLimit = fetcher.DefaultFeedLimit
	}
}

func (fr *fetchRequest) fetch(c *gin.Context, f *fetcher.Fetcher) models.FetchResult {
	if fr.Token != "" {
		return f.FetchToken(c.Request.Context(), fr.Token, fr.ForumLimit, fr.FeedLimit)
	}
	return f.FetchQuery(c.Request.Context(), fr.Query, fr.ForumLimit, fr.FeedLimit)
}

func (h *handlers) Status(c *gin.Context) {
	status := h.deps.Ledger.CheckConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"service": "sentifi",
		"ledger":  status,
	})
}

func (h *handlers) Tokens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tokens": topics.Tokens()})
}

func (h *handlers) Fetch(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Token == "" && strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token or query is required"})
		return
	}
	req.applyDefaults()

	c.JSON(http.StatusOK, req.fetch(c, h.deps.Fetcher))
}

func (h *handlers) Analyze(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Token == "" && strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token or query is required"})
		return
	}
	req.applyDefaults()

	result := req.fetch(c, h.deps.Fetcher)
	aggregate := h.deps.Analyzer.AnalyzeDetailed(c.Request.Context(), result.CombinedTexts)

	snapshot := models.SentimentSnapshot{
		Token:        strings.ToUpper(strings.TrimSpace(req.Token)),
		Query:        strings.TrimSpace(req.Query),
		Score:        aggregate.Score,
		Confidence:   aggregate.Confidence,
		BullishCount: aggregate.BullishCount,
		BearishCount: aggregate.BearishCount,
		Total:        result.Total,
		Model:        aggregate.Model,
	}
	if err := store.SaveSnapshot(&snapshot); err != nil {
		slog.Warn("[Server] failed to save snapshot", slog.String("error", err.Error()))
	}
	if store.ArchiveEnabled() {
		if err := store.ArchiveSnapshots(c.Request.Context(), []models.SentimentSnapshot{snapshot}); err != nil {
			slog.Warn("[Server] failed to archive snapshot", slog.String("error", err.Error()))
		}
	}

	cache.GetScoreCache().SetLatest(c.Request.Context(), req.subject(), aggregate)

	if publisher.Enabled() {
		if err := publisher.PublishSnapshot(snapshot); err != nil {
			slog.Warn("[Server] failed to publish snapshot", slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"fetch":       result,
		"sentiment":   aggregate,
		"snapshot_id": snapshot.ID,
	})
}

type pushRequest struct {
	Token      string  `json:"token"`
	Score      float64 `json:"score"`
	SnapshotID uint    `json:"snapshot_id"`
}

func (h *handlers) Push(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token := strings.ToUpper(strings.TrimSpace(req.Token))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	txHash, err := h.deps.Ledger.Push(c.Request.Context(), token, req.Score)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if req.SnapshotID != 0 {
		if err := store.SetTxHash(req.SnapshotID, txHash); err != nil {
			slog.Warn("[Server] failed to record tx hash", slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tx_hash":       txHash,
		"explorer_url":  ledger.ExplorerURL(txHash),
		"onchain_value": ledger.OnchainValue(req.Score),
	})
}

func (h *handlers) ReadOnchain(c *gin.Context) {
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))

	score, err := h.deps.Ledger.Read(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"score": score,
	})
}

// Latest serves the cached aggregate for a token or query without touching
// the upstreams. Misses are a 404; clients fall back to /analyze.
func (h *handlers) Latest(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	sc := cache.GetScoreCache()
	if result, ok := sc.Latest(c.Request.Context(), key); ok {
		c.JSON(http.StatusOK, result)
		return
	}
	if upper := strings.ToUpper(key); upper != key {
		if result, ok := sc.Latest(c.Request.Context(), upper); ok {
			c.JSON(http.StatusOK, result)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no cached result"})
}

func (h *handlers) History(c *gin.Context) {
	token := strings.ToUpper(strings.TrimSpace(c.Query("token")))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	snapshots, err := store.RecentSnapshots(token, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
