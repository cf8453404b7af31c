// Package server exposes the pipeline over HTTP: fetch, analyze, push
// onchain, and read back history.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentifi/internal/fetcher"
	"github.com/spacesedan/sentifi/internal/ledger"
	"github.com/spacesedan/sentifi/internal/sentiment"
)

type Deps struct {
	Fetcher  *fetcher.Fetcher
	Analyzer *sentiment.Analyzer
	Ledger   ledger.Client
}

func New(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	h := &handlers{deps: deps}

	api := r.Group("/api")
	{
		api.GET("/status", h.Status)
		api.GET("/tokens", h.Tokens)
		api.POST("/fetch", h.Fetch)
		api.POST("/analyze", h.Analyze)
		api.POST("/push", h.Push)
		api.GET("/sentiment/:token", h.ReadOnchain)
		api.GET("/latest/:key", h.Latest)
		api.GET("/history", h.History)
	}

	return r
}
