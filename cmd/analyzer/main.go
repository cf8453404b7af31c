package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spacesedan/sentifi/config"
	"github.com/spacesedan/sentifi/internal/fetcher"
	"github.com/spacesedan/sentifi/internal/ledger"
	"github.com/spacesedan/sentifi/internal/logging"
	"github.com/spacesedan/sentifi/internal/sentiment"
)

func main() {
	token := flag.String("token", "", "token symbol to analyze (BTC, ETH, MONAD)")
	query := flag.String("query", "", "free-form query to analyze instead of a token")
	forumLimit := flag.Int("forum-limit", fetcher.DefaultForumLimit, "max forum posts to fetch")
	feedLimit := flag.Int("feed-limit", fetcher.DefaultFeedLimit, "max feed items to fetch")
	backend := flag.String("backend", "", "sentiment backend: hugot, vader, or openai")
	push := flag.Bool("push", false, "record the score onchain after analysis")
	flag.Parse()

	if *token == "" && *query == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -token BTC | -query \"some topic\"")
		os.Exit(2)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	classifier, err := sentiment.NewClassifier(*backend)
	if err != nil {
		slog.Error("[Analyzer] failed to create classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	f := fetcher.NewDefault()

	result := f.FetchQuery(ctx, *query, *forumLimit, *feedLimit)
	if *token != "" {
		result = f.FetchToken(ctx, *token, *forumLimit, *feedLimit)
	}

	analyzer := sentiment.NewAnalyzer(classifier)
	aggregate := analyzer.AnalyzeDetailed(ctx, result.CombinedTexts)

	out, err := json.MarshalIndent(map[string]any{
		"fetch":     result,
		"sentiment": aggregate,
	}, "", "  ")
	if err != nil {
		slog.Error("[Analyzer] failed to render output", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(string(out))

	if *push {
		if *token == "" {
			slog.Error("[Analyzer] -push requires -token")
			os.Exit(1)
		}

		txHash, err := ledger.GetOracleClient().Push(ctx, *token, aggregate.Score)
		if err != nil {
			slog.Error("[Analyzer] push failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("tx: %s\n%s\n", txHash, ledger.ExplorerURL(txHash))
	}
}
