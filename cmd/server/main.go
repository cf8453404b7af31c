package main

import (
	"log/slog"
	"os"

	"github.com/spacesedan/sentifi/config"
	"github.com/spacesedan/sentifi/internal/fetcher"
	"github.com/spacesedan/sentifi/internal/ledger"
	"github.com/spacesedan/sentifi/internal/logging"
	"github.com/spacesedan/sentifi/internal/publisher"
	"github.com/spacesedan/sentifi/internal/sentiment"
	"github.com/spacesedan/sentifi/internal/server"
	"github.com/spacesedan/sentifi/internal/store"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	if err := store.InitHistory(); err != nil {
		slog.Error("[Server] failed to open history db", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if publisher.Enabled() {
		if err := publisher.InitProducer(); err != nil {
			slog.Warn("[Server] Kafka unavailable, snapshot publishing disabled",
				slog.String("error", err.Error()))
		} else {
			defer publisher.CloseProducer()
		}
	}

	classifier, err := sentiment.NewClassifier(os.Getenv("SENTIMENT_BACKEND"))
	if err != nil {
		slog.Error("[Server] failed to create classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := server.New(server.Deps{
		Fetcher:  fetcher.NewDefault(),
		Analyzer: sentiment.NewAnalyzer(classifier),
		Ledger:   ledger.GetOracleClient(),
	})

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	slog.Info("[Server] Starting", slog.String("addr", addr))
	if err := r.Run(addr); err != nil {
		slog.Error("[Server] stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
