package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/sentifi/internal/models"
)

func TestDedupeByTitle(t *testing.T) {
	records := []models.SignalRecord{
		{Title: "Bitcoin dips below 60k", SourceName: "search"},
		{Title: "ETH gas fees spike", SourceName: "search"},
		{Title: "  bitcoin dips below 60K ", SourceName: "Bitcoin"},
		{Title: "Bitcoin dips below 60k", SourceName: "Bitcoin"},
		{Title: "Monad testnet live", SourceName: "monad"},
	}

	out := DedupeByTitle(records)

	assert.Len(t, out, 3)
	assert.Equal(t, "Bitcoin dips below 60k", out[0].Title)
	assert.Equal(t, "ETH gas fees spike", out[1].Title)
	assert.Equal(t, "Monad testnet live", out[2].Title)

	// first occurrence wins, so the search copy survives over the fallback copy
	assert.Equal(t, "search", out[0].SourceName)
}

func TestDedupeByTitleEmpty(t *testing.T) {
	assert.Empty(t, DedupeByTitle(nil))
	assert.Empty(t, DedupeByTitle([]models.SignalRecord{}))
}
