package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	topic, ok := Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "Bitcoin", topic.Subreddit)
	assert.Contains(t, topic.Keywords, "btc")

	// case and whitespace insensitive
	topic, ok = Lookup("  eth ")
	require.True(t, ok)
	assert.Equal(t, "ethereum", topic.Subreddit)

	_, ok = Lookup("DOGE")
	assert.False(t, ok)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"MONAD", "BTC", "ETH"}, Tokens())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		query string
		token string
		found bool
	}{
		{"what is happening with bitcoin today", "BTC", true},
		{"BTC price prediction", "BTC", true},
		{"ethereum merge upgrade", "ETH", true},
		{"vitalik gave a talk", "ETH", true},
		{"monad testnet performance", "MONAD", true},
		{"solana outage report", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			topic, ok := Detect(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.token, topic.Token)
			}
		})
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	// "monad" outranks "eth" when both appear
	topic, ok := Detect("monad vs ethereum benchmarks")
	require.True(t, ok)
	assert.Equal(t, "MONAD", topic.Token)
}
