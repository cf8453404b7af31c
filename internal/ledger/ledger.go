// Package ledger is the narrow boundary to the SentimentOracle contract.
// Reads go straight to the chain over JSON-RPC; writes are delegated to the
// signing gateway, which owns key material, gas pricing, and submission.
package ledger

import (
	"context"
	"math"
	"strings"
)

const (
	DEFAULT_RPC_URL = "https://testnet-rpc.monad.xyz"
	EXPLORER_TX_URL = "https://testnet.monadexplorer.com/tx/"
)

// Client is everything the application needs from the ledger collaborator.
type Client interface {
	// Push records a score onchain and returns the transaction hash.
	Push(ctx context.Context, token string, score float64) (string, error)
	// Read returns the score currently stored for a token.
	Read(ctx context.Context, token string) (float64, error)
	// CheckConnection probes the RPC endpoint. Never fatal.
	CheckConnection(ctx context.Context) Status
}

// Status describes RPC reachability for the dashboard badge.
type Status struct {
	Connected   bool   `json:"connected"`
	ChainID     int64  `json:"chain_id,omitempty"`
	LatestBlock int64  `json:"latest_block,omitempty"`
	RPCURL      string `json:"rpc_url"`
	Error       string `json:"error,omitempty"`
}

// OnchainValue converts a [-1, +1] score to its integer ledger encoding,
// e.g. 0.756 becomes 76. The single encoding point for the whole system.
func OnchainValue(score float64) int64 {
	return int64(math.Round(score * 100))
}

// FromOnchain inverts OnchainValue.
func FromOnchain(v int64) float64 {
	return float64(v) / 100.0
}

// ExplorerURL returns the explorer page for a transaction hash.
func ExplorerURL(txHash string) string {
	return EXPLORER_TX_URL + "0x" + strings.TrimPrefix(txHash, "0x")
}
