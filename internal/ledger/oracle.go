package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	oracleOnce     sync.Once
	oracleInstance *OracleClient
)

// OracleClient talks to the sentiment oracle contract. Reads go straight
// to the chain over JSON-RPC; writes go through the signing gateway, which
// holds the oracle key and submits the transaction on our behalf.
type OracleClient struct {
	RPCURL     string
	GatewayURL string
	Contract   string
	Client     *http.Client
}

func GetOracleClient() *OracleClient {
	oracleOnce.Do(func() {
		oracleInstance = NewOracleClient()
	})
	return oracleInstance
}

func NewOracleClient() *OracleClient {
	rpcURL := os.Getenv("LEDGER_RPC_URL")
	if rpcURL == "" {
		rpcURL = DEFAULT_RPC_URL
	}

	return &OracleClient{
		RPCURL:     rpcURL,
		GatewayURL: strings.TrimRight(os.Getenv("ORACLE_GATEWAY_URL"), "/"),
		Contract:   os.Getenv("CONTRACT_ADDRESS"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type pushRequest struct {
	Token string `json:"token"`
	Value int64  `json:"value"`
}

type pushResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

// Push records the score for token onchain via the signing gateway and
// returns the transaction hash.
func (o *OracleClient) Push(ctx context.Context, token string, score float64) (string, error) {
	if o.GatewayURL == "" {
		return "", errors.New("[Ledger] ORACLE_GATEWAY_URL not set")
	}
	if score < -1 || score > 1 {
		return "", fmt.Errorf("[Ledger] score %.4f outside [-1, 1]", score)
	}

	payload, err := json.Marshal(pushRequest{Token: token, Value: OnchainValue(score)})
	if err != nil {
		return "", fmt.Errorf("[Ledger] failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.GatewayURL+"/push", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("[Ledger] failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[Ledger] gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("[Ledger] failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("[Ledger] gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out pushResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("[Ledger] failed to decode gateway response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("[Ledger] gateway rejected push: %s", out.Error)
	}
	if out.TxHash == "" {
		return "", errors.New("[Ledger] gateway response missing tx_hash")
	}

	slog.Info("[Ledger] score recorded onchain",
		slog.String("token", token),
		slog.Int64("value", OnchainValue(score)),
		slog.String("tx_hash", out.TxHash))

	return out.TxHash, nil
}

// Read fetches the last recorded score for token from the contract.
func (o *OracleClient) Read(ctx context.Context, token string) (float64, error) {
	if o.Contract == "" {
		return 0, errors.New("[Ledger] CONTRACT_ADDRESS not set")
	}

	callArgs := map[string]string{
		"to":   o.Contract,
		"data": encodeGetSentiment(token),
	}

	result, err := o.call(ctx, "eth_call", callArgs, "latest")
	if err != nil {
		return 0, err
	}

	var hexResult string
	if err := json.Unmarshal(result, &hexResult); err != nil {
		return 0, fmt.Errorf("[Ledger] unexpected eth_call result: %w", err)
	}

	value, err := decodeInt256(hexResult)
	if err != nil {
		return 0, err
	}
	return FromOnchain(value), nil
}

// CheckConnection probes the RPC endpoint. It never returns an error;
// failures are reported through the Status so callers can surface them.
func (o *OracleClient) CheckConnection(ctx context.Context) Status {
	status := Status{RPCURL: o.RPCURL}

	chainResult, err := o.call(ctx, "eth_chainId")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	chainID, err := parseHexQuantity(chainResult)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	blockResult, err := o.call(ctx, "eth_blockNumber")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	block, err := parseHexQuantity(blockResult)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.ChainID = chainID
	status.LatestBlock = block
	return status
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (o *OracleClient) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("[Ledger] failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.RPCURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[Ledger] failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[Ledger] %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[Ledger] RPC returned status %d for %s", resp.StatusCode, method)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("[Ledger] failed to decode %s response: %w", method, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("[Ledger] RPC error %d on %s: %s", out.Error.Code, method, out.Error.Message)
	}
	return out.Result, nil
}

func parseHexQuantity(raw json.RawMessage) (int64, error) {
	var quantity string
	if err := json.Unmarshal(raw, &quantity); err != nil {
		return 0, fmt.Errorf("[Ledger] unexpected quantity result: %w", err)
	}
	quantity = strings.TrimPrefix(quantity, "0x")
	if quantity == "" {
		return 0, errors.New("[Ledger] empty quantity result")
	}
	v, err := strconv.ParseInt(quantity, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("[Ledger] malformed quantity result: %w", err)
	}
	return v, nil
}
