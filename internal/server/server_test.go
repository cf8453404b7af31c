package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentifi/internal/ledger"
	"github.com/spacesedan/sentifi/internal/store"
)

// stubLedger satisfies ledger.Client without any chain access.
type stubLedger struct {
	pushTx   string
	pushErr  error
	readVal  float64
	readErr  error
	lastPush struct {
		token string
		score float64
	}
}

func (s *stubLedger) Push(ctx context.Context, token string, score float64) (string, error) {
	s.lastPush.token = token
	s.lastPush.score = score
	return s.pushTx, s.pushErr
}

func (s *stubLedger) Read(ctx context.Context, token string) (float64, error) {
	return s.readVal, s.readErr
}

func (s *stubLedger) CheckConnection(ctx context.Context) ledger.Status {
	return ledger.Status{Connected: true, ChainID: 10143, RPCURL: "stub"}
}

func newTestServer(t *testing.T, l ledger.Client) http.Handler {
	t.Helper()
	t.Setenv("HISTORY_DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.InitHistory())
	return New(Deps{Ledger: l})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Service string        `json:"service"`
		Ledger  ledger.Status `json:"ledger"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sentifi", body.Service)
	assert.True(t, body.Ledger.Connected)
	assert.Equal(t, int64(10143), body.Ledger.ChainID)
}

func TestTokens(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodGet, "/api/tokens", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tokens []string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"MONAD", "BTC", "ETH"}, body.Tokens)
}

func TestFetchRequiresSubject(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodPost, "/api/fetch", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/fetch", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/fetch", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeRequiresSubject(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodPost, "/api/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPush(t *testing.T) {
	stub := &stubLedger{pushTx: "0xdeadbeef"}
	h := newTestServer(t, stub)

	w := doJSON(t, h, http.MethodPost, "/api/push", `{"token":"btc","score":0.756}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TxHash       string `json:"tx_hash"`
		ExplorerURL  string `json:"explorer_url"`
		OnchainValue int64  `json:"onchain_value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "0xdeadbeef", body.TxHash)
	assert.Equal(t, ledger.ExplorerURL("0xdeadbeef"), body.ExplorerURL)
	assert.Equal(t, int64(76), body.OnchainValue)

	// token is normalized before the ledger sees it
	assert.Equal(t, "BTC", stub.lastPush.token)
}

func TestPushValidationAndFailure(t *testing.T) {
	h := newTestServer(t, &stubLedger{pushErr: errors.New("gateway down")})

	w := doJSON(t, h, http.MethodPost, "/api/push", `{"score":0.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/push", `{"token":"BTC","score":0.5}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReadOnchain(t *testing.T) {
	h := newTestServer(t, &stubLedger{readVal: 0.76})

	w := doJSON(t, h, http.MethodGet, "/api/sentiment/btc", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string  `json:"token"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "BTC", body.Token)
	assert.Equal(t, 0.76, body.Score)
}

func TestReadOnchainFailure(t *testing.T) {
	h := newTestServer(t, &stubLedger{readErr: errors.New("rpc unreachable")})

	w := doJSON(t, h, http.MethodGet, "/api/sentiment/btc", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestLatestMissWithoutCache(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodGet, "/api/latest/BTC", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEmpty(t *testing.T) {
	h := newTestServer(t, &stubLedger{})

	w := doJSON(t, h, http.MethodGet, "/api/history?token=BTC", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Snapshots []json.RawMessage `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Snapshots)
}
