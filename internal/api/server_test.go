package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memex-agent/internal/chaindata"
	"memex-agent/internal/decision"
	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/marketdata"
	"memex-agent/internal/pipeline"
	"memex-agent/internal/scanner"
	"memex-agent/internal/storage/memory"
	"memex-agent/internal/whale"
)

type stubPairs struct {
	pairs []marketdata.Pair
}

func (s *stubPairs) SearchPairs(_ context.Context, _ string) ([]marketdata.Pair, error) {
	return s.pairs, nil
}

type stubTransfers struct {
	transfers map[string][]chaindata.TokenTransfer
}

func (s *stubTransfers) TokenTransfers(_ context.Context, address string) ([]chaindata.TokenTransfer, error) {
	return s.transfers[address], nil
}

func memePair(symbol string) marketdata.Pair {
	p := marketdata.Pair{ChainID: "base"}
	p.BaseToken.Address = "0x" + symbol
	p.BaseToken.Name = symbol + " meme"
	p.BaseToken.Symbol = symbol
	p.Liquidity.Usd = 60_000
	p.Volume.H24 = 150_000
	p.PriceChange.H24 = 60
	p.Txns.H24.Buys = 10
	p.Txns.H24.Sells = 2
	return p
}

func newTestServer(t *testing.T, pairs []marketdata.Pair, transfers map[string][]chaindata.TokenTransfer, watchlist []string) (*httptest.Server, *eventlog.Log) {
	t.Helper()
	events := eventlog.New(nil)
	sc := scanner.New(&stubPairs{pairs: pairs}, "base", events)
	tr := whale.New(&stubTransfers{transfers: transfers}, watchlist, events)
	ex := executor.New(memory.NewPositionStore(), memory.NewTradeStore(), tr, decision.NewEngine(), "0xwallet", events)
	srv := NewServer(pipeline.New(sc, tr, ex), events, "MEMEX1000", "0xwallet")

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, events
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body, dst any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil, nil)

	var got healthResponse
	status := getJSON(t, ts.URL+"/health", &got)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "MEMEX1000", got.Agent)
	assert.Equal(t, "0xwallet", got.Wallet)
	assert.Equal(t, "disabled", got.Gateway)
	assert.Equal(t, "online", got.Status)
	assert.Contains(t, got.Endpoints, "/api/scan")

	// Root path serves the same payload.
	status = getJSON(t, ts.URL+"/", &got)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_Scan(t *testing.T) {
	ts, _ := newTestServer(t, []marketdata.Pair{memePair("PEPE"), memePair("DOGE")}, nil, nil)

	var got scanResponse
	status := getJSON(t, ts.URL+"/api/scan?limit=1", &got)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, got.Count)
	require.Len(t, got.Results, 1)

	var bad errorResponse
	status = getJSON(t, ts.URL+"/api/scan?limit=abc", &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, bad.Error)
}

func TestServer_AnalyzeTradeAndPortfolio(t *testing.T) {
	ts, _ := newTestServer(t, []marketdata.Pair{memePair("PEPE")}, nil, nil)

	var candidate domain.TokenCandidate
	status := postJSON(t, ts.URL+"/api/analyze", analyzeRequest{Token: "pepe"}, &candidate)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PEPE", candidate.Symbol)

	var missing errorResponse
	status = postJSON(t, ts.URL+"/api/analyze", analyzeRequest{Token: "nope"}, &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", missing.Error)

	var traded tradeResponse
	status = postJSON(t, ts.URL+"/api/trade", tradeRequest{Token: "0xpepe", Symbol: "PEPE", Amount: 100, Type: "buy"}, &traded)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, traded.Success)
	require.NotNil(t, traded.Trade)
	assert.Equal(t, domain.TradeTypeBuy, traded.Trade.Type)

	var view executor.Portfolio
	status = getJSON(t, ts.URL+"/api/portfolio", &view)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0xwallet", view.Wallet)
	assert.Len(t, view.Positions, 1)
	assert.Len(t, view.Trades, 1)
}

func TestServer_TradeValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil, nil)

	var got errorResponse
	status := postJSON(t, ts.URL+"/api/trade", tradeRequest{Token: "0xpepe", Symbol: "PEPE", Amount: 0}, &got)
	assert.Equal(t, http.StatusBadRequest, status)

	resp, err := http.Post(ts.URL+"/api/trade", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CopyWithoutBuySignal(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil, nil)

	var got tradeResponse
	status := postJSON(t, ts.URL+"/api/copy", copyRequest{TargetAddress: "0xwhale", Percentage: 10}, &got)

	assert.Equal(t, http.StatusOK, status)
	assert.False(t, got.Success)
	assert.Equal(t, "No buy signal", got.Error)
	assert.Nil(t, got.Trade)
}

func TestServer_CopyOnBuySignal(t *testing.T) {
	const target = "0xwhale1"
	history := make([]chaindata.TokenTransfer, 0, 8)
	for i := 0; i < 6; i++ {
		history = append(history, chaindata.TokenTransfer{From: "0xother", To: target, Value: "300"})
	}
	for i := 0; i < 2; i++ {
		history = append(history, chaindata.TokenTransfer{From: target, To: "0xother", Value: "1"})
	}
	ts, _ := newTestServer(t, nil, map[string][]chaindata.TokenTransfer{target: history}, []string{target})

	var got tradeResponse
	status := postJSON(t, ts.URL+"/api/copy", copyRequest{TargetAddress: target}, &got)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, got.Success)
	require.NotNil(t, got.Trade)
	assert.Equal(t, "COPY_0xwhal", got.Trade.Symbol)

	var whales whalesResponse
	status = getJSON(t, ts.URL+"/api/whales", &whales)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, whales.Count)
}

func TestServer_Logs(t *testing.T) {
	ts, events := newTestServer(t, nil, nil, nil)
	events.Printf("agent started")

	var got logsResponse
	status := getJSON(t, ts.URL+"/api/logs", &got)

	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, got.Logs)
	assert.Contains(t, got.Logs[0], "agent started")
}
