package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memex-agent/internal/chaindata"
	"memex-agent/internal/decision"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/marketdata"
	"memex-agent/internal/pipeline"
	"memex-agent/internal/scanner"
	"memex-agent/internal/storage/memory"
	"memex-agent/internal/whale"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type stubPairs struct{}

func (stubPairs) SearchPairs(_ context.Context, _ string) ([]marketdata.Pair, error) {
	p := marketdata.Pair{ChainID: "base"}
	p.BaseToken.Address = "0xpepe"
	p.BaseToken.Name = "pepe meme"
	p.BaseToken.Symbol = "PEPE"
	p.Liquidity.Usd = 60_000
	p.Volume.H24 = 150_000
	p.PriceChange.H24 = 60
	p.Txns.H24.Buys = 10
	p.Txns.H24.Sells = 2
	return []marketdata.Pair{p}, nil
}

type stubTransfers struct{}

func (stubTransfers) TokenTransfers(_ context.Context, _ string) ([]chaindata.TokenTransfer, error) {
	return nil, nil
}

func testPipeline() *pipeline.Pipeline {
	events := eventlog.New(nil)
	sc := scanner.New(stubPairs{}, "base", events)
	tr := whale.New(stubTransfers{}, nil, events)
	ex := executor.New(memory.NewPositionStore(), memory.NewTradeStore(), tr, decision.NewEngine(), "0xwallet", events)
	return pipeline.New(sc, tr, ex)
}

// gatewayHarness runs a fake gateway server and a connected Gateway.
type gatewayHarness struct {
	conn *websocket.Conn
	gw   *Gateway
}

func startHarness(t *testing.T) *gatewayHarness {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- c
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	card := Card{Name: "MEMEX1000", Wallet: "0xwallet", Skills: []string{TaskMomentumScan}}
	gw := NewGateway(wsURL, card, testPipeline(), eventlog.New(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go gw.Run(ctx)
	t.Cleanup(func() {
		cancel()
		gw.Close()
	})

	select {
	case conn := <-connCh:
		t.Cleanup(func() { conn.Close() })
		return &gatewayHarness{conn: conn, gw: gw}
	case <-time.After(5 * time.Second):
		t.Fatal("gateway never connected")
		return nil
	}
}

func (h *gatewayHarness) readFrame(t *testing.T, dst any) {
	t.Helper()
	h.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := h.conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dst))
}

func (h *gatewayHarness) sendTask(t *testing.T, id, task string, input any) taskResult {
	t.Helper()
	frame := map[string]any{"id": id, "task": task}
	if input != nil {
		frame["input"] = input
	}
	require.NoError(t, h.conn.WriteJSON(frame))

	var result taskResult
	h.readFrame(t, &result)
	return result
}

func TestGateway_RegistersOnConnect(t *testing.T) {
	h := startHarness(t)

	var reg registerFrame
	h.readFrame(t, &reg)

	assert.Equal(t, "register", reg.Type)
	assert.Equal(t, "MEMEX1000", reg.Card.Name)
	assert.Equal(t, "0xwallet", reg.Card.Wallet)
}

func TestGateway_TaskDispatch(t *testing.T) {
	h := startHarness(t)

	var reg registerFrame
	h.readFrame(t, &reg)

	res := h.sendTask(t, "1", TaskMomentumScan, map[string]any{"limit": 3})
	assert.Equal(t, "1", res.ID)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Result)

	res = h.sendTask(t, "2", TaskAnalyzeMemeCoin, map[string]any{"token": "PEPE"})
	assert.Empty(t, res.Error)

	res = h.sendTask(t, "3", TaskAnalyzeMemeCoin, map[string]any{"token": "NOPE"})
	assert.NotEmpty(t, res.Error)

	res = h.sendTask(t, "4", TaskExecuteTrade, map[string]any{
		"token": "0xpepe", "symbol": "PEPE", "amount": 100, "type": "BUY",
	})
	assert.Empty(t, res.Error)

	res = h.sendTask(t, "5", TaskMonitorWallet, nil)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Result)

	res = h.sendTask(t, "6", "withdraw_everything", nil)
	assert.Contains(t, res.Error, "unknown task")
}

func TestGateway_CopyTradeWithoutSignal(t *testing.T) {
	h := startHarness(t)

	var reg registerFrame
	h.readFrame(t, &reg)

	res := h.sendTask(t, "1", TaskCopyTrade, map[string]any{"targetAddress": "0xwhale"})
	assert.Empty(t, res.Error)

	payload, ok := res.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, payload["success"])
}

func TestGateway_PlainMessageGetsHelp(t *testing.T) {
	h := startHarness(t)

	var reg registerFrame
	h.readFrame(t, &reg)

	require.NoError(t, h.conn.WriteJSON(map[string]any{"id": "m1", "message": "hello"}))

	var res taskResult
	h.readFrame(t, &res)
	assert.Contains(t, res.Reply, TaskCopyTrade)
}

func TestGateway_CloseStopsReconnect(t *testing.T) {
	h := startHarness(t)

	var reg registerFrame
	h.readFrame(t, &reg)

	require.NoError(t, h.gw.Close())

	// A second Close is a no-op.
	assert.NoError(t, h.gw.Close())
}
