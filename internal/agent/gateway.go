// Package agent connects the pipeline to an agent-market task gateway
// over WebSocket. The gateway pushes task requests; the agent answers
// with task results.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/pipeline"
)

// Task names the gateway can dispatch.
const (
	TaskAnalyzeMemeCoin = "analyze_meme_coin"
	TaskSmartMoneyTrack = "smart_money_track"
	TaskExecuteTrade    = "execute_trade"
	TaskCopyTrade       = "copy_trade"
	TaskMomentumScan    = "momentum_scan"
	TaskMonitorWallet   = "monitor_wallet"
)

// Card identifies the agent to the gateway on registration.
type Card struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Wallet      string   `json:"wallet"`
	Skills      []string `json:"skills"`
}

// Config configures gateway connection behavior.
type Config struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Gateway maintains the WebSocket session and dispatches tasks to the
// pipeline.
type Gateway struct {
	endpoint string
	card     Card
	config   Config
	pipe     *pipeline.Pipeline
	events   *eventlog.Log

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewGateway creates a gateway client. Run starts the connection.
func NewGateway(endpoint string, card Card, pipe *pipeline.Pipeline, events *eventlog.Log, config *Config) *Gateway {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	return &Gateway{
		endpoint: endpoint,
		card:     card,
		config:   cfg,
		pipe:     pipe,
		events:   events,
		done:     make(chan struct{}),
	}
}

// envelope is one inbound gateway frame. Task frames carry a task name;
// plain message frames carry text only.
type envelope struct {
	ID      string          `json:"id"`
	Task    string          `json:"task,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Message string          `json:"message,omitempty"`
}

// taskResult is one outbound result frame.
type taskResult struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Reply  string `json:"reply,omitempty"`
}

// registerFrame announces the agent card after connecting.
type registerFrame struct {
	Type string `json:"type"`
	Card Card   `json:"card"`
}

// Run connects to the gateway and serves tasks until ctx is canceled or
// Close is called. Connection loss triggers reconnection with backoff.
func (g *Gateway) Run(ctx context.Context) error {
	delay := g.config.ReconnectDelay

	for {
		if g.closed.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := g.session(ctx)
		if g.closed.Load() || ctx.Err() != nil {
			return nil
		}

		g.events.Printf("gateway connection lost: %v, reconnecting in %s", err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		case <-g.done:
			return nil
		}

		delay *= 2
		if delay > g.config.MaxReconnectDelay {
			delay = g.config.MaxReconnectDelay
		}
	}
}

// session runs one connect-register-serve cycle.
func (g *Gateway) session(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, g.endpoint, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}

	g.connMu.Lock()
	g.conn = conn
	g.connMu.Unlock()
	defer conn.Close()

	if err := g.write(registerFrame{Type: "register", Card: g.card}); err != nil {
		return fmt.Errorf("register agent: %w", err)
	}
	g.events.Printf("gateway connected: %s", g.endpoint)

	pingDone := make(chan struct{})
	g.wg.Add(1)
	go g.pingLoop(conn, pingDone)
	defer func() {
		close(pingDone)
		g.wg.Wait()
	}()

	for {
		if g.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(g.config.ReadTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			g.events.Printf("gateway frame decode error: %v", err)
			continue
		}

		if err := g.write(g.dispatch(ctx, &env)); err != nil {
			return err
		}
	}
}

// dispatch routes one frame to the pipeline and builds its result.
func (g *Gateway) dispatch(ctx context.Context, env *envelope) taskResult {
	if env.Task == "" {
		return taskResult{ID: env.ID, Reply: g.helpText()}
	}

	result, err := g.runTask(ctx, env)
	if err != nil {
		return taskResult{ID: env.ID, Error: err.Error()}
	}
	return taskResult{ID: env.ID, Result: result}
}

func (g *Gateway) runTask(ctx context.Context, env *envelope) (any, error) {
	switch env.Task {
	case TaskAnalyzeMemeCoin:
		var input struct {
			Token string `json:"token"`
		}
		if err := decodeInput(env.Input, &input); err != nil {
			return nil, err
		}
		return g.pipe.Analyze(ctx, input.Token)

	case TaskSmartMoneyTrack:
		return map[string]any{"signals": g.pipe.WhaleScan(ctx)}, nil

	case TaskExecuteTrade:
		var input struct {
			Token  string  `json:"token"`
			Symbol string  `json:"symbol"`
			Amount float64 `json:"amount"`
			Type   string  `json:"type"`
		}
		if err := decodeInput(env.Input, &input); err != nil {
			return nil, err
		}
		tradeType := domain.TradeTypeBuy
		if input.Type != "" {
			tradeType = domain.ParseTradeType(input.Type)
		}
		return g.pipe.ExecuteTrade(ctx, input.Token, input.Symbol, input.Amount, tradeType)

	case TaskCopyTrade:
		var input struct {
			TargetAddress string  `json:"targetAddress"`
			Percentage    float64 `json:"percentage"`
		}
		if err := decodeInput(env.Input, &input); err != nil {
			return nil, err
		}
		trade, err := g.pipe.CopyTrade(ctx, input.TargetAddress, input.Percentage)
		if errors.Is(err, executor.ErrNoBuySignal) {
			return map[string]any{"success": false, "error": "No buy signal"}, nil
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "trade": trade}, nil

	case TaskMomentumScan:
		var input struct {
			Limit int `json:"limit"`
		}
		if err := decodeInput(env.Input, &input); err != nil {
			return nil, err
		}
		return map[string]any{"results": g.pipe.MomentumScan(ctx, input.Limit)}, nil

	case TaskMonitorWallet:
		return g.pipe.Portfolio(ctx), nil

	default:
		return nil, fmt.Errorf("unknown task %q", env.Task)
	}
}

// helpText answers plain messages with the supported task list.
func (g *Gateway) helpText() string {
	return fmt.Sprintf(
		"%s tasks: %s, %s, %s, %s, %s, %s",
		g.card.Name,
		TaskAnalyzeMemeCoin, TaskSmartMoneyTrack, TaskExecuteTrade,
		TaskCopyTrade, TaskMomentumScan, TaskMonitorWallet,
	)
}

func (g *Gateway) write(v any) error {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	if g.conn == nil {
		return errors.New("not connected")
	}
	if g.config.WriteTimeout > 0 {
		g.conn.SetWriteDeadline(time.Now().Add(g.config.WriteTimeout))
	}
	return g.conn.WriteJSON(v)
}

func (g *Gateway) pingLoop(conn *websocket.Conn, sessionDone <-chan struct{}) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.connMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(g.config.WriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			g.connMu.Unlock()
			if err != nil {
				return
			}
		case <-sessionDone:
			return
		case <-g.done:
			return
		}
	}
}

// Close shuts the gateway down and stops reconnection.
func (g *Gateway) Close() error {
	if !g.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(g.done)

	g.connMu.Lock()
	defer g.connMu.Unlock()
	if g.conn != nil {
		g.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return g.conn.Close()
	}
	return nil
}

func decodeInput(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode task input: %w", err)
	}
	return nil
}
