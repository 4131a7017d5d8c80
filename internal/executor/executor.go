// Package executor converts decisions into trade records and applies them
// to the ledger.
package executor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"memex-agent/internal/decision"
	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/observability"
	"memex-agent/internal/storage"
)

// ErrNoBuySignal reports that a copy-trade target did not qualify. This is
// a normal outcome of the decision rule, not a system failure.
var ErrNoBuySignal = errors.New("no buy signal")

// recentTradeCount is how many trades a portfolio read returns.
const recentTradeCount = 10

// SignalSource is the whale-tracker dependency of the executor.
type SignalSource interface {
	Track(ctx context.Context, address string) (*domain.WhaleSignal, error)
}

// Portfolio is the current ledger view: open positions plus recent trades.
type Portfolio struct {
	Wallet    string                `json:"wallet"`
	Positions []*domain.Position    `json:"positions"`
	Trades    []*domain.TradeRecord `json:"trades"`
}

// Executor applies trades to the ledger.
type Executor struct {
	positions storage.PositionStore
	trades    storage.TradeStore
	tracker   SignalSource
	engine    *decision.Engine
	events    *eventlog.Log
	wallet    string

	// Synthetic sources, injectable for tests and replaceable by real
	// settlement integration. The ledger contract does not depend on
	// where these values come from.
	now     func() time.Time
	priceFn func() float64
	tokenFn func() string
	txRefFn func() string
	idFn    func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithPriceSource overrides synthetic price generation.
func WithPriceSource(fn func() float64) Option {
	return func(e *Executor) { e.priceFn = fn }
}

// WithTokenSource overrides synthetic token-address generation.
func WithTokenSource(fn func() string) Option {
	return func(e *Executor) { e.tokenFn = fn }
}

// WithTxRefSource overrides synthetic transaction-reference generation.
func WithTxRefSource(fn func() string) Option {
	return func(e *Executor) { e.txRefFn = fn }
}

// WithIDSource overrides trade-id generation.
func WithIDSource(fn func() string) Option {
	return func(e *Executor) { e.idFn = fn }
}

// New creates an Executor over the ledger stores.
func New(positions storage.PositionStore, trades storage.TradeStore, tracker SignalSource, engine *decision.Engine, wallet string, events *eventlog.Log, opts ...Option) *Executor {
	e := &Executor{
		positions: positions,
		trades:    trades,
		tracker:   tracker,
		engine:    engine,
		events:    events,
		wallet:    wallet,
		now:       time.Now,
		priceFn:   func() float64 { return mrand.Float64() * 0.001 },
		tokenFn:   func() string { return "0x" + randomHex(20) },
		txRefFn:   func() string { return "0x" + randomHex(32) },
		idFn:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute records one trade and applies its position transition:
// BUY upserts (insert or increment) the position, SELL deletes it.
// A trade record is always produced on success; a store write failure is
// returned to the caller rather than silently dropped.
func (e *Executor) Execute(ctx context.Context, token, symbol string, amount float64, tradeType domain.TradeType) (*domain.TradeRecord, error) {
	if tradeType != domain.TradeTypeBuy && tradeType != domain.TradeTypeSell {
		return nil, fmt.Errorf("%w: unknown trade type %q", storage.ErrInvalidInput, tradeType)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", storage.ErrInvalidInput)
	}

	if token == "" {
		token = "0x0"
	}
	if symbol == "" {
		symbol = "UNKNOWN"
	}

	trade := &domain.TradeRecord{
		TradeID:   e.idFn(),
		Token:     token,
		Symbol:    symbol,
		Type:      tradeType,
		Amount:    amount,
		Price:     e.priceFn(),
		TxRef:     e.txRefFn(),
		CreatedAt: e.now().UTC(),
	}

	if err := e.trades.Insert(ctx, trade); err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}

	switch tradeType {
	case domain.TradeTypeBuy:
		if err := e.positions.Upsert(ctx, token, symbol, trade.Price, amount); err != nil {
			return nil, fmt.Errorf("apply buy to position: %w", err)
		}
	case domain.TradeTypeSell:
		// Any sell fully clears the position, whatever the sold amount.
		if err := e.positions.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("apply sell to position: %w", err)
		}
	}

	e.events.Printf("trade executed: %s %g %s", tradeType, amount, symbol)
	observability.RecordTrade(string(tradeType))
	return trade, nil
}

// CopyTrade tracks the target, runs the copy decision, and executes a BUY
// sized by the decision engine. Returns ErrNoBuySignal when the target
// does not qualify; no trade is recorded in that case.
func (e *Executor) CopyTrade(ctx context.Context, target string, percentage float64) (*domain.TradeRecord, error) {
	signal, err := e.tracker.Track(ctx, target)
	if err != nil {
		observability.RecordCopyTrade("error")
		return nil, fmt.Errorf("track copy target: %w", err)
	}

	d := e.engine.DecideCopy(signal, percentage)
	if !d.Proceed {
		observability.RecordCopyTrade("skipped")
		return nil, fmt.Errorf("%w: target %s", ErrNoBuySignal, target)
	}

	symbol := "COPY_" + shortAddress(target)
	trade, err := e.Execute(ctx, e.tokenFn(), symbol, d.Amount, domain.TradeTypeBuy)
	if err != nil {
		observability.RecordCopyTrade("error")
		return nil, err
	}

	observability.RecordCopyTrade("executed")
	return trade, nil
}

// Portfolio reads the current ledger view. Store read failures degrade to
// empty results with a logged event; reads never fail the caller.
func (e *Executor) Portfolio(ctx context.Context) *Portfolio {
	p := &Portfolio{
		Wallet:    e.wallet,
		Positions: []*domain.Position{},
		Trades:    []*domain.TradeRecord{},
	}

	positions, err := e.positions.GetAll(ctx)
	if err != nil {
		e.events.Printf("portfolio positions read error: %v", err)
	} else if positions != nil {
		p.Positions = positions
	}

	trades, err := e.trades.GetRecent(ctx, recentTradeCount)
	if err != nil {
		e.events.Printf("portfolio trades read error: %v", err)
	} else if trades != nil {
		p.Trades = trades
	}

	return p
}

// shortAddress returns the first 6 characters of an address for symbol tags.
func shortAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) > 6 {
		return addr[:6]
	}
	return addr
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a uuid-derived string rather than panic.
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(buf)
}
