// Package pipeline is the single entry point callers use to drive the
// agent: scans, analyses, trades, and portfolio reads all go through it.
// Transport layers (HTTP handlers, the task gateway, schedulers) stay
// thin by delegating here.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"memex-agent/internal/domain"
	"memex-agent/internal/executor"
	"memex-agent/internal/scanner"
	"memex-agent/internal/storage"
	"memex-agent/internal/whale"
)

// Defaults applied when a caller omits optional parameters.
const (
	DefaultScanLimit      = 5
	DefaultCopyPercentage = 10
)

// Pipeline wires the scanner, whale tracker, and executor behind one API.
type Pipeline struct {
	scanner  *scanner.Scanner
	tracker  *whale.Tracker
	executor *executor.Executor
}

// New assembles a Pipeline from its components.
func New(sc *scanner.Scanner, tr *whale.Tracker, ex *executor.Executor) *Pipeline {
	return &Pipeline{scanner: sc, tracker: tr, executor: ex}
}

// MomentumScan returns up to limit highest-scoring candidates. A limit of
// zero or below uses the default.
func (p *Pipeline) MomentumScan(ctx context.Context, limit int) []*domain.TokenCandidate {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return p.scanner.Scan(ctx, limit)
}

// Analyze scores one token looked up by symbol or address.
func (p *Pipeline) Analyze(ctx context.Context, query string) (*domain.TokenCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", storage.ErrInvalidInput)
	}

	candidate, found := p.scanner.Analyze(ctx, query)
	if !found {
		return nil, fmt.Errorf("%w: no pair matches %q", storage.ErrNotFound, query)
	}
	return candidate, nil
}

// TrackWhale evaluates one wallet's recent transfer flow.
func (p *Pipeline) TrackWhale(ctx context.Context, address string) (*domain.WhaleSignal, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", storage.ErrInvalidInput)
	}
	return p.tracker.Track(ctx, address)
}

// WhaleScan evaluates the configured watchlist and returns the wallets
// worth acting on.
func (p *Pipeline) WhaleScan(ctx context.Context) []*domain.WhaleSignal {
	return p.tracker.ScanWatchlist(ctx)
}

// ExecuteTrade records a trade and applies it to the ledger.
func (p *Pipeline) ExecuteTrade(ctx context.Context, token, symbol string, amount float64, tradeType domain.TradeType) (*domain.TradeRecord, error) {
	return p.executor.Execute(ctx, token, symbol, amount, tradeType)
}

// CopyTrade mirrors a target wallet. A percentage of zero or below uses
// the default sizing.
func (p *Pipeline) CopyTrade(ctx context.Context, target string, percentage float64) (*domain.TradeRecord, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: target address is required", storage.ErrInvalidInput)
	}
	if percentage <= 0 {
		percentage = DefaultCopyPercentage
	}
	return p.executor.CopyTrade(ctx, target, percentage)
}

// Portfolio returns open positions, recent trades, and the agent wallet.
func (p *Pipeline) Portfolio(ctx context.Context) *executor.Portfolio {
	return p.executor.Portfolio(ctx)
}
