// Package whale scores the transfer activity of watched addresses.
package whale

import (
	"context"
	"sort"
	"strings"

	"memex-agent/internal/chaindata"
	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/observability"
)

// Tracking constants.
const (
	// transferWindow is how many of the most recent transfers are scored.
	transferWindow = 20

	// accumulationConfidence is granted when inbound transfers dominate.
	accumulationConfidence = 40

	// valueConfidence is granted when summed inbound value clears valueThreshold.
	valueConfidence = 30
	valueThreshold  = 1000

	// MinConfidence is the watchlist cut: signals at or below it are dropped.
	MinConfidence = 50
)

// TransferSource is the chain-data dependency of the tracker.
type TransferSource interface {
	TokenTransfers(ctx context.Context, address string) ([]chaindata.TokenTransfer, error)
}

// Tracker derives trade signals from watched addresses' transfer history.
type Tracker struct {
	source    TransferSource
	watchlist []string
	events    *eventlog.Log
}

// New creates a Tracker over the fixed watchlist.
func New(source TransferSource, watchlist []string, events *eventlog.Log) *Tracker {
	return &Tracker{
		source:    source,
		watchlist: watchlist,
		events:    events,
	}
}

// Watchlist returns the tracked addresses.
func (t *Tracker) Watchlist() []string {
	out := make([]string, len(t.watchlist))
	copy(out, t.watchlist)
	return out
}

// Track scores the most recent transfer window of one address. An address
// with no transfer history returns (nil, nil): no data is a normal outcome.
func (t *Tracker) Track(ctx context.Context, address string) (*domain.WhaleSignal, error) {
	transfers, err := t.source.TokenTransfers(ctx, address)
	if err != nil {
		observability.RecordSourceError("chain")
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}

	if len(transfers) > transferWindow {
		transfers = transfers[:transferWindow]
	}

	addr := strings.ToLower(address)
	var inbound, outbound int
	var inboundValue float64
	for _, tr := range transfers {
		switch {
		case strings.ToLower(tr.To) == addr:
			inbound++
			inboundValue += tr.ValueFloat()
		case strings.ToLower(tr.From) == addr:
			outbound++
		}
	}

	accumulating := float64(inbound) > float64(outbound)*1.5

	confidence := 0
	if accumulating {
		confidence += accumulationConfidence
	}
	if inboundValue > valueThreshold {
		confidence += valueConfidence
	}
	if confidence > 100 {
		confidence = 100
	}

	signal := domain.SignalHold
	switch {
	case accumulating:
		signal = domain.SignalBuy
	case outbound > inbound*2:
		signal = domain.SignalSell
	}

	return &domain.WhaleSignal{
		Address:        address,
		Signal:         signal,
		Confidence:     confidence,
		IsAccumulating: accumulating,
		BuyCount:       inbound,
		SellCount:      outbound,
	}, nil
}

// ScanWatchlist tracks every watched address, keeps signals above
// MinConfidence, and sorts them strongest first. Per-address failures are
// swallowed with a logged event; they never abort the batch.
func (t *Tracker) ScanWatchlist(ctx context.Context) []*domain.WhaleSignal {
	var signals []*domain.WhaleSignal
	for _, addr := range t.watchlist {
		sig, err := t.Track(ctx, addr)
		if err != nil {
			t.events.Printf("whale track %s error: %v", addr, err)
			continue
		}
		if sig == nil {
			continue
		}
		if sig.Confidence > MinConfidence {
			signals = append(signals, sig)
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})

	observability.RecordWhaleScan("success")
	observability.RecordSignals(len(signals))
	return signals
}
