package clickhouse

import (
	"context"
	"fmt"
	"time"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// SignalArchive implements storage.SignalArchive using ClickHouse.
// Snapshots are append-only analytics rows; MergeTree ordering by
// (scanned_at, address) keeps scans of the same instant grouped.
type SignalArchive struct {
	conn *Conn
}

// NewSignalArchive creates a new SignalArchive.
func NewSignalArchive(conn *Conn) *SignalArchive {
	return &SignalArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.SignalArchive = (*SignalArchive)(nil)

// ArchiveCandidates stores one momentum-scan snapshot.
func (a *SignalArchive) ArchiveCandidates(ctx context.Context, scannedAt time.Time, candidates []*domain.TokenCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO candidate_snapshots (
			scanned_at, address, symbol, price, change_24h, volume_24h,
			liquidity, score, factors, recommendation
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare candidate batch: %w", err)
	}

	for _, c := range candidates {
		err = batch.Append(
			scannedAt, c.Address, c.Symbol, c.Price, c.Change24h, c.Volume24h,
			c.Liquidity, uint8(c.Score), c.Factors, string(c.Recommendation),
		)
		if err != nil {
			return fmt.Errorf("append candidate to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send candidate batch: %w", err)
	}

	return nil
}

// ArchiveSignals stores one watchlist-scan snapshot.
func (a *SignalArchive) ArchiveSignals(ctx context.Context, scannedAt time.Time, signals []*domain.WhaleSignal) error {
	if len(signals) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO whale_signal_snapshots (
			scanned_at, address, signal, confidence, is_accumulating,
			buy_count, sell_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare signal batch: %w", err)
	}

	for _, s := range signals {
		accumulating := uint8(0)
		if s.IsAccumulating {
			accumulating = 1
		}
		err = batch.Append(
			scannedAt, s.Address, string(s.Signal), uint8(s.Confidence),
			accumulating, uint32(s.BuyCount), uint32(s.SellCount),
		)
		if err != nil {
			return fmt.Errorf("append signal to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send signal batch: %w", err)
	}

	return nil
}
