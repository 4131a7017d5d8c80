package storage

import (
	"context"
	"time"

	"memex-agent/internal/domain"
)

// PositionStore provides access to the positions relation. At most one row
// exists per token address.
type PositionStore interface {
	// Upsert inserts a position for token, or increments the amount of the
	// existing one. The entry price of an existing position is kept.
	// The operation must be atomic at the storage layer: concurrent
	// upserts on the same token may not lose increments.
	Upsert(ctx context.Context, token, symbol string, entry, amount float64) error

	// Delete removes the position for token. Deleting a token with no
	// position is a no-op, not an error.
	Delete(ctx context.Context, token string) error

	// GetByToken retrieves the position for token. Returns ErrNotFound if none.
	GetByToken(ctx context.Context, token string) (*domain.Position, error)

	// GetAll retrieves all open positions, ordered by creation time ASC.
	GetAll(ctx context.Context) ([]*domain.Position, error)
}

// TradeStore provides access to the append-only trade log.
type TradeStore interface {
	// Insert appends a trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetRecent retrieves up to limit trades, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.TradeRecord, error)

	// GetByToken retrieves all trades for a token, newest first.
	GetByToken(ctx context.Context, token string) ([]*domain.TradeRecord, error)
}

// SignalArchive is an append-only analytics sink for scan output. Archiving
// is best-effort: callers log failures and move on, the trading path never
// depends on it.
type SignalArchive interface {
	// ArchiveCandidates stores one momentum-scan snapshot.
	ArchiveCandidates(ctx context.Context, scannedAt time.Time, candidates []*domain.TokenCandidate) error

	// ArchiveSignals stores one watchlist-scan snapshot.
	ArchiveSignals(ctx context.Context, scannedAt time.Time, signals []*domain.WhaleSignal) error
}
