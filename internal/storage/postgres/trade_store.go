package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL. The trades
// table is append-only; there are no update or delete paths.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert appends a trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (trade_id, token, symbol, type, amount, price, tx, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.Token, t.Symbol, string(t.Type), t.Amount, t.Price, t.TxRef, t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetRecent retrieves up to limit trades, newest first. The serial id
// breaks ties between trades created in the same instant.
func (s *TradeStore) GetRecent(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	if limit < 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT trade_id, token, symbol, type, amount, price, tx, created_at
		FROM trades
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByToken retrieves all trades for a token, newest first.
func (s *TradeStore) GetByToken(ctx context.Context, token string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT trade_id, token, symbol, type, amount, price, tx, created_at
		FROM trades
		WHERE token = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("get trades by token: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades scans rows into a slice of TradeRecord.
func scanTrades(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		var t domain.TradeRecord
		var tradeType string
		if err := rows.Scan(&t.TradeID, &t.Token, &t.Symbol, &tradeType, &t.Amount, &t.Price, &t.TxRef, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Type = domain.TradeType(tradeType)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
