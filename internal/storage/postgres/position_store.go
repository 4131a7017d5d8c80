package postgres

import (
	"context"
	"fmt"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// Upsert inserts a position for token or increments the amount of the
// existing one. A single conditional statement keeps the increment atomic
// under concurrent callers; the entry price only takes effect on insert.
func (s *PositionStore) Upsert(ctx context.Context, token, symbol string, entry, amount float64) error {
	if token == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO positions (token, symbol, entry, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token)
		DO UPDATE SET amount = positions.amount + EXCLUDED.amount
	`

	if _, err := s.pool.Exec(ctx, query, token, symbol, entry, amount); err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

// Delete removes the position for token. No-op if absent.
func (s *PositionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM positions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}

// GetByToken retrieves the position for token. Returns ErrNotFound if none.
func (s *PositionStore) GetByToken(ctx context.Context, token string) (*domain.Position, error) {
	query := `
		SELECT token, symbol, entry, amount, created_at
		FROM positions
		WHERE token = $1
	`

	var p domain.Position
	err := s.pool.QueryRow(ctx, query, token).Scan(&p.Token, &p.Symbol, &p.Entry, &p.Amount, &p.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get position by token: %w", err)
	}
	return &p, nil
}

// GetAll retrieves all open positions, ordered by creation time ASC.
func (s *PositionStore) GetAll(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT token, symbol, entry, amount, created_at
		FROM positions
		ORDER BY created_at ASC, token ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.Token, &p.Symbol, &p.Entry, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
