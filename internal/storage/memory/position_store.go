package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
// Used when no Postgres DSN is configured.
type PositionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Position // keyed by token address
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data: make(map[string]*domain.Position),
	}
}

// Upsert inserts a position or increments the amount of an existing one.
// The single mutex gives the same atomicity the SQL upsert gives.
func (s *PositionStore) Upsert(_ context.Context, token, symbol string, entry, amount float64) error {
	if token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.data[token]; exists {
		p.Amount += amount
		return nil
	}

	s.data[token] = &domain.Position{
		Token:     token,
		Symbol:    symbol,
		Entry:     entry,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// Delete removes the position for token. No-op if absent.
func (s *PositionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, token)
	return nil
}

// GetByToken retrieves the position for token. Returns ErrNotFound if none.
func (s *PositionStore) GetByToken(_ context.Context, token string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[token]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetAll retrieves all open positions, ordered by creation time ASC.
func (s *PositionStore) GetAll(_ context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Position, 0, len(s.data))
	for _, p := range s.data {
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Token < result[j].Token
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

var _ storage.PositionStore = (*PositionStore)(nil)
