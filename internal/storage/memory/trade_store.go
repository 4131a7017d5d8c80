package memory

import (
	"context"
	"sync"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
// Insertion order defines the audit trail, so trades are held in a slice.
type TradeStore struct {
	mu     sync.RWMutex
	trades []*domain.TradeRecord // append order
	byID   map[string]struct{}
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		byID: make(map[string]struct{}),
	}
}

// Insert appends a trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.trades = append(s.trades, &copy)
	s.byID[t.TradeID] = struct{}{}
	return nil
}

// GetRecent retrieves up to limit trades, newest first.
func (s *TradeStore) GetRecent(_ context.Context, limit int) ([]*domain.TradeRecord, error) {
	if limit < 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.trades)
	if limit < n {
		n = limit
	}

	result := make([]*domain.TradeRecord, 0, n)
	for i := len(s.trades) - 1; i >= 0 && len(result) < n; i-- {
		copy := *s.trades[i]
		result = append(result, &copy)
	}

	return result, nil
}

// GetByToken retrieves all trades for a token, newest first.
func (s *TradeStore) GetByToken(_ context.Context, token string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for i := len(s.trades) - 1; i >= 0; i-- {
		if s.trades[i].Token == token {
			copy := *s.trades[i]
			result = append(result, &copy)
		}
	}

	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
