package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"memex-agent/internal/storage"
)

func TestPositionStore_UpsertInsertsThenIncrements(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, "0xabc", "PEPE", 0.0004, 100); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	p, err := store.GetByToken(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if p.Amount != 100 {
		t.Errorf("Amount mismatch: got %f, want 100", p.Amount)
	}

	// Second buy adds to the amount but keeps the original entry price.
	if err := store.Upsert(ctx, "0xabc", "PEPE", 0.0009, 50); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	p, err = store.GetByToken(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if p.Amount != 150 {
		t.Errorf("Amount mismatch: got %f, want 150", p.Amount)
	}
	if p.Entry != 0.0004 {
		t.Errorf("Entry recomputed: got %f, want 0.0004", p.Entry)
	}
}

func TestPositionStore_DeleteIsNoOpWhenAbsent(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Delete(ctx, "0xmissing"); err != nil {
		t.Fatalf("Delete of absent position should be a no-op, got %v", err)
	}
}

func TestPositionStore_DeleteRemovesRow(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, "0xabc", "PEPE", 0.0004, 100); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Delete(ctx, "0xabc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := store.GetByToken(ctx, "0xabc")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestPositionStore_NotFound(t *testing.T) {
	store := NewPositionStore()

	_, err := store.GetByToken(context.Background(), "0xnonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPositionStore_InvalidInput(t *testing.T) {
	store := NewPositionStore()

	err := store.Upsert(context.Background(), "", "PEPE", 1, 1)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty token, got %v", err)
	}
}

func TestPositionStore_ConcurrentUpsertsDoNotLoseIncrements(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := store.Upsert(ctx, "0xabc", "PEPE", 0.0004, 1); err != nil {
					t.Errorf("Upsert failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	p, err := store.GetByToken(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if p.Amount != float64(workers*perWorker) {
		t.Errorf("Amount mismatch: got %f, want %d", p.Amount, workers*perWorker)
	}
}
