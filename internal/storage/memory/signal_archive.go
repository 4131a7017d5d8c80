package memory

import (
	"context"
	"sync"
	"time"

	"memex-agent/internal/domain"
	"memex-agent/internal/storage"
)

// SignalArchive is an in-memory implementation of storage.SignalArchive.
type SignalArchive struct {
	mu         sync.RWMutex
	candidates []ArchivedCandidate
	signals    []ArchivedSignal
}

// ArchivedCandidate is one archived candidate snapshot row.
type ArchivedCandidate struct {
	ScannedAt time.Time
	Candidate domain.TokenCandidate
}

// ArchivedSignal is one archived whale-signal snapshot row.
type ArchivedSignal struct {
	ScannedAt time.Time
	Signal    domain.WhaleSignal
}

// NewSignalArchive creates a new in-memory signal archive.
func NewSignalArchive() *SignalArchive {
	return &SignalArchive{}
}

// ArchiveCandidates stores one momentum-scan snapshot.
func (a *SignalArchive) ArchiveCandidates(_ context.Context, scannedAt time.Time, candidates []*domain.TokenCandidate) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range candidates {
		a.candidates = append(a.candidates, ArchivedCandidate{ScannedAt: scannedAt, Candidate: *c})
	}
	return nil
}

// ArchiveSignals stores one watchlist-scan snapshot.
func (a *SignalArchive) ArchiveSignals(_ context.Context, scannedAt time.Time, signals []*domain.WhaleSignal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range signals {
		a.signals = append(a.signals, ArchivedSignal{ScannedAt: scannedAt, Signal: *s})
	}
	return nil
}

// Candidates returns all archived candidate rows in insertion order.
func (a *SignalArchive) Candidates() []ArchivedCandidate {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]ArchivedCandidate, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Signals returns all archived signal rows in insertion order.
func (a *SignalArchive) Signals() []ArchivedSignal {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]ArchivedSignal, len(a.signals))
	copy(out, a.signals)
	return out
}

var _ storage.SignalArchive = (*SignalArchive)(nil)
