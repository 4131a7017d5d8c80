// Package scheduler runs the periodic whale and momentum scans.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/pipeline"
	"memex-agent/internal/storage"
)

// Autonomous trading thresholds.
const (
	// copyConfidenceFloor gates unattended copy trades to the strongest
	// signals only.
	copyConfidenceFloor = 80

	// copyPercentage sizes unattended copies at half the interactive
	// default.
	copyPercentage = 5

	// momentumScanLimit is how many candidates each scheduled scan pulls.
	momentumScanLimit = 10
)

// Scheduler owns the cron runner and its two scan jobs.
type Scheduler struct {
	cron    *cron.Cron
	pipe    *pipeline.Pipeline
	archive storage.SignalArchive
	events  *eventlog.Log
	now     func() time.Time
}

// New creates a Scheduler. The archive may be nil when no analytics sink
// is configured.
func New(pipe *pipeline.Pipeline, archive storage.SignalArchive, events *eventlog.Log) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		pipe:    pipe,
		archive: archive,
		events:  events,
		now:     time.Now,
	}
}

// RegisterAll registers the whale and momentum jobs under the given cron
// specs.
func (s *Scheduler) RegisterAll(ctx context.Context, whaleCron, momentumCron string) error {
	if _, err := s.cron.AddFunc(whaleCron, func() { s.WhaleTask(ctx) }); err != nil {
		return fmt.Errorf("register whale task: %w", err)
	}
	if _, err := s.cron.AddFunc(momentumCron, func() { s.MomentumTask(ctx) }); err != nil {
		return fmt.Errorf("register momentum task: %w", err)
	}
	return nil
}

// Start starts the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.events.Printf("scheduler started")
}

// Stop stops the cron runner and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.events.Printf("scheduler stopped")
}

// WhaleTask scans the watchlist, archives the snapshot, and copies the
// strongest buy signal when it clears the confidence floor.
func (s *Scheduler) WhaleTask(ctx context.Context) {
	s.events.Printf("cron: scanning whales")
	signals := s.pipe.WhaleScan(ctx)
	s.archiveSignals(ctx, signals)

	strong := make([]*domain.WhaleSignal, 0, len(signals))
	for _, sig := range signals {
		if sig.Confidence > copyConfidenceFloor && sig.Signal == domain.SignalBuy {
			strong = append(strong, sig)
		}
	}
	if len(strong) == 0 {
		return
	}

	s.events.Printf("cron: %d strong buy signals", len(strong))
	if _, err := s.pipe.CopyTrade(ctx, strong[0].Address, copyPercentage); err != nil {
		if errors.Is(err, executor.ErrNoBuySignal) {
			return
		}
		s.events.Printf("cron: copy trade failed: %v", err)
	}
}

// MomentumTask scans for candidates, archives the snapshot, and logs any
// strong buys it found.
func (s *Scheduler) MomentumTask(ctx context.Context) {
	s.events.Printf("cron: scanning momentum")
	candidates := s.pipe.MomentumScan(ctx, momentumScanLimit)
	s.archiveCandidates(ctx, candidates)

	var gems []string
	for _, c := range candidates {
		if c.Recommendation == domain.RecommendationStrongBuy {
			gems = append(gems, c.Symbol)
		}
	}
	if len(gems) > 0 {
		s.events.Printf("cron: gems: %s", strings.Join(gems, ", "))
	}
}

func (s *Scheduler) archiveSignals(ctx context.Context, signals []*domain.WhaleSignal) {
	if s.archive == nil || len(signals) == 0 {
		return
	}
	if err := s.archive.ArchiveSignals(ctx, s.now().UTC(), signals); err != nil {
		s.events.Printf("cron: archive signals failed: %v", err)
	}
}

func (s *Scheduler) archiveCandidates(ctx context.Context, candidates []*domain.TokenCandidate) {
	if s.archive == nil || len(candidates) == 0 {
		return
	}
	if err := s.archive.ArchiveCandidates(ctx, s.now().UTC(), candidates); err != nil {
		s.events.Printf("cron: archive candidates failed: %v", err)
	}
}
