// Package scanner screens and scores candidate tokens from market data.
package scanner

import (
	"context"
	"sort"
	"strings"
	"time"

	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/marketdata"
	"memex-agent/internal/observability"
)

// Screening constants.
const (
	// LiquidityFloor is the minimum pool liquidity for a pair to qualify.
	LiquidityFloor = 10_000

	// analyzePoolSize is the candidate pool Analyze searches through.
	analyzePoolSize = 50
)

// Scoring rule weights. Rules trigger independently and their weights sum,
// except the two change bands which are mutually exclusive.
const (
	weightHighVolume  = 25 // 24h volume above 100k
	weightStrongPump  = 30 // 24h change above 50%
	weightUptrend     = 20 // 24h change above 20%
	weightBuyPressure = 25 // buys above 1.5x sells
	weightGoodLiq     = 20 // liquidity above 50k
)

// keywords the symbol+name text must contain (case-insensitive) to qualify.
var keywords = []string{
	"meme", "pepe", "doge", "shib", "moon",
	"rocket", "elon", "wojak", "chad", "based",
}

// PairSource is the market-data dependency of the scanner.
type PairSource interface {
	SearchPairs(ctx context.Context, query string) ([]marketdata.Pair, error)
}

// Scanner fetches, filters, and scores token candidates for one chain.
type Scanner struct {
	source  PairSource
	chainID string
	events  *eventlog.Log
}

// New creates a Scanner restricted to chainID. The chain id doubles as the
// free-text search query against the source.
func New(source PairSource, chainID string, events *eventlog.Log) *Scanner {
	return &Scanner{
		source:  source,
		chainID: chainID,
		events:  events,
	}
}

// Scan returns up to limit scored candidates, highest score first.
// Source failures degrade to an empty result with a logged event; the
// caller never sees an error.
func (s *Scanner) Scan(ctx context.Context, limit int) []*domain.TokenCandidate {
	start := time.Now()

	pairs, err := s.source.SearchPairs(ctx, s.chainID)
	if err != nil {
		s.events.Printf("scan error: %v", err)
		observability.RecordSourceError("market")
		observability.RecordScan("error", time.Since(start).Seconds())
		return []*domain.TokenCandidate{}
	}

	candidates := make([]*domain.TokenCandidate, 0, len(pairs))
	for i := range pairs {
		if !s.qualifies(&pairs[i]) {
			continue
		}
		candidates = append(candidates, score(&pairs[i]))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	observability.RecordScan("success", time.Since(start).Seconds())
	observability.RecordCandidates(len(candidates))
	return candidates
}

// Analyze runs a wide scan and returns the candidate whose symbol or
// address matches query (case-insensitive). The second return reports
// whether a match was found; a miss is a normal outcome, not an error.
func (s *Scanner) Analyze(ctx context.Context, query string) (*domain.TokenCandidate, bool) {
	q := strings.ToLower(query)
	for _, c := range s.Scan(ctx, analyzePoolSize) {
		if strings.ToLower(c.Symbol) == q || strings.ToLower(c.Address) == q {
			return c, true
		}
	}
	return nil, false
}

// qualifies applies the screening filter: right chain, liquidity above the
// floor, and at least one keyword in the symbol+name text.
func (s *Scanner) qualifies(p *marketdata.Pair) bool {
	if p.ChainID != s.chainID {
		return false
	}
	if p.Liquidity.Usd.Float64() <= LiquidityFloor {
		return false
	}

	text := strings.ToLower(p.BaseToken.Symbol + " " + p.BaseToken.Name)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// score computes the candidate score from independently-triggered rules,
// clamped to [0,100].
func score(p *marketdata.Pair) *domain.TokenCandidate {
	vol := p.Volume.H24.Float64()
	liq := p.Liquidity.Usd.Float64()
	change := p.PriceChange.H24.Float64()
	buys := p.Txns.H24.Buys
	sells := p.Txns.H24.Sells

	total := 0
	var factors []string

	if vol > 100_000 {
		total += weightHighVolume
		factors = append(factors, "High volume")
	}
	if change > 50 {
		total += weightStrongPump
		factors = append(factors, "Strong pump")
	} else if change > 20 {
		total += weightUptrend
		factors = append(factors, "Uptrend")
	}
	if float64(buys) > float64(sells)*1.5 {
		total += weightBuyPressure
		factors = append(factors, "Buy pressure")
	}
	if liq > 50_000 {
		total += weightGoodLiq
		factors = append(factors, "Good liq")
	}

	if total > 100 {
		total = 100
	}

	return &domain.TokenCandidate{
		Address:        p.BaseToken.Address,
		Symbol:         p.BaseToken.Symbol,
		Price:          p.PriceUsd,
		Change24h:      change,
		Volume24h:      vol,
		Liquidity:      liq,
		Score:          total,
		Factors:        factors,
		Recommendation: domain.RecommendationForScore(total),
	}
}
