package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/marketdata"
)

// stubSource returns a fixed pair list or error.
type stubSource struct {
	pairs []marketdata.Pair
	err   error
}

func (s *stubSource) SearchPairs(_ context.Context, _ string) ([]marketdata.Pair, error) {
	return s.pairs, s.err
}

// makePair builds a qualifying pair on chain "base" with the given stats.
func makePair(address, symbol, name string, liq, vol, change float64, buys, sells int) marketdata.Pair {
	var p marketdata.Pair
	p.ChainID = "base"
	p.PriceUsd = "0.0001"
	p.BaseToken.Address = address
	p.BaseToken.Symbol = symbol
	p.BaseToken.Name = name
	p.Liquidity.Usd = marketdata.Number(liq)
	p.Volume.H24 = marketdata.Number(vol)
	p.PriceChange.H24 = marketdata.Number(change)
	p.Txns.H24.Buys = buys
	p.Txns.H24.Sells = sells
	return p
}

func newScanner(src PairSource) *Scanner {
	return New(src, "base", eventlog.New(nil))
}

func TestScanner_ScoreRulesAndFactors(t *testing.T) {
	// All rules fire: 25+30+25+20 = 100.
	pair := makePair("0xaaa", "PEPE", "Pepe Coin", 60_000, 150_000, 60, 300, 100)
	s := newScanner(&stubSource{pairs: []marketdata.Pair{pair}})

	got := s.Scan(context.Background(), 5)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, 100, c.Score)
	assert.Equal(t, domain.RecommendationStrongBuy, c.Recommendation)
	assert.Equal(t, []string{"High volume", "Strong pump", "Buy pressure", "Good liq"}, c.Factors)
}

func TestScanner_ChangeBandsAreMutuallyExclusive(t *testing.T) {
	// Only the uptrend band fires: change 30 is not a strong pump.
	pair := makePair("0xaaa", "DOGE", "Doge", 20_000, 0, 30, 0, 0)
	s := newScanner(&stubSource{pairs: []marketdata.Pair{pair}})

	got := s.Scan(context.Background(), 5)
	require.Len(t, got, 1)
	assert.Equal(t, 20, got[0].Score)
	assert.Equal(t, []string{"Uptrend"}, got[0].Factors)
	assert.Equal(t, domain.RecommendationPass, got[0].Recommendation)
}

func TestScanner_RecommendationThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Recommendation
	}{
		{85, domain.RecommendationStrongBuy},
		{65, domain.RecommendationBuy},
		{45, domain.RecommendationWatch},
		{10, domain.RecommendationPass},
		{80, domain.RecommendationBuy},
		{0, domain.RecommendationPass},
		{100, domain.RecommendationStrongBuy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.RecommendationForScore(tt.score), "score %d", tt.score)
	}
}

func TestScanner_FiltersChainLiquidityAndKeywords(t *testing.T) {
	pairs := []marketdata.Pair{
		makePair("0x1", "PEPE", "Pepe", 50_000, 0, 0, 0, 0), // qualifies
		makePair("0x2", "ABC", "Serious Finance", 50_000, 0, 0, 0, 0), // no keyword
		makePair("0x3", "MOON", "Moonshot", 5_000, 0, 0, 0, 0),        // below floor
	}
	other := makePair("0x4", "DOGE", "Doge", 50_000, 0, 0, 0, 0)
	other.ChainID = "ethereum" // wrong chain
	pairs = append(pairs, other)

	s := newScanner(&stubSource{pairs: pairs})
	got := s.Scan(context.Background(), 10)

	require.Len(t, got, 1)
	assert.Equal(t, "0x1", got[0].Address)
}

func TestScanner_SortsDescendingAndTruncates(t *testing.T) {
	pairs := []marketdata.Pair{
		makePair("0xlow", "PEPE", "Pepe", 20_000, 0, 0, 0, 0),             // score 0
		makePair("0xhigh", "MOON", "Moon", 60_000, 150_000, 60, 300, 10),  // score 100
		makePair("0xmid", "DOGE", "Doge", 60_000, 0, 30, 0, 0),           // score 40
	}
	s := newScanner(&stubSource{pairs: pairs})

	got := s.Scan(context.Background(), 2)
	require.Len(t, got, 2, "never more than limit")
	assert.Equal(t, "0xhigh", got[0].Address)
	assert.Equal(t, "0xmid", got[1].Address)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestScanner_SourceFailureYieldsEmpty(t *testing.T) {
	events := eventlog.New(nil)
	s := New(&stubSource{err: errors.New("connection refused")}, "base", events)

	got := s.Scan(context.Background(), 5)
	assert.Empty(t, got)
	assert.NotEmpty(t, events.Recent(), "failure must leave a logged event")
}

func TestScanner_Analyze(t *testing.T) {
	pairs := []marketdata.Pair{
		makePair("0xAbC", "PEPE", "Pepe", 20_000, 0, 0, 0, 0),
		makePair("0xdef", "MOON", "Moon", 20_000, 0, 0, 0, 0),
	}
	s := newScanner(&stubSource{pairs: pairs})
	ctx := context.Background()

	c, found := s.Analyze(ctx, "pepe")
	require.True(t, found, "symbol match is case-insensitive")
	assert.Equal(t, "0xAbC", c.Address)

	c, found = s.Analyze(ctx, "0xABC")
	require.True(t, found, "address match is case-insensitive")
	assert.Equal(t, "PEPE", c.Symbol)

	_, found = s.Analyze(ctx, "WOJAK")
	assert.False(t, found)
}
