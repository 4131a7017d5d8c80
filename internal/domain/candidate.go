package domain

// Recommendation classifies a scored candidate.
type Recommendation string

const (
	RecommendationStrongBuy Recommendation = "STRONG_BUY"
	RecommendationBuy       Recommendation = "BUY"
	RecommendationWatch     Recommendation = "WATCH"
	RecommendationPass      Recommendation = "PASS"
)

// RecommendationForScore maps a score to its recommendation band.
// Thresholds are exclusive: 80 is still BUY, 81 is STRONG_BUY.
func RecommendationForScore(score int) Recommendation {
	switch {
	case score > 80:
		return RecommendationStrongBuy
	case score > 60:
		return RecommendationBuy
	case score > 40:
		return RecommendationWatch
	default:
		return RecommendationPass
	}
}

// TokenCandidate is a scored token surfaced by one market scan.
// Candidates are transient: built per scan call, never stored or mutated.
type TokenCandidate struct {
	Address        string         `json:"address"`
	Symbol         string         `json:"symbol"`
	Price          string         `json:"price"` // decimal string as reported by the source
	Change24h      float64        `json:"change24h"`
	Volume24h      float64        `json:"volume24h"`
	Liquidity      float64        `json:"liquidity"`
	Score          int            `json:"score"` // clamped to [0,100]
	Factors        []string       `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
}
