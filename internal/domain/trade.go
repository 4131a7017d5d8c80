package domain

import (
	"strings"
	"time"
)

// TradeType is the direction of an executed trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// ParseTradeType normalizes a caller-supplied trade type. Unrecognized
// values pass through upper-cased so validation can report them.
func ParseTradeType(s string) TradeType {
	return TradeType(strings.ToUpper(strings.TrimSpace(s)))
}

// TradeRecord is one executed trade. Records are append-only: written
// exactly once per execution, never updated or deleted. Insertion order
// is the audit trail.
type TradeRecord struct {
	TradeID   string    `json:"id"`
	Token     string    `json:"token"`
	Symbol    string    `json:"symbol"`
	Type      TradeType `json:"type"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	TxRef     string    `json:"tx"` // transaction reference, synthetic until settlement lands
	CreatedAt time.Time `json:"created_at"`
}
