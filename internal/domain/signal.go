package domain

// Signal is the direction a tracked address appears to be trading.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// WhaleSignal summarizes the recent transfer activity of one watched address.
// Signals are transient: built per track call, never stored.
type WhaleSignal struct {
	Address        string `json:"address"`
	Signal         Signal `json:"signal"`
	Confidence     int    `json:"confidence"` // clamped to [0,100]
	IsAccumulating bool   `json:"isAccumulating"`
	BuyCount       int    `json:"buys"`  // inbound transfers in the window
	SellCount      int    `json:"sells"` // outbound transfers in the window
}
