package domain

import "time"

// Position is the current holding for one token. The token address is the
// uniqueness key: holding a position and having a row are the same thing,
// so a full close deletes the row instead of leaving amount=0.
type Position struct {
	Token     string    `json:"token"`
	Symbol    string    `json:"symbol"`
	Entry     float64   `json:"entry"` // price of the first buy, never recomputed
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
