package chaindata

import "strconv"

// transferResponse is the envelope of the tokentx endpoint.
type transferResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  []TokenTransfer `json:"result"`
}

// TokenTransfer is one token transfer as reported by the chain-data source.
// Only the fields the tracker consumes are decoded.
type TokenTransfer struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"` // decimal string
}

// ValueFloat parses the transfer value, returning 0 for malformed input.
func (t TokenTransfer) ValueFloat() float64 {
	v, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return 0
	}
	return v
}
