package marketdata

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is a float64 that tolerates the source's mixed encoding: some
// numeric fields arrive as JSON numbers, some as decimal strings, and
// absent or null fields default to 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Malformed number strings degrade to 0 rather than failing
			// the whole pair list.
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Float64 returns the plain float value.
func (n Number) Float64() float64 {
	return float64(n)
}

// searchResponse is the envelope of the pairs search endpoint.
type searchResponse struct {
	Pairs []Pair `json:"pairs"`
}

// Pair is one trading pair record as reported by the market-data source.
// Only the fields the scanner consumes are decoded.
type Pair struct {
	ChainID   string `json:"chainId"`
	PriceUsd  string `json:"priceUsd"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity struct {
		Usd Number `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 Number `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 Number `json:"h24"`
	} `json:"priceChange"`
	Txns struct {
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
}
