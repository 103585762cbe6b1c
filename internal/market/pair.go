package market

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Pair identifies a tradable market as base and quote currency codes.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair normalises a user-entered "BASE-QUOTE" string.
func ParsePair(raw string) (Pair, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	base, quote, found := strings.Cut(cleaned, "-")
	if !found || base == "" || quote == "" {
		return Pair{}, fmt.Errorf("invalid trading pair %q: expected BASE-QUOTE", raw)
	}
	return Pair{Base: base, Quote: quote}, nil
}

// String renders the canonical "BASE-QUOTE" form used by the data service.
func (p Pair) String() string {
	return p.Base + "-" + p.Quote
}

// Symbol renders the concatenated form used by exchange APIs, e.g. "BTCUSDT".
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

// IsZero reports whether the pair is unset.
func (p Pair) IsZero() bool {
	return p.Base == "" && p.Quote == ""
}

// MarshalJSON renders the pair in its canonical string form.
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the canonical "BASE-QUOTE" string form.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePair(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
