package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// OptionType selects the call or put leg.
type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

// IsCall reports whether t is a call.
func (t OptionType) IsCall() bool {
	return t == OptionTypeCall
}

// ParseOptionType accepts call/put and the exchange shorthands CE/PE.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C", "CE":
		return OptionTypeCall, nil
	case "PUT", "P", "PE":
		return OptionTypePut, nil
	}
	return "", fmt.Errorf("unknown option type %q (use call or put)", s)
}

// Moneyness is the position of a strike relative to spot for one leg.
type Moneyness string

const (
	ITM Moneyness = "ITM"
	ATM Moneyness = "ATM"
	OTM Moneyness = "OTM"
)

// Greeks is the theoretical premium together with its risk sensitivities.
// Theta is per calendar day and Vega is per one volatility point.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Price float64 `json:"price"`
}

// OptionChainEntry is one strike of the ladder with both legs priced.
type OptionChainEntry struct {
	Strike        float64   `json:"strike"`
	CallGreeks    Greeks    `json:"call"`
	PutGreeks     Greeks    `json:"put"`
	CallMoneyness Moneyness `json:"call_moneyness"`
	PutMoneyness  Moneyness `json:"put_moneyness"`
}

// Leg returns the Greeks and moneyness for the requested side of the entry.
func (e OptionChainEntry) Leg(t OptionType) (Greeks, Moneyness) {
	if t.IsCall() {
		return e.CallGreeks, e.CallMoneyness
	}
	return e.PutGreeks, e.PutMoneyness
}

// OptionChain is a full ladder of strikes for a single expiry.
type OptionChain struct {
	Symbol         string             `json:"symbol"`
	SpotPrice      float64            `json:"spot"`
	Expiry         Expiry             `json:"expiry_days"`
	Sigma          float64            `json:"sigma"`
	Rate           float64            `json:"rate"`
	StrikeInterval float64            `json:"strike_interval"`
	Entries        []OptionChainEntry `json:"entries"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Find returns the entry whose strike equals strike. Ladder strikes are
// rounded to the interval's decimals, so only float noise is tolerated.
func (c *OptionChain) Find(strike float64) (OptionChainEntry, bool) {
	tol := 1e-9 * math.Max(1, c.StrikeInterval)
	for _, e := range c.Entries {
		if math.Abs(e.Strike-strike) < tol {
			return e, true
		}
	}
	return OptionChainEntry{}, false
}

// Expiry is a supported days-to-expiry bucket.
type Expiry int

const (
	Expiry1D  Expiry = 1
	Expiry3D  Expiry = 3
	Expiry7D  Expiry = 7
	Expiry14D Expiry = 14
	Expiry30D Expiry = 30
)

// SupportedExpiries lists the expiries the chain can be generated for.
var SupportedExpiries = []Expiry{Expiry1D, Expiry3D, Expiry7D, Expiry14D, Expiry30D}

// Days returns the expiry as a day count.
func (e Expiry) Days() int {
	return int(e)
}

// Valid reports whether e is one of SupportedExpiries.
func (e Expiry) Valid() bool {
	for _, s := range SupportedExpiries {
		if e == s {
			return true
		}
	}
	return false
}

func (e Expiry) String() string {
	return strconv.Itoa(int(e)) + "d"
}

// ParseExpiry parses "7", "7d" or "7D" into a supported Expiry.
func ParseExpiry(s string) (Expiry, error) {
	raw := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "d")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}
	e := Expiry(n)
	if !e.Valid() {
		return 0, fmt.Errorf("unsupported expiry %q (use 1d, 3d, 7d, 14d or 30d)", s)
	}
	return e, nil
}
