package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"option-pricer/internal/models"
)

// ChainWidth is the number of strikes generated on each side of spot.
const ChainWidth = 5

// ChainSize is the total number of strikes in a generated chain.
const ChainSize = 2*ChainWidth + 1

// ChainRequest describes a chain to generate.
type ChainRequest struct {
	Symbol string
	Spot   float64
	Expiry models.Expiry
	Rate   float64
	Sigma  float64
}

// StrikeInterval returns the ladder spacing for a spot price. Higher priced
// instruments get coarser spacing.
func StrikeInterval(spot float64) float64 {
	switch {
	case spot > 1000:
		return 50
	case spot > 100:
		return 5
	case spot > 10:
		return 0.5
	case spot > 1:
		return 0.1
	default:
		return 0.01
	}
}

// strikePlaces is the number of decimals needed to represent interval.
func strikePlaces(interval float64) int32 {
	exp := decimal.NewFromFloat(interval).Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

// RoundStrike rounds a strike to the precision of its ladder interval.
func RoundStrike(strike, interval float64) float64 {
	f, _ := decimal.NewFromFloat(strike).Round(strikePlaces(interval)).Float64()
	return f
}

// ClassifyMoneyness tags one leg of a strike. A strike within half an
// interval of spot is ATM on both legs.
func ClassifyMoneyness(spot, strike, interval float64, typ models.OptionType) models.Moneyness {
	if math.Abs(spot-strike) < 0.5*interval {
		return models.ATM
	}
	if typ.IsCall() {
		if spot > strike {
			return models.ITM
		}
		return models.OTM
	}
	if spot < strike {
		return models.ITM
	}
	return models.OTM
}

// Strikes returns the ChainSize strikes centred on spot, ascending. If the
// lower end would reach zero the ladder starts at one interval instead.
func Strikes(spot, interval float64) []float64 {
	start := spot - ChainWidth*interval
	if RoundStrike(start, interval) <= 0 {
		start = interval
	}

	strikes := make([]float64, ChainSize)
	for i := range strikes {
		strikes[i] = RoundStrike(start+float64(i)*interval, interval)
	}
	return strikes
}

// GenerateChain prices both legs of every strike on the ladder around
// req.Spot for req.Expiry.
func GenerateChain(req ChainRequest) models.OptionChain {
	interval := StrikeInterval(req.Spot)
	t := YearsFromDays(req.Expiry.Days())

	chain := models.OptionChain{
		Symbol:         req.Symbol,
		SpotPrice:      req.Spot,
		Expiry:         req.Expiry,
		Sigma:          req.Sigma,
		Rate:           req.Rate,
		StrikeInterval: interval,
		Entries:        make([]models.OptionChainEntry, 0, ChainSize),
	}

	for _, strike := range Strikes(req.Spot, interval) {
		in := Inputs{Spot: req.Spot, Strike: strike, T: t, Rate: req.Rate, Sigma: req.Sigma}

		call := in
		call.Type = models.OptionTypeCall
		put := in
		put.Type = models.OptionTypePut

		chain.Entries = append(chain.Entries, models.OptionChainEntry{
			Strike:        strike,
			CallGreeks:    CalculateGreeks(call),
			PutGreeks:     CalculateGreeks(put),
			CallMoneyness: ClassifyMoneyness(req.Spot, strike, interval, models.OptionTypeCall),
			PutMoneyness:  ClassifyMoneyness(req.Spot, strike, interval, models.OptionTypePut),
		})
	}

	return chain
}
