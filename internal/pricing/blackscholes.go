// Package pricing implements closed-form Black-Scholes pricing for European
// options: premiums, Greeks, implied volatility and strike ladders.
//
// Every function is pure. Inputs are not validated here; callers must reject
// non-positive spot, strike or volatility before pricing.
package pricing

import (
	"math"

	"option-pricer/internal/models"
)

// DaysPerYear converts calendar days to year fractions and annual theta to daily.
const DaysPerYear = 365.0

// Inputs holds the parameters of a single European option.
type Inputs struct {
	Spot   float64
	Strike float64
	T      float64 // years to expiry
	Rate   float64
	Sigma  float64
	Type   models.OptionType
}

// YearsFromDays converts a days-to-expiry count into years.
func YearsFromDays(days int) float64 {
	return float64(days) / DaysPerYear
}

// WithSigma returns a copy of in priced at a different volatility.
func (in Inputs) WithSigma(sigma float64) Inputs {
	in.Sigma = sigma
	return in
}

// D1 is undefined for t == 0; callers branch on expiry first.
func D1(spot, strike, t, rate, sigma float64) float64 {
	return (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
}

// D2 derives d2 from d1.
func D2(d1, sigma, t float64) float64 {
	return d1 - sigma*math.Sqrt(t)
}

// IntrinsicValue is the payoff if the option were exercised now.
func IntrinsicValue(spot, strike float64, typ models.OptionType) float64 {
	if typ.IsCall() {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}

// CallPrice returns the Black-Scholes premium of a European call.
func CallPrice(spot, strike, t, rate, sigma float64) float64 {
	if t <= 0 {
		return math.Max(0, spot-strike)
	}
	d1 := D1(spot, strike, t, rate, sigma)
	d2 := D2(d1, sigma, t)
	price := spot*NormCDF(d1) - strike*math.Exp(-rate*t)*NormCDF(d2)
	return math.Max(0, price)
}

// PutPrice returns the Black-Scholes premium of a European put.
func PutPrice(spot, strike, t, rate, sigma float64) float64 {
	if t <= 0 {
		return math.Max(0, strike-spot)
	}
	d1 := D1(spot, strike, t, rate, sigma)
	d2 := D2(d1, sigma, t)
	price := strike*math.Exp(-rate*t)*NormCDF(-d2) - spot*NormCDF(-d1)
	return math.Max(0, price)
}

// Price dispatches to CallPrice or PutPrice.
func Price(in Inputs) float64 {
	if in.Type.IsCall() {
		return CallPrice(in.Spot, in.Strike, in.T, in.Rate, in.Sigma)
	}
	return PutPrice(in.Spot, in.Strike, in.T, in.Rate, in.Sigma)
}
