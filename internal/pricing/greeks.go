package pricing

import (
	"math"

	"option-pricer/internal/models"
)

// CalculateGreeks prices the option and derives delta, gamma, theta and vega
// from the same d1/d2. Theta is per day and vega per volatility point.
//
// At or past expiry the option is terminal: price is intrinsic value, delta
// is 0 or +/-1 and the remaining Greeks are zero.
func CalculateGreeks(in Inputs) models.Greeks {
	isCall := in.Type.IsCall()

	if in.T <= 0 {
		g := models.Greeks{Price: IntrinsicValue(in.Spot, in.Strike, in.Type)}
		switch {
		case isCall && in.Spot > in.Strike:
			g.Delta = 1
		case !isCall && in.Spot < in.Strike:
			g.Delta = -1
		}
		return g
	}

	sqrtT := math.Sqrt(in.T)
	d1 := D1(in.Spot, in.Strike, in.T, in.Rate, in.Sigma)
	d2 := D2(d1, in.Sigma, in.T)
	pdf := NormPDF(d1)
	discount := in.Strike * math.Exp(-in.Rate*in.T)
	decay := -in.Spot * pdf * in.Sigma / (2 * sqrtT)

	g := models.Greeks{
		Gamma: pdf / (in.Spot * in.Sigma * sqrtT),
		Vega:  in.Spot * pdf * sqrtT / 100,
	}
	if isCall {
		g.Delta = NormCDF(d1)
		g.Theta = (decay - in.Rate*discount*NormCDF(d2)) / DaysPerYear
		g.Price = CallPrice(in.Spot, in.Strike, in.T, in.Rate, in.Sigma)
	} else {
		g.Delta = NormCDF(d1) - 1
		g.Theta = (decay + in.Rate*discount*NormCDF(-d2)) / DaysPerYear
		g.Price = PutPrice(in.Spot, in.Strike, in.T, in.Rate, in.Sigma)
	}
	return g
}
