package pricing

import "math"

// Newton-Raphson settings for the implied volatility search.
const (
	IVInitialGuess  = 0.3
	IVMaxIterations = 100
	IVTolerance     = 1e-4
	IVMinSigma      = 0.01
	IVMaxSigma      = 2.0
)

// IVResult is the outcome of an implied volatility search.
type IVResult struct {
	Sigma      float64 `json:"sigma"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

// ImpliedVolatility returns the volatility at which the model price of in
// matches marketPrice. in.Sigma is ignored. The search never fails: when it
// does not converge the last estimate is returned.
func ImpliedVolatility(marketPrice float64, in Inputs) float64 {
	return SolveImpliedVolatility(marketPrice, in).Sigma
}

// SolveImpliedVolatility runs the same search as ImpliedVolatility and also
// reports whether the price tolerance was reached.
func SolveImpliedVolatility(marketPrice float64, in Inputs) IVResult {
	sigma := IVInitialGuess
	sqrtT := math.Sqrt(in.T)

	for i := 0; i < IVMaxIterations; i++ {
		diff := Price(in.WithSigma(sigma)) - marketPrice
		if math.Abs(diff) < IVTolerance {
			return IVResult{Sigma: sigma, Converged: true, Iterations: i}
		}

		// Raw vega, not the per-point figure reported in Greeks.
		vega := in.Spot * NormPDF(D1(in.Spot, in.Strike, in.T, in.Rate, sigma)) * sqrtT
		if math.IsNaN(vega) {
			// d1 is 0/0 at expiry; there is no step to take.
			return IVResult{Sigma: sigma, Iterations: i}
		}

		// A vanishing vega makes the step infinite; the clamp bounds it.
		sigma -= diff / vega
		if sigma <= 0 {
			sigma = IVMinSigma
		} else if sigma > IVMaxSigma {
			sigma = IVMaxSigma
		}
	}

	return IVResult{Sigma: sigma, Iterations: IVMaxIterations}
}
