package pricing

import "math"

// Abramowitz and Stegun 26.2.17 coefficients. Absolute error < 7.5e-8.
const (
	cdfP  = 0.2316419
	cdfB1 = 0.319381530
	cdfB2 = -0.356563782
	cdfB3 = 1.781477937
	cdfB4 = -1.821255978
	cdfB5 = 1.330274429
)

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// NormPDF returns the standard normal density at x.
func NormPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// NormCDF returns the standard normal cumulative probability at x.
// The polynomial approximates the upper tail at |x|; positive x is reflected.
func NormCDF(x float64) float64 {
	t := 1 / (1 + cdfP*math.Abs(x))
	poly := t * (cdfB1 + t*(cdfB2+t*(cdfB3+t*(cdfB4+t*cdfB5))))
	tail := NormPDF(x) * poly
	if x > 0 {
		return 1 - tail
	}
	return tail
}
