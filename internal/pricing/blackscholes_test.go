package pricing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"option-pricer/internal/models"
)

func TestPrices_ReferenceCase(t *testing.T) {
	// S=100 K=100 r=5% sigma=20% T=1, exact-erf reference values.
	assert.InDelta(t, 10.450583572185565, CallPrice(100, 100, 1, 0.05, 0.2), 1e-4)
	assert.InDelta(t, 5.573526022256971, PutPrice(100, 100, 1, 0.05, 0.2), 1e-4)
}

func TestPrices_AtExpiryAreIntrinsic(t *testing.T) {
	assert.Equal(t, 0.0, CallPrice(90, 100, 0, 0.05, 0.3))
	assert.Equal(t, 10.0, PutPrice(90, 100, 0, 0.05, 0.3))
	assert.Equal(t, 15.0, CallPrice(115, 100, 0, 0.05, 0.3))
	assert.Equal(t, 0.0, PutPrice(115, 100, 0, 0.05, 0.3))
	assert.Equal(t, 0.0, CallPrice(100, 100, -0.1, 0.05, 0.3))
}

func TestPrice_Dispatch(t *testing.T) {
	in := Inputs{Spot: 180, Strike: 190, T: YearsFromDays(14), Rate: 0.05, Sigma: 0.3}

	in.Type = models.OptionTypeCall
	assert.Equal(t, CallPrice(180, 190, in.T, 0.05, 0.3), Price(in))
	assert.InDelta(t, 1.11492638137387, Price(in), 1e-4)

	in.Type = models.OptionTypePut
	assert.Equal(t, PutPrice(180, 190, in.T, 0.05, 0.3), Price(in))
}

func TestYearsFromDays(t *testing.T) {
	assert.Equal(t, 0.0, YearsFromDays(0))
	assert.InDelta(t, 7.0/365.0, YearsFromDays(7), 1e-15)
	assert.Equal(t, 1.0, YearsFromDays(365))
}

func TestIntrinsicValue(t *testing.T) {
	assert.Equal(t, 5.0, IntrinsicValue(105, 100, models.OptionTypeCall))
	assert.Equal(t, 0.0, IntrinsicValue(105, 100, models.OptionTypePut))
	assert.Equal(t, 0.0, IntrinsicValue(95, 100, models.OptionTypeCall))
	assert.Equal(t, 5.0, IntrinsicValue(95, 100, models.OptionTypePut))
}

func TestProperty_BlackScholes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("put-call parity holds", prop.ForAll(
		func(s, k, days, r, sigma float64) bool {
			tt := days / DaysPerYear
			lhs := CallPrice(s, k, tt, r, sigma) - PutPrice(s, k, tt, r, sigma)
			rhs := s - k*math.Exp(-r*tt)
			return math.Abs(lhs-rhs) <= 1e-6*math.Max(s, k)
		},
		gen.Float64Range(50, 150),
		gen.Float64Range(50, 150),
		gen.Float64Range(1, 365),
		gen.Float64Range(0, 0.1),
		gen.Float64Range(0.05, 1.5),
	))

	properties.Property("prices are non-negative and bounded", prop.ForAll(
		func(s, k, days, sigma float64) bool {
			tt := days / DaysPerYear
			call := CallPrice(s, k, tt, 0.05, sigma)
			put := PutPrice(s, k, tt, 0.05, sigma)
			return call >= 0 && put >= 0 && call <= s+1e-9 && put <= k+1e-9
		},
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0, 365),
		gen.Float64Range(0.01, 2),
	))

	properties.Property("prices approach intrinsic value as expiry nears", prop.ForAll(
		func(s, k, sigma float64) bool {
			tt := 1e-10
			bound := s*sigma*math.Sqrt(tt) + k*0.05*tt + 1e-6
			call := CallPrice(s, k, tt, 0.05, sigma)
			put := PutPrice(s, k, tt, 0.05, sigma)
			return math.Abs(call-math.Max(0, s-k)) <= bound &&
				math.Abs(put-math.Max(0, k-s)) <= bound
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.05, 1.5),
	))

	properties.TestingRun(t)
}
