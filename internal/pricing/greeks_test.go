package pricing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"option-pricer/internal/models"
)

func TestCalculateGreeks_WeeklyATM(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 100, T: YearsFromDays(7), Rate: 0.05, Sigma: 0.35}

	tests := []struct {
		typ  models.OptionType
		want models.Greeks
	}{
		{
			typ: models.OptionTypeCall,
			want: models.Greeks{
				Price: 1.980847101300192,
				Delta: 0.5175551440414305,
				Gamma: 0.08222780254890472,
				Theta: -0.1448034587023186,
				Vega:  0.05519400445063467,
			},
		},
		{
			typ: models.OptionTypePut,
			want: models.Greeks{
				Price: 1.8850026505042194,
				Delta: -0.48244485595856945,
				Gamma: 0.08222780254890472,
				Theta: -0.13111795794215364,
				Vega:  0.05519400445063467,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			in.Type = tt.typ
			got := CalculateGreeks(in)
			assert.InDelta(t, tt.want.Price, got.Price, 5e-5)
			assert.InDelta(t, tt.want.Delta, got.Delta, 5e-5)
			assert.InDelta(t, tt.want.Gamma, got.Gamma, 5e-5)
			assert.InDelta(t, tt.want.Theta, got.Theta, 5e-5)
			assert.InDelta(t, tt.want.Vega, got.Vega, 5e-5)
		})
	}
}

func TestCalculateGreeks_AtExpiry(t *testing.T) {
	call := CalculateGreeks(Inputs{Spot: 90, Strike: 100, Rate: 0.05, Sigma: 0.3, Type: models.OptionTypeCall})
	assert.Equal(t, models.Greeks{}, call)

	put := CalculateGreeks(Inputs{Spot: 90, Strike: 100, Rate: 0.05, Sigma: 0.3, Type: models.OptionTypePut})
	assert.Equal(t, models.Greeks{Price: 10, Delta: -1}, put)

	itmCall := CalculateGreeks(Inputs{Spot: 110, Strike: 100, Rate: 0.05, Sigma: 0.3, Type: models.OptionTypeCall})
	assert.Equal(t, models.Greeks{Price: 10, Delta: 1}, itmCall)

	pinned := CalculateGreeks(Inputs{Spot: 100, Strike: 100, Rate: 0.05, Sigma: 0.3, Type: models.OptionTypePut})
	assert.Equal(t, models.Greeks{}, pinned)
}

func TestCalculateGreeks_PriceMatchesPricer(t *testing.T) {
	in := Inputs{Spot: 2450, Strike: 2500, T: YearsFromDays(30), Rate: 0.05, Sigma: 0.45, Type: models.OptionTypeCall}
	assert.Equal(t, Price(in), CalculateGreeks(in).Price)

	in.Type = models.OptionTypePut
	assert.Equal(t, Price(in), CalculateGreeks(in).Price)
}

func TestProperty_Greeks(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("delta stays within its leg's bounds", prop.ForAll(
		func(s, k, days, sigma float64) bool {
			in := Inputs{Spot: s, Strike: k, T: days / DaysPerYear, Rate: 0.05, Sigma: sigma}
			in.Type = models.OptionTypeCall
			call := CalculateGreeks(in)
			in.Type = models.OptionTypePut
			put := CalculateGreeks(in)
			return call.Delta >= 0 && call.Delta <= 1 && put.Delta >= -1 && put.Delta <= 0
		},
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0, 60),
		gen.Float64Range(0.01, 2),
	))

	properties.Property("gamma and vega are non-negative and leg independent", prop.ForAll(
		func(s, k, days, sigma float64) bool {
			in := Inputs{Spot: s, Strike: k, T: days / DaysPerYear, Rate: 0.05, Sigma: sigma}
			in.Type = models.OptionTypeCall
			call := CalculateGreeks(in)
			in.Type = models.OptionTypePut
			put := CalculateGreeks(in)
			return call.Gamma >= 0 && call.Vega >= 0 &&
				call.Gamma == put.Gamma && call.Vega == put.Vega
		},
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0, 60),
		gen.Float64Range(0.01, 2),
	))

	properties.TestingRun(t)
}
