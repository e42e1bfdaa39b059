package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-pricer/internal/errors"
)

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	src := NewStaticSource(map[string]float64{"aapl": 180})

	price, err := src.Spot(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 180.0, price)

	price, err = src.Spot(ctx, " aapl ")
	require.NoError(t, err)
	assert.Equal(t, 180.0, price)

	_, err = src.Spot(ctx, "MSFT")
	assert.True(t, errors.Is(err, errors.ErrDataNotFound))
}

func TestStaticSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStaticSource(map[string]float64{"AAPL": 180}).Spot(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedSource_Walk(t *testing.T) {
	ctx := context.Background()
	cfg := SimulatedConfig{Volatility: 0.45, Step: 2 * time.Second, Seed: 42}

	a := NewSimulatedSource(cfg, map[string]float64{"BTC": 62000})
	b := NewSimulatedSource(cfg, map[string]float64{"BTC": 62000})

	prev := 62000.0
	for i := 0; i < 50; i++ {
		pa, err := a.Spot(ctx, "BTC")
		require.NoError(t, err)
		pb, err := b.Spot(ctx, "btc")
		require.NoError(t, err)

		assert.Equal(t, pa, pb, "same seed walks in lockstep")
		assert.Greater(t, pa, 0.0)
		assert.InEpsilon(t, prev, pa, 0.01, "a two second step stays small")
		prev = pa
	}

	_, err := a.Spot(ctx, "ETH")
	assert.True(t, errors.Is(err, errors.ErrDataNotFound))
}
