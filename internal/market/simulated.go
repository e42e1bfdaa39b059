package market

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// SimulatedConfig holds the random walk parameters.
type SimulatedConfig struct {
	// Volatility is the annualized volatility of the walk.
	Volatility float64
	// Step is the simulated time that passes between two Spot calls.
	Step time.Duration
	// Seed makes the walk reproducible.
	Seed uint64
}

// SimulatedSource moves each price by a geometric Brownian step on every read.
type SimulatedSource struct {
	mu     sync.Mutex
	cfg    SimulatedConfig
	prices map[string]float64
	shock  distuv.Normal
}

// NewSimulatedSource creates a random walk starting from prices.
func NewSimulatedSource(cfg SimulatedConfig, prices map[string]float64) *SimulatedSource {
	if cfg.Step <= 0 {
		cfg.Step = time.Second
	}
	s := &SimulatedSource{
		cfg:    cfg,
		prices: make(map[string]float64, len(prices)),
		shock:  distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(cfg.Seed)},
	}
	for symbol, price := range prices {
		s.prices[models.NormalizeSymbol(symbol)] = price
	}
	return s
}

// Spot advances symbol one step and returns the new price.
func (s *SimulatedSource) Spot(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	symbol = models.NormalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[symbol]
	if !ok {
		return 0, errors.NewDataError("spot", symbol, "symbol not simulated", errors.ErrDataNotFound)
	}

	dt := s.cfg.Step.Hours() / (24 * 365)
	sigma := s.cfg.Volatility
	price *= math.Exp(-0.5*sigma*sigma*dt + sigma*math.Sqrt(dt)*s.shock.Rand())
	s.prices[symbol] = price

	return price, nil
}
