// Package market supplies spot prices for underlyings.
//
// Live market-data ingestion is outside this module; the sources here are a
// fixed price table and a seeded random walk used for watching a chain move.
package market

import (
	"context"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// SpotSource provides the current price of an underlying.
type SpotSource interface {
	Spot(ctx context.Context, symbol string) (float64, error)
}

// StaticSource serves prices from a table fixed at construction.
type StaticSource struct {
	prices map[string]float64
}

// NewStaticSource creates a StaticSource seeded with prices.
func NewStaticSource(prices map[string]float64) *StaticSource {
	s := &StaticSource{prices: make(map[string]float64, len(prices))}
	for symbol, price := range prices {
		s.prices[models.NormalizeSymbol(symbol)] = price
	}
	return s
}

// Spot returns the stored price for symbol.
func (s *StaticSource) Spot(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	price, ok := s.prices[models.NormalizeSymbol(symbol)]
	if !ok {
		return 0, errors.NewDataError("spot", symbol, "no price available", errors.ErrDataNotFound)
	}
	return price, nil
}
