package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("spot", -1.0, "must be greater than zero")

	assert.Equal(t, "validation error: spot (-1): must be greater than zero", err.Error())
	assert.True(t, Is(err, ErrInputValidation))
	assert.False(t, Is(err, ErrDataNotFound))
}

func TestPricingErrorUnwrapsThroughChain(t *testing.T) {
	inner := NewValidationError("strike", 0.0, "must be greater than zero")
	err := Wrap(NewPricingError("AAPL", "greeks", inner), "quote failed")

	assert.True(t, Is(err, ErrInputValidation))

	var perr *PricingError
	require.True(t, As(err, &perr))
	assert.Equal(t, "AAPL", perr.Symbol)
	assert.Equal(t, "greeks", perr.Operation)

	var verr *ValidationError
	require.True(t, As(err, &verr))
	assert.Equal(t, "strike", verr.Field)
}

func TestDataError(t *testing.T) {
	err := NewDataError("spot", "MSFT", "no price available", ErrDataNotFound)
	assert.Equal(t, "data error [spot] MSFT: no price available: data not found", err.Error())
	assert.True(t, Is(err, ErrDataNotFound))

	bare := NewDataError("contract", "x", "corrupt row", nil)
	assert.Equal(t, "data error [contract] x: corrupt row", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrStrikeNotOnLadder, "strike %v", 187.0)
	assert.Equal(t, "strike 187: strike not on chain", err.Error())
	assert.True(t, Is(err, ErrStrikeNotOnLadder))
	assert.True(t, Is(fmt.Errorf("outer: %w", err), ErrStrikeNotOnLadder))
}
