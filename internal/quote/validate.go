package quote

import (
	"math"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// The engine does not guard its inputs; everything reaching it passes here.

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewValidationError(field, v, "must be a finite number")
	}
	if v <= 0 {
		return errors.NewValidationError(field, v, "must be greater than zero")
	}
	return nil
}

func validateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewValidationError(field, v, "must be a finite number")
	}
	if v < 0 {
		return errors.NewValidationError(field, v, "must not be negative")
	}
	return nil
}

func validateQuantity(n int) error {
	if n <= 0 {
		return errors.NewValidationError("quantity", n, "must be at least one")
	}
	return nil
}

func validateDays(days int) error {
	if days < 0 {
		return errors.NewValidationError("days", days, "must not be negative")
	}
	return nil
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return errors.NewValidationError("symbol", symbol, "is required")
	}
	return nil
}

func validateType(t models.OptionType) error {
	if t != models.OptionTypeCall && t != models.OptionTypePut {
		return errors.NewValidationError("type", t, "must be CALL or PUT")
	}
	return nil
}

func validateExpiry(e models.Expiry) error {
	if !e.Valid() {
		return errors.Wrapf(errors.ErrUnsupportedExpiry, "%d days", e.Days())
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
