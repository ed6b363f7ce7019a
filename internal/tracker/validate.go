package tracker

import (
	"fmt"
	"math"
)

func validatePercent(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100", ErrValidation, field)
	}
	return nil
}

func validateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	return nil
}
