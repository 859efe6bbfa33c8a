package schedule

import (
	"errors"
	"fmt"
)

// MultiplierDivisor scales a historical daily maximum down to a per-level
// repeat count.
const MultiplierDivisor = 4

var ErrInvalidInput = errors.New("invalid input")

// DeriveMultiplier returns max(maxDaily/MultiplierDivisor, 1).
func DeriveMultiplier(maxDaily int) (int, error) {
	if maxDaily < 0 {
		return 0, fmt.Errorf("%w: max daily count %d is negative", ErrInvalidInput, maxDaily)
	}
	return max(maxDaily/MultiplierDivisor, 1), nil
}
