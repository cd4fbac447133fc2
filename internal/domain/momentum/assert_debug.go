//go:build momentumdebug

package momentum

import (
	"fmt"
	"math"
)

func assertBounded(name string, v float64) {
	if v < 0 || v > 1 || math.IsNaN(v) {
		panic(fmt.Errorf("%w: %s=%v", ErrInvariantViolation, name, v))
	}
}
