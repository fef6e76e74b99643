package finance

import (
	"errors"
	"math"
)

// ErrInvalidArgument is returned when calculator inputs fall outside the
// domain a formula is defined on.
var ErrInvalidArgument = errors.New("invalid argument")

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
