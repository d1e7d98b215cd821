package timeparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalidFormat is returned for any input outside <digits><s|m|h|d>
var ErrInvalidFormat = errors.New("invalid duration format")

var unitMillis = map[byte]int64{
	's': 1000,
	'm': 60 * 1000,
	'h': 60 * 60 * 1000,
	'd': 24 * 60 * 60 * 1000,
}

// ParseMillis converts strings like "15m" or "7d" into milliseconds.
// Only the units s, m, h and d are accepted.
func ParseMillis(value string) (int64, error) {
	if len(value) < 2 {
		return 0, fmt.Errorf("%w: %q (use a format like '15m', '7d', '1h', '30s')", ErrInvalidFormat, value)
	}

	unit := value[len(value)-1]
	multiplier, ok := unitMillis[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q has unknown unit %q", ErrInvalidFormat, value, string(unit))
	}

	digits := value[:len(value)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: %q (use a format like '15m', '7d', '1h', '30s')", ErrInvalidFormat, value)
		}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, value, err)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidFormat, value)
	}

	return n * multiplier, nil
}

// ParseDuration is ParseMillis returning a time.Duration
func ParseDuration(value string) (time.Duration, error) {
	ms, err := ParseMillis(value)
	if err != nil {
		return 0, err
	}
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidFormat, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
