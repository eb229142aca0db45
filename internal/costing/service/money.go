package service

import "math"

// roundMoney converts a raw R$ amount into centavos, rounding half away from
// zero so that repeated small charges do not drift downward.
func roundMoney(amount float64) int64 {
	cents := amount * 100
	if cents < 0 {
		return -int64(math.Floor(-cents + 0.5))
	}
	return int64(math.Floor(cents + 0.5))
}
