package utils

import "math"

// Round2 rounds to 2 decimal places, matching the precision of stored
// prices and tax rates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
