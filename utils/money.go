package utils

import "math"

// Round2 rounds x to 2 decimal places. Money itself is stored as
// whole currency units (int64); this is only for derived percentages
// such as profit margins.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
