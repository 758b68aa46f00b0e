package analytics

import "math"

// -----------------------------------------------------------------------------

// Round2 rounds a USD amount to cents.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// -----------------------------------------------------------------------------

// Round4 rounds ratios and BTC amounts to four decimal places.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
