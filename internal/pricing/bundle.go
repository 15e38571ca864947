package pricing

import "math"

// SumPrices returns the combined individual price of a set of beats.
func SumPrices(prices []float64) float64 {
	total := 0.0
	for _, p := range prices {
		total += p
	}
	return math.Round(total*100) / 100
}

// BundleDiscountPercent returns round((individual - bundle)/individual*100),
// or 0 when individual is not positive.
func BundleDiscountPercent(individual, bundle float64) int {
	if individual <= 0 {
		return 0
	}
	return int(math.RoundToEven((individual - bundle) / individual * 100))
}
