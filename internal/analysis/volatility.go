package analysis

import "math"

// Volatility is the population standard deviation of period-over-period
// returns, in percent. It is 0 for fewer than two prices.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	mean := average(returns)
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	return math.Sqrt(variance/float64(len(returns))) * 100
}
