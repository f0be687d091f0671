package market

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PctReturns computes simple returns c[i]/c[i-1]-1, skipping non-positive denominators.
func PctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			out = append(out, closes[i]/closes[i-1]-1)
		}
	}
	return out
}

// Volatility returns the sample standard deviation (ddof=1) of returns,
// scaled by sqrt(periods) when annualize is set.
func Volatility(returns []float64, periods int, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}
	vol := stat.StdDev(returns, nil)
	if annualize && periods > 0 {
		vol *= math.Sqrt(float64(periods))
	}
	return vol
}

// SeriesVolatility 基于收盘价的简单收益率估计波动率。
func SeriesVolatility(s Series, periods int) float64 {
	return Volatility(PctReturns(s.Closes()), periods, true)
}
