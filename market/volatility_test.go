package market

import (
	"math"
	"testing"
)

func TestPctReturns(t *testing.T) {
	rets := PctReturns([]float64{100, 110, 99})
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if math.Abs(rets[0]-0.1) > 1e-12 || math.Abs(rets[1]-(-0.1)) > 1e-12 {
		t.Fatalf("unexpected returns %v", rets)
	}
	if PctReturns([]float64{1}) != nil {
		t.Fatalf("single price should yield no returns")
	}
	// 分母为 0 的点被跳过
	if got := PctReturns([]float64{0, 1, 2}); len(got) != 1 {
		t.Fatalf("expected zero denominator skipped, got %v", got)
	}
}

func TestVolatility(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01}
	// mean 0, sum sq 4e-4, ddof=1 -> var 4e-4/3
	want := math.Sqrt(4e-4 / 3)
	if got := Volatility(rets, 252, false); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %f got %f", want, got)
	}
	if got := Volatility(rets, 252, true); math.Abs(got-want*math.Sqrt(252)) > 1e-12 {
		t.Fatalf("annualized vol mismatch: %f", got)
	}
	if Volatility([]float64{0.1}, 252, true) != 0 {
		t.Fatalf("expected 0 for single return")
	}
}

func TestSeriesVolatilityConstantPrice(t *testing.T) {
	s := Series{
		{Close: 10}, {Close: 10}, {Close: 10},
	}
	if v := SeriesVolatility(s, 252); v != 0 {
		t.Fatalf("flat series should have zero vol, got %f", v)
	}
}
