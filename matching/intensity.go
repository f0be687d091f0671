package matching

import (
	"fmt"
	"math"
	"math/rand"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

// Intensity 泊松到达强度模型：λ(δ) = A·exp(-k·δ)，一步内成交概率 p = 1 - exp(-λ·dt)。
// A 取 1/dt/exp(k/4)。
type Intensity struct {
	K  float64
	Dt float64
	A  float64
}

func NewIntensity(k, dt float64) (*Intensity, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%w: intensity k must be > 0, got %v", simerr.ErrConfiguration, k)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: intensity dt must be > 0, got %v", simerr.ErrConfiguration, dt)
	}
	return &Intensity{K: k, Dt: dt, A: 1 / dt / math.Exp(k/4)}, nil
}

// Probability 距 mark 价 delta 的挂单在一步内成交的概率。
func (m *Intensity) Probability(delta float64) float64 {
	lambda := m.A * math.Exp(-m.K*delta)
	p := 1 - math.Exp(-lambda*m.Dt)
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// Probabilities 返回 (bid, ask) 两侧的成交概率。
func (m *Intensity) Probabilities(q Quote, mark float64) (bid, ask float64) {
	return m.Probability(mark - q.BidPrice), m.Probability(q.AskPrice - mark)
}

// Match 先抽 ask 再抽 bid；数量为 0 时仍消耗随机数，保证抽样序列与报价数量无关。
func (m *Intensity) Match(q Quote, bar market.Bar, rng *rand.Rand) Fill {
	pBid, pAsk := m.Probabilities(q, bar.Close)
	var f Fill
	if rng.Float64() < pAsk {
		f.Ask = q.AskQty
	}
	if rng.Float64() < pBid {
		f.Bid = q.BidQty
	}
	return f
}
