package strategy

import (
	"fmt"
	"math"

	"market-maker-sim/simerr"
)

// FixedSpread 在观测价两侧固定距离挂单，不看仓位。
type FixedSpread struct {
	HalfSpread float64 `yaml:"half_spread" json:"half_spread"`
	Size       float64 `yaml:"size" json:"size"`
}

func NewFixedSpread(halfSpread, size float64) (*FixedSpread, error) {
	if !(halfSpread >= 0) || math.IsInf(halfSpread, 0) || !(size >= 0) {
		return nil, fmt.Errorf("%w: fixed spread needs half_spread >= 0 and size >= 0", simerr.ErrConfiguration)
	}
	return &FixedSpread{HalfSpread: halfSpread, Size: size}, nil
}

func (f *FixedSpread) GetAction(obs Observation) (Action, Diagnostics, error) {
	bid := math.Max(0, obs.Price-f.HalfSpread)
	return Action{
		BidQty:   f.Size,
		BidPrice: bid,
		AskQty:   f.Size,
		AskPrice: obs.Price + f.HalfSpread,
	}, Diagnostics{ReservePrice: obs.Price, ReserveSpread: 2 * f.HalfSpread}, nil
}
