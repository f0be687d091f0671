package matching

import (
	"math/rand"

	"market-maker-sim/market"
)

// HighLow 用 bar 的最高/最低价判断成交：ask <= high 卖出成交，bid >= low 买入成交。
// 不使用随机数。
type HighLow struct{}

func (HighLow) Match(q Quote, bar market.Bar, _ *rand.Rand) Fill {
	var f Fill
	if q.AskQty > 0 && q.AskPrice <= bar.High {
		f.Ask = q.AskQty
	}
	if q.BidQty > 0 && q.BidPrice >= bar.Low {
		f.Bid = q.BidQty
	}
	return f
}
