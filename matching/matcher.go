// Package matching 决定每一步报价是否成交。
package matching

import (
	"math/rand"

	"market-maker-sim/market"
)

// Quote 一步内的双边挂单。
type Quote struct {
	BidQty   int64
	BidPrice float64
	AskQty   int64
	AskPrice float64
}

// Fill 本步成交数量；要么全部成交要么不成交。
type Fill struct {
	Bid int64
	Ask int64
}

// Matcher 根据当前 bar 撮合报价。rng 由环境持有，保证可复现。
type Matcher interface {
	Match(q Quote, bar market.Bar, rng *rand.Rand) Fill
}
