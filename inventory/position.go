package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"market-maker-sim/simerr"
)

// Ledger 记录做市账户的整数持仓与现金。值类型，复制即快照。
type Ledger struct {
	Quantity int64
	Cash     float64
	BidFee   float64 // 买入手续费率
	AskFee   float64 // 卖出手续费率
}

// NewLedger 创建空仓账户；费率必须非负。
func NewLedger(initCash, bidFee, askFee float64) (Ledger, error) {
	if bidFee < 0 || askFee < 0 {
		return Ledger{}, fmt.Errorf("%w: fees must be >= 0 (bid=%v ask=%v)", simerr.ErrConfiguration, bidFee, askFee)
	}
	return Ledger{Cash: initCash, BidFee: bidFee, AskFee: askFee}, nil
}

// BuyCost 买入 qty 的总支出（含手续费）。
func (l Ledger) BuyCost(qty int64, price float64) decimal.Decimal {
	notional := decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(price))
	return notional.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(l.BidFee)))
}

// SellProceeds 卖出 qty 的净收入（扣除手续费）。
func (l Ledger) SellProceeds(qty int64, price float64) decimal.Decimal {
	notional := decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(price))
	return notional.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(l.AskFee)))
}

// Apply 按成交更新持仓与现金并返回新账户；原账户不变。
func (l Ledger) Apply(matchedBid int64, bidPrice float64, matchedAsk int64, askPrice float64) Ledger {
	if matchedBid == 0 && matchedAsk == 0 {
		return l
	}
	cash := decimal.NewFromFloat(l.Cash)
	if matchedBid > 0 {
		cash = cash.Sub(l.BuyCost(matchedBid, bidPrice))
	}
	if matchedAsk > 0 {
		cash = cash.Add(l.SellProceeds(matchedAsk, askPrice))
	}
	l.Quantity += matchedBid - matchedAsk
	l.Cash = cash.InexactFloat64()
	return l
}
