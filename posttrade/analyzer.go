// Package posttrade 汇总一个 episode 的成交与净值表现。
package posttrade

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Point 单步记录中汇总所需的字段。
type Point struct {
	NAV        float64
	Reward     float64
	Quantity   int64
	MatchedBid int64
	MatchedAsk int64
}

// Summary episode 统计结果
type Summary struct {
	Steps        int
	BidFills     int
	AskFills     int
	FilledBidQty int64
	FilledAskQty int64

	InitialNAV  float64
	FinalNAV    float64
	TotalPnL    float64
	TotalReturn float64 // 初始资金为 0 时恒为 0

	MaxDrawdown    float64 // 绝对值
	MaxDrawdownPct float64
	Sharpe         float64 // 每步收益均值/标准差，不年化

	MaxInventory   int64
	MinInventory   int64
	FinalInventory int64

	RewardSum float64
}

// Summarize 计算汇总；空记录返回仅含初始净值的结果。
func Summarize(points []Point, initCash float64) Summary {
	s := Summary{
		Steps:      len(points),
		InitialNAV: initCash,
		FinalNAV:   initCash,
	}
	peak := initCash
	rewards := make([]float64, 0, len(points))
	for _, p := range points {
		if p.MatchedBid > 0 {
			s.BidFills++
			s.FilledBidQty += p.MatchedBid
		}
		if p.MatchedAsk > 0 {
			s.AskFills++
			s.FilledAskQty += p.MatchedAsk
		}
		if p.Quantity > s.MaxInventory {
			s.MaxInventory = p.Quantity
		}
		if p.Quantity < s.MinInventory {
			s.MinInventory = p.Quantity
		}
		s.RewardSum += p.Reward
		rewards = append(rewards, p.Reward)

		if p.NAV > peak {
			peak = p.NAV
		}
		if dd := peak - p.NAV; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
			if peak > 0 {
				s.MaxDrawdownPct = dd / peak
			}
		}
	}
	if n := len(points); n > 0 {
		s.FinalNAV = points[n-1].NAV
		s.FinalInventory = points[n-1].Quantity
	}
	s.TotalPnL = s.FinalNAV - s.InitialNAV
	if initCash != 0 {
		s.TotalReturn = s.TotalPnL / math.Abs(initCash)
	}
	s.Sharpe = sharpe(rewards)
	return s
}

// sharpe 无风险利率取 0。
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(returns, nil)
	if variance <= 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}

// Print 打印汇总
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== episode 结果 ===")
	fmt.Fprintf(w, "步数: %d\n", s.Steps)
	fmt.Fprintf(w, "初始净值: %.4f\n", s.InitialNAV)
	fmt.Fprintf(w, "最终净值: %.4f\n", s.FinalNAV)
	fmt.Fprintf(w, "总盈亏: %.4f (%.2f%%)\n", s.TotalPnL, s.TotalReturn*100)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "买入成交: %d 次 / %d\n", s.BidFills, s.FilledBidQty)
	fmt.Fprintf(w, "卖出成交: %d 次 / %d\n", s.AskFills, s.FilledAskQty)
	fmt.Fprintf(w, "持仓区间: [%d, %d] 期末 %d\n", s.MinInventory, s.MaxInventory, s.FinalInventory)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "最大回撤: %.4f (%.2f%%)\n", s.MaxDrawdown, s.MaxDrawdownPct*100)
	fmt.Fprintf(w, "夏普比率: %.4f\n", s.Sharpe)
	fmt.Fprintln(w, "====================")
}
