package strategy

import (
	"fmt"
	"math"

	"market-maker-sim/simerr"
)

// ObservationSize 观测向量长度。
const ObservationSize = 8

// ActionSize 动作向量长度：bid 数量、bid 价、ask 数量、ask 价。
const ActionSize = 4

// Observation 环境每步给出的观测。
type Observation struct {
	Price      float64 // mark 价（bar 环境为典型价）
	Inventory  float64
	Tick       float64
	RiskFactor float64 // γ
	K          float64
	Sigma      float64
	TotalTime  float64
	Dt         float64
}

// Vector 按固定顺序展开为数值向量。
func (o Observation) Vector() []float64 {
	return []float64{o.Price, o.Inventory, o.Tick, o.RiskFactor, o.K, o.Sigma, o.TotalTime, o.Dt}
}

func ObservationFromVector(v []float64) (Observation, error) {
	if len(v) != ObservationSize {
		return Observation{}, fmt.Errorf("%w: observation needs %d fields, got %d", simerr.ErrData, ObservationSize, len(v))
	}
	return Observation{
		Price: v[0], Inventory: v[1], Tick: v[2], RiskFactor: v[3],
		K: v[4], Sigma: v[5], TotalTime: v[6], Dt: v[7],
	}, nil
}

// Action 策略给出的双边报价。数量为浮点，由环境截断为整数。
type Action struct {
	BidQty   float64
	BidPrice float64
	AskQty   float64
	AskPrice float64
}

func (a Action) Vector() []float64 {
	return []float64{a.BidQty, a.BidPrice, a.AskQty, a.AskPrice}
}

func ActionFromVector(v []float64) (Action, error) {
	if len(v) != ActionSize {
		return Action{}, fmt.Errorf("%w: action needs %d fields, got %d", simerr.ErrInvalidAction, ActionSize, len(v))
	}
	return Action{BidQty: v[0], BidPrice: v[1], AskQty: v[2], AskPrice: v[3]}, nil
}

// Validate 数量、价格均须为有限非负数。
func (a Action) Validate() error {
	for i, x := range a.Vector() {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return fmt.Errorf("%w: field %d = %v", simerr.ErrInvalidAction, i, x)
		}
	}
	return nil
}

// Diagnostics 策略内部量，仅供分析。
type Diagnostics struct {
	ReservePrice  float64
	ReserveSpread float64
}

// Policy 报价策略：给定观测返回动作。
type Policy interface {
	GetAction(obs Observation) (Action, Diagnostics, error)
}
