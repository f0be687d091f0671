package strategy

import (
	"fmt"

	"market-maker-sim/simerr"
)

// SkewConfig 控制最小价差、目标仓位等核心参数。
type SkewConfig struct {
	MinSpread      float64 `yaml:"min_spread" json:"min_spread"`             // 最小价差（如 0.0005 表示 5bps）
	TargetPosition float64 `yaml:"target_position" json:"target_position"` // 目标仓位（正=多，负=空）
	MaxDrift       float64 `yaml:"max_drift" json:"max_drift"`             // 可接受的仓位偏移
	BaseSize       float64 `yaml:"base_size" json:"base_size"`             // 报价基础数量
}

// InventorySkew 零库存策略：围绕观测价对称挂单，仓位偏离目标过多时整体平移四分之一价差。
type InventorySkew struct {
	cfg SkewConfig
}

func NewInventorySkew(cfg SkewConfig) (*InventorySkew, error) {
	if cfg.MinSpread <= 0 || cfg.BaseSize <= 0 || cfg.MaxDrift < 0 {
		return nil, fmt.Errorf("%w: invalid skew config %+v", simerr.ErrConfiguration, cfg)
	}
	return &InventorySkew{cfg: cfg}, nil
}

func (e *InventorySkew) GetAction(obs Observation) (Action, Diagnostics, error) {
	spread := e.cfg.MinSpread * obs.Price
	if spread <= 0 {
		spread = 0.0001
	}
	// 多头过多，下移 bid/ask，反之上移。
	drift := 0.0
	diff := obs.Inventory - e.cfg.TargetPosition
	if diff > e.cfg.MaxDrift {
		drift = spread * 0.25
	} else if diff < -e.cfg.MaxDrift {
		drift = -spread * 0.25
	}
	center := obs.Price - drift
	bid := center - spread/2
	if bid < 0 {
		bid = 0
	}
	return Action{
			BidQty:   e.cfg.BaseSize,
			BidPrice: bid,
			AskQty:   e.cfg.BaseSize,
			AskPrice: center + spread/2,
		}, Diagnostics{
			ReservePrice:  center,
			ReserveSpread: spread,
		}, nil
}
