// Package source 提供仿真使用的价格源：合成布朗运动、历史数据随机采样、已保存序列回放。
package source

import (
	"fmt"
	"math"
	"math/rand"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

// 价格源类型
const (
	TypeBrownian   = "brownian"
	TypeHistorical = "historical"
	TypeReplay     = "replay"
)

// AssetMetadata 描述一个 episode 内不变的资产常量，reset 时刷新。
type AssetMetadata struct {
	Type      string  `json:"type" yaml:"type"`
	Dt        float64 `json:"dt" yaml:"dt"`
	TotalTime float64 `json:"total_time" yaml:"total_time"`
	Sigma     float64 `json:"sigma" yaml:"sigma"`

	// 以下为各价格源特有的标识
	NSample       int     `json:"n_sample,omitempty" yaml:"n_sample,omitempty"`
	InitValue     float64 `json:"init_value,omitempty" yaml:"init_value,omitempty"`
	Date          string  `json:"date,omitempty" yaml:"date,omitempty"`
	SecCode       string  `json:"sec_cd,omitempty" yaml:"sec_cd,omitempty"`
	SigmaEstimate float64 `json:"sigma_estimate,omitempty" yaml:"sigma_estimate,omitempty"`
}

// Validate 要求 dt、total_time 为正，sigma 非负，且都为有限值。
func (m AssetMetadata) Validate() error {
	if !(m.Dt > 0) || math.IsInf(m.Dt, 0) {
		return fmt.Errorf("%w: asset dt must be > 0, got %v", simerr.ErrData, m.Dt)
	}
	if !(m.TotalTime > 0) || math.IsInf(m.TotalTime, 0) {
		return fmt.Errorf("%w: asset total_time must be > 0, got %v", simerr.ErrData, m.TotalTime)
	}
	if !(m.Sigma >= 0) || math.IsInf(m.Sigma, 0) {
		return fmt.Errorf("%w: asset sigma must be >= 0, got %v", simerr.ErrData, m.Sigma)
	}
	return nil
}

// Source 是仿真核心消费的价格源接口。
// Reset 用传入的随机源生成/抽取一条新序列；Metadata 返回最近一次 reset 对应的资产常量。
type Source interface {
	Reset(rng *rand.Rand) (market.Series, error)
	Metadata() AssetMetadata
}
