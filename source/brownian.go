package source

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

// Brownian 生成以 InitValue 为起点的算术布朗运动路径。
type Brownian struct {
	InitValue float64
	NSample   int
	Sigma     float64
	TotalTime float64
}

// NewBrownian 校验参数后构造合成价格源。
func NewBrownian(initValue float64, nSample int, sigma, totalTime float64) (*Brownian, error) {
	if nSample < 2 {
		return nil, fmt.Errorf("%w: brownian n_sample must be >= 2, got %d", simerr.ErrConfiguration, nSample)
	}
	if !(sigma >= 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: brownian sigma must be >= 0, got %v", simerr.ErrConfiguration, sigma)
	}
	if !(totalTime > 0) || math.IsInf(totalTime, 0) {
		return nil, fmt.Errorf("%w: brownian total_time must be > 0, got %v", simerr.ErrConfiguration, totalTime)
	}
	if math.IsNaN(initValue) || math.IsInf(initValue, 0) {
		return nil, fmt.Errorf("%w: brownian init_value must be finite", simerr.ErrConfiguration)
	}
	return &Brownian{InitValue: initValue, NSample: nSample, Sigma: sigma, TotalTime: totalTime}, nil
}

// Dt 采样间隔 = TotalTime / NSample。
func (b *Brownian) Dt() float64 {
	return b.TotalTime / float64(b.NSample)
}

func (b *Brownian) Metadata() AssetMetadata {
	return AssetMetadata{
		Type:      TypeBrownian,
		Dt:        b.Dt(),
		TotalTime: b.TotalTime,
		Sigma:     b.Sigma,
		NSample:   b.NSample,
		InitValue: b.InitValue,
	}
}

// Reset 生成 NSample 个点：x[0]=InitValue，x[i]=x[i-1]+N(0,1)·σ·sqrt(dt)。
// 时间戳为 Unix 第 i+1 秒。
func (b *Brownian) Reset(rng *rand.Rand) (market.Series, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: brownian source needs a random source", simerr.ErrConfiguration)
	}
	scale := b.Sigma * math.Sqrt(b.Dt())
	out := make(market.Series, b.NSample)
	x := b.InitValue
	for i := 0; i < b.NSample; i++ {
		if i > 0 {
			x += rng.NormFloat64() * scale
		}
		out[i] = market.CloseOnly(time.Unix(int64(i+1), 0).UTC(), x)
	}
	return out, nil
}
