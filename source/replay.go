package source

import (
	"fmt"
	"math/rand"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

// Replay 每次 reset 都回放同一条已保存的序列（SaveCSV 的输出）。
// dt 由 TotalTime / 行数 得出。
type Replay struct {
	Path      string
	Sigma     float64
	TotalTime float64

	series market.Series
	meta   AssetMetadata
}

func NewReplay(path string, sigma, totalTime float64) (*Replay, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: replay path is required", simerr.ErrConfiguration)
	}
	if sigma < 0 || !(totalTime > 0) {
		return nil, fmt.Errorf("%w: replay needs sigma >= 0 and total_time > 0", simerr.ErrConfiguration)
	}
	return &Replay{Path: path, Sigma: sigma, TotalTime: totalTime, meta: AssetMetadata{Type: TypeReplay}}, nil
}

func (r *Replay) Metadata() AssetMetadata { return r.meta }

// Reset 首次调用时读取文件，之后返回缓存序列的副本；rng 不参与。
func (r *Replay) Reset(_ *rand.Rand) (market.Series, error) {
	if r.series == nil {
		s, err := LoadCSV(r.Path)
		if err != nil {
			return nil, err
		}
		r.series = s
	}
	r.meta = AssetMetadata{
		Type:      TypeReplay,
		Dt:        r.TotalTime / float64(len(r.series)),
		TotalTime: r.TotalTime,
		Sigma:     r.Sigma,
		NSample:   len(r.series),
	}
	out := make(market.Series, len(r.series))
	copy(out, r.series)
	return out, nil
}
