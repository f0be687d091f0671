package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"market-maker-sim/posttrade"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
)

// Runner 把策略接到环境上，跑完整个 episode。
type Runner struct {
	Env    *Env
	Policy strategy.Policy
}

// Episode 一次完整运行的结果。
type Episode struct {
	ID       uuid.UUID
	Seed     int64
	Metadata source.AssetMetadata
	History  History
	Summary  posttrade.Summary
}

// Play 以 seed 重置环境并运行到结束；ctx 在每步之间检查，取消时放弃本 episode。
// 返回的 History 每条记录都带有策略给出的保留价。
func (r *Runner) Play(ctx context.Context, seed int64) (*Episode, error) {
	if r.Env == nil || r.Policy == nil {
		return nil, fmt.Errorf("%w: runner not initialized", ErrConfiguration)
	}
	id := uuid.New()
	log := r.Env.log.WithFields(map[string]interface{}{"episode": id.String(), "seed": seed})

	obs, meta, err := r.Env.Reset(&seed)
	if err != nil {
		return nil, err
	}
	reserves := make([]float64, 0, r.Env.LastTick())
	for !r.Env.Done() {
		if err := ctx.Err(); err != nil {
			log.LogEpisode("abandoned", map[string]interface{}{"tick": r.Env.Tick()})
			return nil, err
		}
		action, diag, err := r.Policy.GetAction(obs)
		if err != nil {
			return nil, fmt.Errorf("policy at tick %d: %w", r.Env.Tick(), err)
		}
		res, err := r.Env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("step at tick %d: %w", r.Env.Tick(), err)
		}
		reserves = append(reserves, diag.ReservePrice)
		r.Env.rec.ObserveReservePrice(diag.ReservePrice)
		obs = res.Observation
	}

	hist := r.Env.History()
	for i := range hist {
		v := reserves[i]
		hist[i].ReservePrice = &v
	}
	summary := posttrade.Summarize(hist.Points(), r.Env.Market().InitCash)
	log.LogEpisode("finished", map[string]interface{}{
		"steps":     summary.Steps,
		"final_nav": summary.FinalNAV,
		"pnl":       summary.TotalPnL,
		"sharpe":    summary.Sharpe,
	})
	return &Episode{
		ID:       id,
		Seed:     seed,
		Metadata: meta,
		History:  hist,
		Summary:  summary,
	}, nil
}
