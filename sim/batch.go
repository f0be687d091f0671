package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch 并行运行多个 episode；Build 每次返回全新的 Runner，实例之间不共享状态。
type Batch struct {
	Build   func() (*Runner, error)
	Workers int // <= 0 不限制
}

// Run 每个 seed 一个 episode，结果按 seeds 顺序返回；任一失败则取消其余。
func (b Batch) Run(ctx context.Context, seeds []int64) ([]*Episode, error) {
	if b.Build == nil {
		return nil, fmt.Errorf("%w: batch needs a runner builder", ErrConfiguration)
	}
	g, ctx := errgroup.WithContext(ctx)
	if b.Workers > 0 {
		g.SetLimit(b.Workers)
	}
	out := make([]*Episode, len(seeds))
	for i, seed := range seeds {
		i, seed := i, seed // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			r, err := b.Build()
			if err != nil {
				return err
			}
			ep, err := r.Play(ctx, seed)
			if err != nil {
				return fmt.Errorf("episode %d (seed %d): %w", i, seed, err)
			}
			out[i] = ep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Seeds 返回 base, base+1, ..., base+n-1。
func Seeds(base int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = base + int64(i)
	}
	return out
}
