package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-sim/config"
)

func TestBatchRunsInSeedOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Brownian.NSample = 50
	b := Batch{
		Build:   func() (*Runner, error) { return BuildRunner(cfg) },
		Workers: 3,
	}
	seeds := Seeds(10, 6)
	assert.Equal(t, []int64{10, 11, 12, 13, 14, 15}, seeds)

	eps, err := b.Run(context.Background(), seeds)
	require.NoError(t, err)
	require.Len(t, eps, len(seeds))
	for i, ep := range eps {
		assert.Equal(t, seeds[i], ep.Seed)
		assert.Len(t, ep.History, 49)
	}

	// 与串行单独运行结果一致
	r, err := BuildRunner(cfg)
	require.NoError(t, err)
	solo, err := r.Play(context.Background(), seeds[4])
	require.NoError(t, err)
	assert.Equal(t, solo.Summary, eps[4].Summary)
}

func TestBatchStopsOnBuildError(t *testing.T) {
	boom := errors.New("boom")
	b := Batch{Build: func() (*Runner, error) { return nil, boom }}
	_, err := b.Run(context.Background(), Seeds(0, 3))
	assert.ErrorIs(t, err, boom)

	_, err = Batch{}.Run(context.Background(), Seeds(0, 1))
	assert.ErrorIs(t, err, ErrConfiguration)
}
