package sim

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-sim/source"
	"market-maker-sim/strategy"
	"market-maker-sim/strategy/asmm"
)

type countingRecorder struct {
	steps, fills, episodes, reserves int
}

func (c *countingRecorder) ObserveStep(float64, int64)  { c.steps++ }
func (c *countingRecorder) ObserveFill(string, int64)   { c.fills++ }
func (c *countingRecorder) ObserveEpisode(float64)      { c.episodes++ }
func (c *countingRecorder) ObserveReservePrice(float64) { c.reserves++ }

func newASRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	src, err := source.NewBrownian(100, 200, 2, 1)
	require.NoError(t, err)
	env, err := NewIntensityEnv(src, DefaultMarketConfig(), opts...)
	require.NoError(t, err)
	policy, err := asmm.New(asmm.Config{OrderQuantity: 1})
	require.NoError(t, err)
	return &Runner{Env: env, Policy: policy}
}

func TestRunnerPlaysFullEpisode(t *testing.T) {
	rec := &countingRecorder{}
	r := newASRunner(t, WithRecorder(rec))

	ep, err := r.Play(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ep.Seed)
	assert.NotEqual(t, uuid.Nil, ep.ID)
	require.Len(t, ep.History, 199)
	for i, rec := range ep.History {
		require.NotNil(t, rec.ReservePrice, "record %d", i)
	}
	assert.Equal(t, 199, ep.Summary.Steps)
	assert.Equal(t, ep.Summary.FinalNAV, ep.History[198].NAV)
	assert.InDelta(t, ep.Summary.TotalPnL, ep.Summary.RewardSum, 1e-6)
	assert.Equal(t, source.TypeBrownian, ep.Metadata.Type)

	assert.Equal(t, 199, rec.steps)
	assert.Equal(t, 199, rec.reserves)
	assert.Equal(t, 1, rec.episodes)
	assert.Equal(t, ep.Summary.BidFills+ep.Summary.AskFills, rec.fills)
}

func TestRunnerReproducible(t *testing.T) {
	ep1, err := newASRunner(t).Play(context.Background(), 7)
	require.NoError(t, err)
	ep2, err := newASRunner(t).Play(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, len(ep1.History), len(ep2.History))
	for i := range ep1.History {
		a, b := ep1.History[i], ep2.History[i]
		assert.Equal(t, *a.ReservePrice, *b.ReservePrice)
		a.ReservePrice, b.ReservePrice = nil, nil
		assert.Equal(t, a, b)
	}
	assert.NotEqual(t, ep1.ID, ep2.ID)
}

func TestRunnerReservePriceMatchesPolicy(t *testing.T) {
	r := newASRunner(t)
	ep, err := r.Play(context.Background(), 3)
	require.NoError(t, err)

	// 第 i 条记录的保留价来自 tick i 的观测
	meta := ep.Metadata
	prevQty := int64(0)
	series := r.Env.Series()
	for i, rec := range ep.History {
		obs := strategy.Observation{
			Price: series[i].Close, Inventory: float64(prevQty), Tick: float64(i),
			RiskFactor: 0.1, K: 1.5, Sigma: meta.Sigma, TotalTime: meta.TotalTime, Dt: meta.Dt,
		}
		assert.InDelta(t, asmm.ReservePrice(obs), *rec.ReservePrice, 1e-9, "record %d", i)
		prevQty = rec.Quantity
	}
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newASRunner(t).Play(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerPropagatesPolicyError(t *testing.T) {
	src, err := source.NewBrownian(100, 10, 2, 1)
	require.NoError(t, err)
	cfg := DefaultMarketConfig()
	env, err := NewIntensityEnv(src, cfg, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	// 负价差使 ask 为负价，环境拒绝
	fixed := &strategy.FixedSpread{HalfSpread: -1000, Size: 1}
	_, err = (&Runner{Env: env, Policy: fixed}).Play(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = (&Runner{}).Play(context.Background(), 1)
	assert.ErrorIs(t, err, ErrConfiguration)
}
