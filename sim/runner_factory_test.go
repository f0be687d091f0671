package sim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-sim/config"
	"market-maker-sim/market"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
	"market-maker-sim/strategy/asmm"
)

func TestBuildRunnerDefault(t *testing.T) {
	r, err := BuildRunner(config.Default())
	require.NoError(t, err)
	assert.IsType(t, &asmm.Strategy{}, r.Policy)
	assert.Equal(t, config.EnvIntensity, r.Env.variant.name)
}

func TestBuildRunnerPolicies(t *testing.T) {
	cfg := config.Default()
	cfg.Policy = config.PolicyConfig{Type: config.PolicySkew, Skew: strategy.SkewConfig{MinSpread: 0.001, MaxDrift: 2, BaseSize: 1}}
	r, err := BuildRunner(cfg)
	require.NoError(t, err)
	assert.IsType(t, &strategy.InventorySkew{}, r.Policy)

	cfg.Policy = config.PolicyConfig{Type: config.PolicyFixed, Fixed: strategy.FixedSpread{HalfSpread: 0.5, Size: 1}}
	r, err = BuildRunner(cfg)
	require.NoError(t, err)
	assert.IsType(t, &strategy.FixedSpread{}, r.Policy)
}

func TestBuildRunnerBarReplay(t *testing.T) {
	bars := ohlcSeries(
		[4]float64{10, 10.5, 9.5, 10},
		[4]float64{10, 10.6, 9.8, 10.2},
		[4]float64{10.2, 10.4, 9.9, 10.1},
	)
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, source.SaveCSV(path, bars))

	cfg := config.Default()
	cfg.Env = config.EnvBar
	cfg.Source = config.SourceConfig{Type: source.TypeReplay, Replay: config.ReplayConfig{Path: path, Sigma: 0.1, TotalTime: 1}}
	cfg.Policy = config.PolicyConfig{Type: config.PolicyFixed, Fixed: strategy.FixedSpread{HalfSpread: 0.3, Size: 2}}
	r, err := BuildRunner(cfg)
	require.NoError(t, err)

	ep, err := r.Play(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ep.History, 2)
	for _, rec := range ep.History {
		require.NotNil(t, rec.Bar)
	}
	assert.Contains(t, ep.History.Columns(), "open")
	assert.Equal(t, market.Series(bars).Closes()[1:], []float64{ep.History[0].Close, ep.History[1].Close})
}

func TestBuildRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Market.K = -1
	_, err := BuildRunner(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}
