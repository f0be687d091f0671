package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-sim/simerr"
	"market-maker-sim/strategy/asmm"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeTempConfig(t, `
episodes: 4
seed: 7
source:
  type: brownian
  brownian:
    n_sample: 50
    sigma: 1
    total_time: 1
    init_value: 10
policy:
  type: asmm
  asmm:
    order_quantity: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EnvIntensity, cfg.Env)
	assert.Equal(t, 4, cfg.Episodes)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 50, cfg.Source.Brownian.NSample)
	assert.Equal(t, 2.0, cfg.Policy.ASMM.OrderQuantity)
	// 未出现的字段保持默认
	assert.Equal(t, 1.5, cfg.Market.K)
	assert.Equal(t, 0.0013, cfg.Market.AskFee)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadHistoricalBar(t *testing.T) {
	path := writeTempConfig(t, `
env: bar
source:
  type: historical
  historical:
    path: data/cw.csv
    interval: 5m
    use_estimated_sigma: true
policy:
  type: skew
  skew:
    min_spread: 0.002
    max_drift: 5
    base_size: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EnvBar, cfg.Env)
	assert.Equal(t, 5*time.Minute, cfg.Source.Historical.Interval)
	assert.True(t, cfg.Source.Historical.Source().UseEstimatedSigma)
	assert.Equal(t, 10.0, cfg.Policy.Skew.BaseSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown env", "env: lob\n"},
		{"zero episodes", "episodes: 0\n"},
		{"bad k", "market:\n  k: 0\n"},
		{"fee too large", "market:\n  bid_fee: 1.5\n"},
		{"negative fee", "market:\n  ask_fee: -0.1\n"},
		{"unknown source", "source:\n  type: lob\n"},
		{"brownian one sample", "source:\n  type: brownian\n  brownian:\n    n_sample: 1\n    sigma: 1\n    total_time: 1\n"},
		{"historical without path", "source:\n  type: historical\n"},
		{"historical interval too small", "env: bar\nsource:\n  type: historical\n  historical:\n    path: data/cw.csv\n    interval: 1ns\n"},
		{"historical negative sigma", "env: bar\nsource:\n  type: historical\n  historical:\n    path: data/cw.csv\n    sigma: -0.1\n"},
		{"vanishing risk factor", "market:\n  risk_factor: 1e-17\n"},
		{"bar needs ohlc", "env: bar\n"},
		{"negative order size", "policy:\n  asmm:\n    order_quantity: -1\n"},
		{"skew without spread", "policy:\n  type: skew\n"},
		{"metrics without addr", "metrics:\n  enabled: true\n  addr: \"\"\n"},
		{"not yaml", "episodes: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, simerr.ErrConfiguration)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, simerr.ErrConfiguration)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "seed: 1\nepisodes: 2\n")
	t.Setenv("MMSIM_SEED", "99")
	t.Setenv("MMSIM_EPISODES", "5")
	cfg, err := LoadWithEnvOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 5, cfg.Episodes)

	t.Setenv("MMSIM_EPISODES", "many")
	_, err = LoadWithEnvOverrides(path)
	assert.ErrorIs(t, err, simerr.ErrConfiguration)
}

func TestValidateMarket(t *testing.T) {
	assert.NoError(t, ValidateMarket(DefaultMarket()))
	m := DefaultMarket()
	m.RiskFactor = -1
	assert.ErrorIs(t, ValidateMarket(m), simerr.ErrConfiguration)
	for _, gamma := range []float64{1e-17, 5e-324} {
		m.RiskFactor = gamma
		assert.ErrorIs(t, ValidateMarket(m), simerr.ErrConfiguration, "gamma %g", gamma)
	}
	m.RiskFactor = asmm.MinRiskFactor
	assert.NoError(t, ValidateMarket(m))
}

func TestLoadHistoricalExplicitZeroSigma(t *testing.T) {
	path := writeTempConfig(t, `
env: bar
source:
  type: historical
  historical:
    path: data/cw.csv
    sigma: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	src := cfg.Source.Historical.Source()
	require.NotNil(t, src.Sigma)
	assert.Equal(t, 0.0, *src.Sigma)
}

func TestShippedConfigsLoad(t *testing.T) {
	for _, name := range []string{"sim.yaml", "bar.yaml"} {
		cfg, err := Load(filepath.Join("..", "configs", name))
		require.NoError(t, err, name)
		assert.GreaterOrEqual(t, cfg.Episodes, 1)
	}
}
