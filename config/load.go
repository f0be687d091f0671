package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"market-maker-sim/infrastructure/logger"
	"market-maker-sim/simerr"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
	"market-maker-sim/strategy/asmm"
)

// 环境类型
const (
	EnvIntensity = "intensity"
	EnvBar       = "bar"
)

// 策略类型
const (
	PolicyASMM  = "asmm"
	PolicySkew  = "skew"
	PolicyFixed = "fixed"
)

// SimConfig holds the simulator runtime configuration.
type SimConfig struct {
	Env      string        `yaml:"env" validate:"oneof=intensity bar"`
	Episodes int           `yaml:"episodes" validate:"gte=1"`
	Seed     int64         `yaml:"seed"`
	Workers  int           `yaml:"workers" validate:"gte=0"` // 0 表示不限制并发
	Source   SourceConfig  `yaml:"source"`
	Market   MarketConfig  `yaml:"market"`
	Policy   PolicyConfig  `yaml:"policy"`
	Log      logger.Config `yaml:"log" validate:"-"`
	Output   OutputConfig  `yaml:"output"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// SourceConfig 价格源配置，只校验 Type 对应的子配置。
type SourceConfig struct {
	Type       string           `yaml:"type" validate:"oneof=brownian historical replay"`
	Brownian   BrownianConfig   `yaml:"brownian" validate:"-"`
	Historical HistoricalConfig `yaml:"historical" validate:"-"`
	Replay     ReplayConfig     `yaml:"replay" validate:"-"`
}

type BrownianConfig struct {
	InitValue float64 `yaml:"init_value"`
	NSample   int     `yaml:"n_sample" validate:"gte=2"`
	Sigma     float64 `yaml:"sigma" validate:"gte=0"`
	TotalTime float64 `yaml:"total_time" validate:"gt=0"`
}

type HistoricalConfig struct {
	Path              string        `yaml:"path" validate:"required"`
	Interval          time.Duration `yaml:"interval" validate:"omitempty,gte=1s"`
	PriceScale        float64       `yaml:"price_scale" validate:"gte=0"`
	Sigma             *float64      `yaml:"sigma" validate:"omitempty,gte=0"` // 不填时取价格源默认值
	UseEstimatedSigma bool          `yaml:"use_estimated_sigma"`
	VolPeriods        int           `yaml:"vol_periods" validate:"gte=0"`
}

// Source 转换为价格源配置，零值字段由价格源填默认值。
func (h HistoricalConfig) Source() source.HistoricalConfig {
	return source.HistoricalConfig{
		Path:              h.Path,
		Interval:          h.Interval,
		PriceScale:        h.PriceScale,
		Sigma:             h.Sigma,
		UseEstimatedSigma: h.UseEstimatedSigma,
		VolPeriods:        h.VolPeriods,
	}
}

type ReplayConfig struct {
	Path      string  `yaml:"path" validate:"required"`
	Sigma     float64 `yaml:"sigma" validate:"gte=0"`
	TotalTime float64 `yaml:"total_time" validate:"gt=0"`
}

// MarketConfig 报价/撮合相关的市场常量，环境生命周期内不变。
type MarketConfig struct {
	InitCash   float64 `yaml:"init_cash" validate:"gte=-1e300,lte=1e300"`
	RiskFactor float64 `yaml:"risk_factor" validate:"gte=1e-12,lte=1e300"` // 下限同 asmm.MinRiskFactor
	K          float64 `yaml:"k" validate:"gt=0,lte=1e300"`
	BidFee     float64 `yaml:"bid_fee" validate:"gte=0,lt=1"`
	AskFee     float64 `yaml:"ask_fee" validate:"gte=0,lt=1"`
}

// DefaultMarket 返回默认市场常量。
func DefaultMarket() MarketConfig {
	return MarketConfig{
		InitCash:   0,
		RiskFactor: 0.1,
		K:          1.5,
		BidFee:     0.0003,
		AskFee:     0.0013,
	}
}

// PolicyConfig 报价策略配置，只校验 Type 对应的子配置。
type PolicyConfig struct {
	Type  string               `yaml:"type" validate:"oneof=asmm skew fixed"`
	ASMM  asmm.Config          `yaml:"asmm" validate:"-"`
	Skew  strategy.SkewConfig  `yaml:"skew" validate:"-"`
	Fixed strategy.FixedSpread `yaml:"fixed" validate:"-"`
}

type OutputConfig struct {
	HistoryDir  string `yaml:"history_dir"`  // 每个 episode 的 history CSV 目录
	SummaryPath string `yaml:"summary_path"` // 汇总 CSV
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true"`
}

// Default 返回默认配置：布朗运动 + 强度撮合 + A-S 策略。
func Default() SimConfig {
	return SimConfig{
		Env:      EnvIntensity,
		Episodes: 1,
		Workers:  1,
		Source: SourceConfig{
			Type: source.TypeBrownian,
			Brownian: BrownianConfig{
				InitValue: 100,
				NSample:   200,
				Sigma:     2,
				TotalTime: 1,
			},
		},
		Market: DefaultMarket(),
		Policy: PolicyConfig{
			Type: PolicyASMM,
			ASMM: asmm.DefaultConfig(),
		},
		Log:     logger.DefaultConfig(),
		Metrics: MetricsConfig{Addr: ":9100"},
	}
}

// Load reads YAML config from path over the defaults and validates it.
func Load(path string) (SimConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: read config: %v", simerr.ErrConfiguration, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse yaml: %v", simerr.ErrConfiguration, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides run fields from env vars if present.
func LoadWithEnvOverrides(path string) (SimConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("MMSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: MMSIM_SEED: %v", simerr.ErrConfiguration, err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("MMSIM_EPISODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: MMSIM_EPISODES: %v", simerr.ErrConfiguration, err)
		}
		cfg.Episodes = n
	}
	return cfg, Validate(cfg)
}
