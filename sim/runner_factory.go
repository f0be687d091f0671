package sim

import (
	"fmt"

	"market-maker-sim/config"
	"market-maker-sim/infrastructure/logger"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
	"market-maker-sim/strategy/asmm"
)

// BuildRunner 基于配置组装价格源、环境与策略。
func BuildRunner(cfg config.SimConfig, opts ...Option) (*Runner, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	src, err := NewSource(cfg.Source, o.log)
	if err != nil {
		return nil, err
	}

	envOpts := []Option{WithLogger(o.log), WithRand(o.rng), WithRecorder(o.rec)}
	var env *Env
	switch cfg.Env {
	case config.EnvIntensity:
		env, err = NewIntensityEnv(src, cfg.Market, envOpts...)
	case config.EnvBar:
		env, err = NewBarEnv(src, cfg.Market, envOpts...)
	default:
		err = fmt.Errorf("%w: unknown env %q", ErrConfiguration, cfg.Env)
	}
	if err != nil {
		return nil, err
	}

	policy, err := NewPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	return &Runner{Env: env, Policy: policy}, nil
}

// NewSource 按类型构造价格源。
func NewSource(cfg config.SourceConfig, log *logger.Logger) (source.Source, error) {
	if log == nil {
		log = logger.Nop()
	}
	var (
		src source.Source
		err error
	)
	switch cfg.Type {
	case source.TypeBrownian:
		b := cfg.Brownian
		src, err = source.NewBrownian(b.InitValue, b.NSample, b.Sigma, b.TotalTime)
	case source.TypeHistorical:
		src, err = source.NewHistorical(cfg.Historical.Source(), log.Logger)
	case source.TypeReplay:
		r := cfg.Replay
		src, err = source.NewReplay(r.Path, r.Sigma, r.TotalTime)
	default:
		err = fmt.Errorf("%w: unknown source type %q", ErrConfiguration, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// NewPolicy 按类型构造报价策略。
func NewPolicy(cfg config.PolicyConfig) (strategy.Policy, error) {
	var (
		p   strategy.Policy
		err error
	)
	switch cfg.Type {
	case config.PolicyASMM:
		p, err = asmm.New(cfg.ASMM)
	case config.PolicySkew:
		p, err = strategy.NewInventorySkew(cfg.Skew)
	case config.PolicyFixed:
		p, err = strategy.NewFixedSpread(cfg.Fixed.HalfSpread, cfg.Fixed.Size)
	default:
		err = fmt.Errorf("%w: unknown policy type %q", ErrConfiguration, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
