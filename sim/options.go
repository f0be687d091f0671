package sim

import (
	"math/rand"
	"time"

	"market-maker-sim/infrastructure/logger"
)

// Recorder 接收环境与 runner 的运行指标，实现方需并发安全。
type Recorder interface {
	ObserveStep(nav float64, inventory int64)
	ObserveFill(side string, qty int64)
	ObserveEpisode(pnl float64)
	ObserveReservePrice(p float64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(float64, int64)  {}
func (nopRecorder) ObserveFill(string, int64)   {}
func (nopRecorder) ObserveEpisode(float64)      {}
func (nopRecorder) ObserveReservePrice(float64) {}

type options struct {
	log *logger.Logger
	rng *rand.Rand
	rec Recorder
}

// Option 配置 Env / BuildRunner。
type Option func(*options)

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRand 指定随机数源；不指定时按当前时间播种，Reset 传入 seed 可重新播种。
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

func WithRecorder(r Recorder) Option {
	return func(o *options) { o.rec = r }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.rec == nil {
		o.rec = nopRecorder{}
	}
	return o
}
