// Package sim 实现做市仿真核心：reset/step 状态机、库存与净值记账、撮合调度。
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"market-maker-sim/config"
	"market-maker-sim/infrastructure/logger"
	"market-maker-sim/inventory"
	"market-maker-sim/market"
	"market-maker-sim/matching"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
)

// MarketConfig 市场常量：初始资金、风险厌恶系数、强度参数 k、双边费率。
type MarketConfig = config.MarketConfig

// DefaultMarketConfig 返回 {0, 0.1, 1.5, 0.0003, 0.0013}。
func DefaultMarketConfig() MarketConfig { return config.DefaultMarket() }

// 单边报价数量上限，超出无法精确转为整数。
const maxQuantity = 1 << 53

// variant 区分两种环境：撮合模型、观测价格、是否需要 OHLC。
type variant struct {
	name        string
	newMatcher  func(cfg MarketConfig, meta source.AssetMetadata) (matching.Matcher, error)
	price       func(b market.Bar) float64
	requireOHLC bool
}

var intensityVariant = variant{
	name: config.EnvIntensity,
	newMatcher: func(cfg MarketConfig, meta source.AssetMetadata) (matching.Matcher, error) {
		return matching.NewIntensity(cfg.K, meta.Dt)
	},
	price: func(b market.Bar) float64 { return b.Close },
}

var barVariant = variant{
	name: config.EnvBar,
	newMatcher: func(MarketConfig, source.AssetMetadata) (matching.Matcher, error) {
		return matching.HighLow{}, nil
	},
	price:       market.Bar.TypicalPrice,
	requireOHLC: true,
}

// Env 单个 episode 的仿真实例。不可并发使用；批量运行时每个 episode 一个实例。
type Env struct {
	src     source.Source
	cfg     MarketConfig
	variant variant
	log     *logger.Logger
	rng     *rand.Rand
	rec     Recorder

	series  market.Series
	meta    source.AssetMetadata
	matcher matching.Matcher
	ledger  inventory.Ledger
	tick    int
	last    int
	started bool
	history History
}

// StepResult 一步的返回。Truncated 恒为 false：episode 只会在最后一个 tick 自然结束。
type StepResult struct {
	Observation strategy.Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Record
}

// NewIntensityEnv 强度撮合环境，观测收盘价，适合合成路径。
func NewIntensityEnv(src source.Source, cfg MarketConfig, opts ...Option) (*Env, error) {
	return newEnv(src, cfg, intensityVariant, opts)
}

// NewBarEnv 高低价撮合环境，观测典型价 (close+high+low)/3，需要 OHLC 数据。
func NewBarEnv(src source.Source, cfg MarketConfig, opts ...Option) (*Env, error) {
	return newEnv(src, cfg, barVariant, opts)
}

func newEnv(src source.Source, cfg MarketConfig, v variant, opts []Option) (*Env, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: price source is required", ErrConfiguration)
	}
	if err := config.ValidateMarket(cfg); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Env{
		src:     src,
		cfg:     cfg,
		variant: v,
		log:     o.log.WithFields(map[string]interface{}{"env": v.name}),
		rng:     o.rng,
		rec:     o.rec,
	}, nil
}

// Reset 开始新 episode。seed 非空时先重新播种，之后撮合、路径生成、样本抽取都可复现。
// 出错时实例保持原状态。
func (e *Env) Reset(seed *int64) (strategy.Observation, source.AssetMetadata, error) {
	if seed != nil {
		e.rng.Seed(*seed)
	}
	series, err := e.src.Reset(e.rng)
	if err != nil {
		return strategy.Observation{}, source.AssetMetadata{}, fmt.Errorf("reset price source: %w", err)
	}
	if err := series.Validate(); err != nil {
		return strategy.Observation{}, source.AssetMetadata{}, err
	}
	if e.variant.requireOHLC && !series.HasOHLC() {
		return strategy.Observation{}, source.AssetMetadata{}, fmt.Errorf("%w: %s env needs finite open/high/low", ErrData, e.variant.name)
	}
	meta := e.src.Metadata()
	if err := meta.Validate(); err != nil {
		return strategy.Observation{}, source.AssetMetadata{}, err
	}
	m, err := e.variant.newMatcher(e.cfg, meta)
	if err != nil {
		return strategy.Observation{}, source.AssetMetadata{}, err
	}
	ledger, err := inventory.NewLedger(e.cfg.InitCash, e.cfg.BidFee, e.cfg.AskFee)
	if err != nil {
		return strategy.Observation{}, source.AssetMetadata{}, err
	}

	e.series = series
	e.meta = meta
	e.matcher = m
	e.ledger = ledger
	e.tick = 0
	e.last = len(series) - 1
	e.started = true
	e.history = nil

	e.log.LogEpisode("reset", map[string]interface{}{
		"source":     meta.Type,
		"rows":       len(series),
		"dt":         meta.Dt,
		"sigma":      meta.Sigma,
		"total_time": meta.TotalTime,
	})
	return e.observation(), meta, nil
}

// Step 提交一组报价并推进一个 tick。返回错误时状态不变。
func (e *Env) Step(a strategy.Action) (StepResult, error) {
	if !e.started {
		return StepResult{}, ErrNotStarted
	}
	if e.tick >= e.last {
		return StepResult{}, fmt.Errorf("%w: episode ended at tick %d", ErrOutOfBounds, e.tick)
	}
	q, err := quoteFromAction(a)
	if err != nil {
		return StepResult{}, err
	}

	prevNAV := e.cfg.InitCash
	if n := len(e.history); n > 0 {
		prevNAV = e.history[n-1].NAV
	}
	tick := e.tick + 1
	bar := e.series[tick]
	fill := e.matcher.Match(q, bar, e.rng)
	ledger := e.ledger.Apply(fill.Bid, q.BidPrice, fill.Ask, q.AskPrice)
	nav := ledger.NAV(bar.Close)
	if math.IsNaN(nav) || math.IsInf(nav, 0) {
		return StepResult{}, fmt.Errorf("%w: non-finite nav at tick %d", ErrData, tick)
	}

	e.tick = tick
	e.ledger = ledger
	reward := nav - prevNAV
	rec := Record{
		Tick:               tick,
		Datetime:           bar.Time,
		Quantity:           ledger.Quantity,
		Cash:               ledger.Cash,
		BidQuantity:        q.BidQty,
		BidPrice:           q.BidPrice,
		AskQuantity:        q.AskQty,
		AskPrice:           q.AskPrice,
		MatchedBidQuantity: fill.Bid,
		MatchedAskQuantity: fill.Ask,
		Close:              bar.Close,
		StepReward:         reward,
		NAV:                nav,
	}
	if e.variant.requireOHLC {
		rec.Bar = &BarInfo{Open: bar.Open, High: bar.High, Low: bar.Low}
	}
	e.history = append(e.history, rec)

	e.rec.ObserveStep(nav, ledger.Quantity)
	if fill.Bid > 0 {
		e.rec.ObserveFill("bid", fill.Bid)
		e.log.LogFill("bid", tick, fill.Bid, q.BidPrice)
	}
	if fill.Ask > 0 {
		e.rec.ObserveFill("ask", fill.Ask)
		e.log.LogFill("ask", tick, fill.Ask, q.AskPrice)
	}

	terminated := e.tick == e.last
	if terminated {
		pnl := nav - e.cfg.InitCash
		e.rec.ObserveEpisode(pnl)
		e.log.LogEpisode("terminated", map[string]interface{}{
			"tick":      e.tick,
			"nav":       nav,
			"pnl":       pnl,
			"inventory": ledger.Quantity,
		})
	}
	return StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminated:  terminated,
		Info:        rec,
	}, nil
}

// quoteFromAction 校验动作并把数量截断为整数。
func quoteFromAction(a strategy.Action) (matching.Quote, error) {
	if err := a.Validate(); err != nil {
		return matching.Quote{}, err
	}
	if a.BidQty > maxQuantity || a.AskQty > maxQuantity {
		return matching.Quote{}, fmt.Errorf("%w: quantity exceeds %d", ErrInvalidAction, int64(maxQuantity))
	}
	return matching.Quote{
		BidQty:   int64(a.BidQty),
		BidPrice: a.BidPrice,
		AskQty:   int64(a.AskQty),
		AskPrice: a.AskPrice,
	}, nil
}

func (e *Env) observation() strategy.Observation {
	return strategy.Observation{
		Price:      e.variant.price(e.series[e.tick]),
		Inventory:  float64(e.ledger.Quantity),
		Tick:       float64(e.tick),
		RiskFactor: e.cfg.RiskFactor,
		K:          e.cfg.K,
		Sigma:      e.meta.Sigma,
		TotalTime:  e.meta.TotalTime,
		Dt:         e.meta.Dt,
	}
}

// MarkPrice 当前 tick 的收盘价；未 reset 时为 NaN。
func (e *Env) MarkPrice() float64 {
	if !e.started {
		return math.NaN()
	}
	return e.series[e.tick].Close
}

// NAV = cash + inventory * mark。
func (e *Env) NAV() float64 {
	if !e.started {
		return e.cfg.InitCash
	}
	return e.ledger.NAV(e.MarkPrice())
}

func (e *Env) Tick() int { return e.tick }
func (e *Env) LastTick() int { return e.last }
func (e *Env) Inventory() int64 { return e.ledger.Quantity }
func (e *Env) Cash() float64 { return e.ledger.Cash }
func (e *Env) Metadata() source.AssetMetadata { return e.meta }
func (e *Env) Market() MarketConfig { return e.cfg }
func (e *Env) Series() market.Series { return append(market.Series(nil), e.series...) }

// Done episode 已结束（或尚未开始）。
func (e *Env) Done() bool { return !e.started || e.tick >= e.last }

// History 返回逐步记录的副本。
func (e *Env) History() History {
	out := make(History, len(e.history))
	copy(out, e.history)
	return out
}
