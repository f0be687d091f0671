// Package asmm implements the Avellaneda–Stoikov optimal quoting policy.
package asmm

import (
	"fmt"
	"math"

	"market-maker-sim/simerr"
	"market-maker-sim/strategy"
)

// Strategy quotes a fixed size around the inventory-adjusted reservation price.
// It holds no state besides its config, so GetAction is a pure function of the observation.
type Strategy struct {
	cfg Config
}

var _ strategy.Policy = (*Strategy)(nil)

// MinRiskFactor is the smallest risk aversion γ accepted; below it the
// (2/γ)·ln(1+γ/k) term loses precision and overflows near denormals.
const MinRiskFactor = 1e-12

// New creates a new Strategy.
func New(cfg Config) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Strategy{cfg: cfg}, nil
}

// Config returns the strategy config.
func (s *Strategy) Config() Config { return s.cfg }

// remaining is the time left to the horizon, T - dt·t.
func remaining(obs strategy.Observation) float64 {
	return obs.TotalTime - obs.Dt*obs.Tick
}

// ReservePrice is p - q·γ·σ²·(T - dt·t).
func ReservePrice(obs strategy.Observation) float64 {
	return obs.Price - obs.Inventory*obs.RiskFactor*obs.Sigma*obs.Sigma*remaining(obs)
}

// ReserveSpread is γ·σ²·(T - dt·t) + (2/γ)·ln(1 + γ/k).
func ReserveSpread(obs strategy.Observation) float64 {
	g := obs.RiskFactor
	return g*obs.Sigma*obs.Sigma*remaining(obs) + 2/g*math.Log1p(g/obs.K)
}

// GetAction returns bid/ask at reserve ∓ spread/2.
func (s *Strategy) GetAction(obs strategy.Observation) (strategy.Action, strategy.Diagnostics, error) {
	if !positive(obs.RiskFactor) || obs.RiskFactor < MinRiskFactor {
		return strategy.Action{}, strategy.Diagnostics{}, fmt.Errorf("%w: risk factor must be >= %g, got %v", simerr.ErrConfiguration, MinRiskFactor, obs.RiskFactor)
	}
	if !positive(obs.K) {
		return strategy.Action{}, strategy.Diagnostics{}, fmt.Errorf("%w: k must be > 0, got %v", simerr.ErrConfiguration, obs.K)
	}
	reserve := ReservePrice(obs)
	spread := ReserveSpread(obs)
	if !finite(reserve) || !finite(spread) {
		return strategy.Action{}, strategy.Diagnostics{}, fmt.Errorf("%w: non-finite quote (reserve %v, spread %v) for risk factor %v, k %v",
			simerr.ErrConfiguration, reserve, spread, obs.RiskFactor, obs.K)
	}
	action := strategy.Action{
		BidQty:   s.cfg.OrderQuantity,
		BidPrice: reserve - spread/2,
		AskQty:   s.cfg.OrderQuantity,
		AskPrice: reserve + spread/2,
	}
	return action, strategy.Diagnostics{ReservePrice: reserve, ReserveSpread: spread}, nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
