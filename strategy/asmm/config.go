package asmm

import (
	"fmt"
	"math"

	"market-maker-sim/simerr"
)

// Config holds config for the Avellaneda–Stoikov policy.
type Config struct {
	// OrderQuantity is quoted on both sides every step.
	OrderQuantity float64 `yaml:"order_quantity" json:"order_quantity"`
}

// DefaultConfig returns a default config.
func DefaultConfig() Config {
	return Config{OrderQuantity: 1}
}

// Validate checks if the Config is valid.
func (c Config) Validate() error {
	if math.IsNaN(c.OrderQuantity) || math.IsInf(c.OrderQuantity, 0) || c.OrderQuantity < 0 {
		return fmt.Errorf("%w: order quantity must be finite and >= 0, got %v", simerr.ErrConfiguration, c.OrderQuantity)
	}
	return nil
}
