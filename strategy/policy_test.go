package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-sim/simerr"
)

func TestObservationVectorOrder(t *testing.T) {
	obs := Observation{Price: 1, Inventory: 2, Tick: 3, RiskFactor: 4, K: 5, Sigma: 6, TotalTime: 7, Dt: 8}
	v := obs.Vector()
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, v)

	back, err := ObservationFromVector(v)
	require.NoError(t, err)
	assert.Equal(t, obs, back)

	_, err = ObservationFromVector(v[:7])
	assert.ErrorIs(t, err, simerr.ErrData)
}

func TestActionFromVector(t *testing.T) {
	a, err := ActionFromVector([]float64{1, 99, 2, 101})
	require.NoError(t, err)
	assert.Equal(t, Action{BidQty: 1, BidPrice: 99, AskQty: 2, AskPrice: 101}, a)

	_, err = ActionFromVector([]float64{1, 2, 3})
	assert.ErrorIs(t, err, simerr.ErrInvalidAction)
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, Action{}.Validate())
	assert.NoError(t, Action{BidQty: 1, BidPrice: 1, AskQty: 1, AskPrice: 1}.Validate())
	for _, bad := range []Action{
		{BidQty: -1},
		{BidPrice: math.NaN()},
		{AskQty: math.Inf(1)},
		{AskPrice: -0.01},
	} {
		assert.ErrorIs(t, bad.Validate(), simerr.ErrInvalidAction, "%+v", bad)
	}
}
