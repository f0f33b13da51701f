package market_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/market"
)

func newHWModel(t *testing.T) *market.HullWhiteModel {
	t.Helper()
	curve, err := market.NewZeroCurve([]float64{0.25, 1, 5, 10, 30}, []float64{0.02, 0.022, 0.025, 0.028, 0.03})
	require.NoError(t, err)
	model, err := market.NewHullWhiteModel(0.03, 0.01, curve)
	require.NoError(t, err)
	return model
}

func TestNewHullWhiteModelValidation(t *testing.T) {
	t.Parallel()

	curve, err := market.NewZeroCurve([]float64{1, 10}, []float64{0.02, 0.03})
	require.NoError(t, err)

	_, err = market.NewHullWhiteModel(0, 0.01, curve)
	require.Error(t, err)
	_, err = market.NewHullWhiteModel(0.03, -0.01, curve)
	require.Error(t, err)
	_, err = market.NewHullWhiteModel(0.03, 0.01, nil)
	require.Error(t, err)
}

func TestZCBPriceAtSameTimeIsOne(t *testing.T) {
	t.Parallel()

	model := newHWModel(t)
	for _, tt := range []float64{0, 0.5, 2, 7} {
		p, err := model.ZCBPrice(tt, tt)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p)
	}
}

func TestZCBPriceFromZeroMatchesCurve(t *testing.T) {
	t.Parallel()

	model := newHWModel(t)
	r0, err := model.ShortRate(0)
	require.NoError(t, err)

	p, err := model.ZCBPriceWithRate(0, 5, r0)
	require.NoError(t, err)
	df, err := model.DiscountFactor(5)
	require.NoError(t, err)
	// At t=0 the closed form reduces to the anchor discount factor up to
	// the finite-difference forward approximation.
	assert.InDelta(t, df, p, 1e-3)

	_, err = model.ZCBPrice(3, 2)
	require.Error(t, err)
}

func TestSimulatePathsSeedDeterminism(t *testing.T) {
	t.Parallel()

	model := newHWModel(t)
	a, err := model.SimulatePaths(1.0, 12, 20, 42)
	require.NoError(t, err)
	b, err := model.SimulatePaths(1.0, 12, 20, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := model.SimulatePaths(1.0, 12, 20, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSimulatePathsShape(t *testing.T) {
	t.Parallel()

	model := newHWModel(t)
	paths, err := model.SimulatePaths(2.0, 24, 5, 1)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	r0, err := model.ShortRate(0)
	require.NoError(t, err)
	for _, path := range paths {
		require.Len(t, path, 25)
		assert.Equal(t, r0, path[0])
	}

	_, err = model.SimulatePaths(0, 12, 5, 1)
	require.Error(t, err)
	_, err = model.SimulatePaths(1, 0, 5, 1)
	require.Error(t, err)
	_, err = model.SimulatePaths(1, 12, 0, 1)
	require.Error(t, err)
}
