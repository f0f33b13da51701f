package market_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/market"
)

func TestNewZeroCurveValidation(t *testing.T) {
	t.Parallel()

	_, err := market.NewZeroCurve([]float64{1, 2}, []float64{0.02})
	require.Error(t, err)

	_, err = market.NewZeroCurve([]float64{1}, []float64{0.02})
	require.Error(t, err)

	_, err = market.NewZeroCurve([]float64{0, 1}, []float64{0.02, 0.02})
	require.Error(t, err)

	_, err = market.NewZeroCurve([]float64{2, 1}, []float64{0.02, 0.02})
	require.Error(t, err)

	_, err = market.NewZeroCurve([]float64{1, 5, 10}, []float64{0.02, 0.025, 0.03})
	require.NoError(t, err)
}

func TestZeroCurveDiscountFactor(t *testing.T) {
	t.Parallel()

	curve, err := market.NewZeroCurve([]float64{1, 5, 10}, []float64{0.02, 0.025, 0.03})
	require.NoError(t, err)

	df0, err := curve.DiscountFactor(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, df0)

	df5, err := curve.DiscountFactor(5)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.025*5), df5, 1e-15)

	// Constant extrapolation outside the grid.
	df20, err := curve.DiscountFactor(20)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.03*20), df20, 1e-15)

	_, err = curve.DiscountFactor(-0.5)
	require.Error(t, err)
}

func TestZeroCurveInterpolationIsLinear(t *testing.T) {
	t.Parallel()

	curve, err := market.NewZeroCurve([]float64{1, 3}, []float64{0.02, 0.04})
	require.NoError(t, err)

	r, err := curve.ShortRate(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, r, 1e-15)
}

func TestZeroCurveForwardRate(t *testing.T) {
	t.Parallel()

	curve, err := market.NewZeroCurve([]float64{1, 10}, []float64{0.03, 0.03})
	require.NoError(t, err)

	fwd, err := curve.ForwardRate(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.03)-1.0, fwd, 1e-12)

	_, err = curve.ForwardRate(2, 2)
	require.Error(t, err)
	_, err = curve.ForwardRate(-1, 2)
	require.Error(t, err)
}

func TestZeroCurveShiftedLeavesBaseUntouched(t *testing.T) {
	t.Parallel()

	curve, err := market.NewZeroCurve([]float64{1, 5}, []float64{0.02, 0.03})
	require.NoError(t, err)

	shifted := curve.Shifted(0.01)
	assert.Equal(t, []float64{0.02, 0.03}, curve.ZeroRates())
	assert.Equal(t, []float64{0.03, 0.04}, shifted.ZeroRates())
	assert.Equal(t, curve.Tenors(), shifted.Tenors())
}

func TestForwardCurve(t *testing.T) {
	t.Parallel()

	curve, err := market.NewForwardCurve([]float64{1, 2}, []float64{0.02, 0.04})
	require.NoError(t, err)

	// Quoted forwards interpolate at the period start.
	fwd, err := curve.ForwardRate(1.5, 1.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, fwd, 1e-15)

	_, err = curve.ForwardRate(2, 1)
	require.Error(t, err)

	shifted := curve.Shifted(0.001)
	assert.Equal(t, []float64{0.021, 0.041}, shifted.ForwardRates())
}

func TestFXCurve(t *testing.T) {
	t.Parallel()

	curve, err := market.NewFXCurve([]float64{1, 2}, []float64{1.10, 1.20})
	require.NoError(t, err)

	assert.InDelta(t, 1.15, curve.Forward(1.5), 1e-15)
	assert.InDelta(t, 1.10, curve.Forward(0), 1e-15)

	scaled := curve.Scaled(0.01)
	assert.InDelta(t, 1.10*1.01, scaled.Forward(1), 1e-15)
	assert.InDelta(t, 1.10, curve.Forward(1), 1e-15)
}

func TestHazardCurveSurvival(t *testing.T) {
	t.Parallel()

	curve, err := market.NewHazardCurve([]float64{1, 5}, []float64{0.02, 0.02})
	require.NoError(t, err)

	s0, err := curve.SurvivalProbability(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s0)

	s3, err := curve.SurvivalProbability(3)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.02*3), s3, 1e-15)

	_, err = curve.SurvivalProbability(-1)
	require.Error(t, err)

	shifted := curve.Shifted(0.01)
	assert.InDelta(t, 0.03, shifted.HazardRate(2), 1e-15)
}
