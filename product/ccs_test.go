package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

func newCCS() product.CrossCurrencySwap {
	domesticRate := 0.03
	foreignRate := 0.01
	return product.CrossCurrencySwap{
		DomesticNotional:  1e6,
		ForeignNotional:   1e6 / 1.10,
		MaturityYears:     3,
		DomesticFrequency: 2,
		ForeignFrequency:  2,
		DomesticFixedRate: &domesticRate,
		ForeignFixedRate:  &foreignRate,
		ExchangeNotionals: true,
	}
}

func TestCCSDirectionFlipIsExactNegation(t *testing.T) {
	t.Parallel()

	s := fxScenario(t, 0.03, 0.01, 1.10)
	sw := newCCS()
	flipped := sw
	flipped.PayDomesticReceiveForeign = true

	pv, err := sw.PresentValue(s)
	require.NoError(t, err)
	pvFlipped, err := flipped.PresentValue(s)
	require.NoError(t, err)
	assert.InDelta(t, -pv, pvFlipped, 1e-8)
}

func TestCCSNotionalExchangeToggle(t *testing.T) {
	t.Parallel()

	s := fxScenario(t, 0.03, 0.01, 1.10)
	sw := newCCS()

	legs, err := sw.LegCashflows(s)
	require.NoError(t, err)
	require.Len(t, legs.NotionalExchanges, 4)
	assert.Empty(t, legs.ResetExchanges)

	sw.ExchangeNotionals = false
	legs, err = sw.LegCashflows(s)
	require.NoError(t, err)
	assert.Empty(t, legs.NotionalExchanges)
}

func TestCCSFloatingLegsOffForwardCurves(t *testing.T) {
	t.Parallel()

	s := fxScenario(t, 0.03, 0.01, 1.10)
	sw := newCCS()
	sw.DomesticFixedRate = nil
	sw.ForeignFixedRate = nil
	sw.DomesticSpread = 0.0010

	legs, err := sw.LegCashflows(s)
	require.NoError(t, err)
	require.Len(t, legs.DomesticLeg, 6)
	require.Len(t, legs.ForeignLeg, 6)
	// Receive-domestic leg carries the projected forward plus spread.
	assert.Greater(t, legs.DomesticLeg[0].Amount, 0.0)
	assert.Less(t, legs.ForeignLeg[0].Amount, 0.0)
}

func TestCCSMarkToMarketResets(t *testing.T) {
	t.Parallel()

	// A sloped FX forward curve makes each reset nontrivial.
	domestic, err := market.NewZeroCurve([]float64{1, 10}, []float64{0.03, 0.03})
	require.NoError(t, err)
	foreign, err := market.NewZeroCurve([]float64{1, 10}, []float64{0.01, 0.01})
	require.NoError(t, err)
	fx, err := market.NewFXCurve([]float64{0.25, 3}, []float64{1.10, 1.20})
	require.NoError(t, err)
	s := &market.Scenario{Name: "base", Model: domestic, ForeignModel: foreign, FXCurve: fx}

	sw := newCCS()
	sw.MarkToMarket = true

	legs, err := sw.LegCashflows(s)
	require.NoError(t, err)
	// Semiannual over 3y gives 5 interim reset dates.
	require.Len(t, legs.ResetExchanges, 5)
	for _, cf := range legs.ResetExchanges {
		assert.NotZero(t, cf.Amount)
	}

	// Resets exist only when notionals are exchanged.
	sw.ExchangeNotionals = false
	legs, err = sw.LegCashflows(s)
	require.NoError(t, err)
	assert.Empty(t, legs.ResetExchanges)
}

func TestCCSMissingSlots(t *testing.T) {
	t.Parallel()

	s := fxScenario(t, 0.03, 0.01, 1.10)
	sw := newCCS()

	noForeign := *s
	noForeign.ForeignModel = nil
	_, err := sw.PresentValue(&noForeign)
	require.ErrorIs(t, err, product.ErrMissingForeignModel)

	noFX := *s
	noFX.FXCurve = nil
	_, err = sw.PresentValue(&noFX)
	require.ErrorIs(t, err, product.ErrMissingFXCurve)
}
