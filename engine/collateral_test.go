package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/engine"
	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

func TestCSADiscountModelSubstitution(t *testing.T) {
	t.Parallel()

	scenarioCurve := baseCurve(t)
	oisCurve, err := market.NewZeroCurve([]float64{0.25, 30}, []float64{0.015, 0.018})
	require.NoError(t, err)

	products := []product.Product{
		product.FixedRateBond{Notional: 100, CouponRate: 0.03, MaturityYears: 5, CouponFrequency: 1},
		product.FixedRateBond{Notional: 100, CouponRate: 0.03, MaturityYears: 5, CouponFrequency: 1},
	}
	e := engine.NewCSAEngine(products)

	scenarios := []market.Scenario{{Name: "base", Model: scenarioCurve}}
	mapping := map[int]string{0: "NS1"}
	configs := map[string]engine.CSAConfig{
		"NS1": {NettingSetID: "NS1", DiscountModel: oisCurve, CollateralRate: 0.015},
	}

	results, err := e.Value(scenarios, mapping, configs)
	require.NoError(t, err)
	r, ok := results["base"]
	require.True(t, ok)

	unsecuredEach := r.UnsecuredPV / 2
	// The mapped bond discounts on the lower OIS curve, raising its PV; the
	// unmapped bond is unchanged.
	securedMapped := r.NettingSetSecuredPV["NS1"]
	assert.Greater(t, securedMapped, unsecuredEach)
	assert.InDelta(t, securedMapped+unsecuredEach, r.SecuredPV, 1e-10)
	assert.NotEqual(t, r.UnsecuredPV, r.SecuredPV)
}

func TestCSAUnmappedPortfolioKeepsUnsecuredPV(t *testing.T) {
	t.Parallel()

	e := engine.NewCSAEngine([]product.Product{
		product.FixedRateBond{Notional: 100, CouponRate: 0.03, MaturityYears: 5, CouponFrequency: 1},
	})
	scenarios := []market.Scenario{{Name: "base", Model: baseCurve(t)}}

	results, err := e.Value(scenarios, nil, nil)
	require.NoError(t, err)
	r := results["base"]
	assert.Equal(t, r.UnsecuredPV, r.SecuredPV)
	assert.Empty(t, r.NettingSetSecuredPV)
}

func TestCSASummarize(t *testing.T) {
	t.Parallel()

	results := map[string]engine.CSAScenarioResult{
		"a": {UnsecuredPV: 100, SecuredPV: 110},
		"b": {UnsecuredPV: 200, SecuredPV: 190},
	}
	summary := engine.Summarize(results)
	assert.InDelta(t, 150.0, summary.MeanUnsecuredPV, 1e-12)
	assert.InDelta(t, 150.0, summary.MeanSecuredPV, 1e-12)
	assert.InDelta(t, 0.0, summary.MeanCollateralImpact, 1e-12)

	assert.Equal(t, engine.CSASummary{}, engine.Summarize(nil))
}

func TestCSAPropagatesErrors(t *testing.T) {
	t.Parallel()

	e := engine.NewCSAEngine([]product.Product{
		product.FixedRateBond{Notional: 100, CouponRate: 0.03, MaturityYears: 5, CouponFrequency: 1},
	})
	_, err := e.Value([]market.Scenario{{Name: "empty"}}, nil, nil)
	require.ErrorIs(t, err, product.ErrMissingModel)
}
