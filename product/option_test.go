package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/product"
)

func TestSwaptionZeroVolIsIntrinsic(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	payer := product.EuropeanSwaption{
		Notional: 1e6, Strike: 0.001, OptionMaturityYears: 1,
		SwapTenorYears: 5, FixedLegFrequency: 1, Volatility: 0, IsPayer: true,
	}
	pv, err := payer.PresentValue(s)
	require.NoError(t, err)
	assert.Greater(t, pv, 0.0, "deep in-the-money payer must carry intrinsic value")

	receiver := payer
	receiver.IsPayer = false
	pv, err = receiver.PresentValue(s)
	require.NoError(t, err)
	assert.Zero(t, pv, "receiver struck far below the forward is worthless at zero vol")
}

func TestSwaptionVolatilityAddsTimeValue(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	base := product.EuropeanSwaption{
		Notional: 1e6, Strike: 0.03, OptionMaturityYears: 1,
		SwapTenorYears: 5, FixedLegFrequency: 2, IsPayer: true,
	}
	atZero := base
	atZero.Volatility = 0
	pvIntrinsic, err := atZero.PresentValue(s)
	require.NoError(t, err)

	base.Volatility = 0.20
	pvBlack, err := base.PresentValue(s)
	require.NoError(t, err)
	assert.Greater(t, pvBlack, pvIntrinsic)
}

func TestSwaptionValidation(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	_, err := product.EuropeanSwaption{Notional: 1e6, Strike: 0.03, OptionMaturityYears: 1, SwapTenorYears: 5, FixedLegFrequency: 0}.PresentValue(s)
	require.Error(t, err)
	_, err = product.EuropeanSwaption{Notional: 1e6, Strike: 0.03, OptionMaturityYears: 1, SwapTenorYears: 0.1, FixedLegFrequency: 1}.PresentValue(s)
	require.Error(t, err)
	_, err = product.EuropeanSwaption{Notional: 1e6, Strike: 0.03, OptionMaturityYears: 1, SwapTenorYears: 5, FixedLegFrequency: 1}.PresentValue(nil)
	require.ErrorIs(t, err, product.ErrMissingModel)
}

func TestCapAboveFloorAtLowStrike(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	cap := product.InterestRateCapFloor{
		Notional: 1e6, Strike: 0.01, MaturityYears: 3,
		PaymentFrequency: 4, Volatility: 0.20, IsCap: true,
	}
	floor := cap
	floor.IsCap = false

	pvCap, err := cap.PresentValue(s)
	require.NoError(t, err)
	pvFloor, err := floor.PresentValue(s)
	require.NoError(t, err)

	// With forwards near 3% a 1% cap is deep in the money, the floor nearly out.
	assert.Greater(t, pvCap, 1e4)
	assert.Less(t, pvFloor, pvCap/10)
	assert.GreaterOrEqual(t, pvFloor, 0.0)
}

func TestCapCashflowsUndiscountedSum(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	cap := product.InterestRateCapFloor{
		Notional: 1e6, Strike: 0.02, MaturityYears: 2,
		PaymentFrequency: 2, Volatility: 0.15, IsCap: true,
	}
	cfs, err := cap.Cashflows(s)
	require.NoError(t, err)
	require.Len(t, cfs, 4)

	pv, err := cap.PresentValue(s)
	require.NoError(t, err)
	// Discounting the reported expected amounts recovers the PV.
	discounted := 0.0
	model := s.Model
	for _, cf := range cfs {
		df, err := model.DiscountFactor(cf.Time)
		require.NoError(t, err)
		discounted += cf.Amount * df
	}
	assert.InDelta(t, pv, discounted, 1e-8)
}

func TestCapFloorValidation(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.03)
	_, err := product.InterestRateCapFloor{Notional: 1e6, Strike: 0.02, MaturityYears: 2, PaymentFrequency: 0}.PresentValue(s)
	require.Error(t, err)
	_, err = product.InterestRateCapFloor{Notional: 1e6, Strike: 0.02, MaturityYears: 0.1, PaymentFrequency: 1}.PresentValue(s)
	require.Error(t, err)
}
