package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/loader"
	"github.com/meenmo/riskval/product"
)

func TestParseProductVocabulary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		productType string
		row         loader.Row
		wantName    string
	}{
		{"fixed_bond", loader.Row{"notional": "100", "coupon_or_fixed_rate": "0.03", "maturity_years": "5"}, "FixedRateBond"},
		{"callable_bond", loader.Row{"notional": "100", "coupon_or_fixed_rate": "0.04", "maturity_years": "5", "call_schedule": "2:100|3:100"}, "CallableFixedRateBond"},
		{"corporate_bond", loader.Row{"notional": "100", "maturity_years": "5", "coupon_or_fixed_rate": "0.04"}, "CorporateBond"},
		{"german_fixed_rate_mortgage", loader.Row{"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10"}, "GermanFixedRateMortgageLoan"},
		{"integrated_mortgage", loader.Row{"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10"}, "IntegratedMortgageLoan"},
		{"integrated_german_fixed_rate_mortgage", loader.Row{"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10"}, "IntegratedGermanFixedRateMortgageLoan"},
		{"fixed_float_swap", loader.Row{"notional": "1000000", "coupon_or_fixed_rate": "0.025", "maturity_years": "5"}, "FixedFloatSwap"},
		{"float_float_swap", loader.Row{"notional": "1000000", "maturity_years": "3"}, "FloatFloatSwap"},
		{"fx_forward", loader.Row{"notional_foreign": "1000000", "strike": "1.08", "maturity_years": "1"}, "FXForward"},
		{"fx_swap", loader.Row{"notional_foreign": "1000000", "near_rate": "1.10", "near_maturity_years": "0.25", "far_maturity_years": "1"}, "FXSwap"},
		{"ccs", loader.Row{"notional": "1000000", "notional_foreign": "900000", "maturity_years": "3"}, "CrossCurrencySwap"},
		{"swaption", loader.Row{"notional": "1000000", "strike": "0.03", "option_maturity_years": "1", "swap_tenor_years": "5"}, "EuropeanSwaption"},
		{"cap_floor", loader.Row{"notional": "1000000", "strike": "0.02", "maturity_years": "3"}, "InterestRateCapFloor"},
		{"cds", loader.Row{"notional": "10000000", "spread_bps": "100", "maturity_years": "5"}, "CreditDefaultSwap"},
	}
	for _, tc := range cases {
		p, err := loader.ParseProduct(tc.row, tc.productType)
		require.NoError(t, err, "product_type=%s", tc.productType)
		assert.Equal(t, tc.wantName, p.Name())
	}
}

func TestParseProductUnknownType(t *testing.T) {
	t.Parallel()

	_, err := loader.ParseProduct(loader.Row{}, "variance_swap")
	require.ErrorIs(t, err, loader.ErrUnsupportedProductType)
}

func TestParseProductMissingRequiredField(t *testing.T) {
	t.Parallel()

	_, err := loader.ParseProduct(loader.Row{"coupon_or_fixed_rate": "0.03", "maturity_years": "5"}, "fixed_bond")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notional")

	_, err = loader.ParseProduct(loader.Row{"notional": "1000000", "maturity_years": "5"}, "cds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spread_bps")
}

func TestParseCallableBondSchedule(t *testing.T) {
	t.Parallel()

	row := loader.Row{
		"notional": "100", "coupon_or_fixed_rate": "0.04", "maturity_years": "5",
		"call_schedule": "2:100.5|3:100", "volatility": "0.015",
	}
	p, err := loader.ParseProduct(row, "callable_bond")
	require.NoError(t, err)
	bond, ok := p.(product.CallableFixedRateBond)
	require.True(t, ok)
	require.Len(t, bond.CallSchedule, 2)
	assert.Equal(t, product.CallDate{TimeYears: 2, Price: 100.5}, bond.CallSchedule[0])
	assert.InDelta(t, 0.015, bond.ShortRateVolatility, 1e-12)

	row["call_schedule"] = "2=100"
	_, err = loader.ParseProduct(row, "callable_bond")
	require.Error(t, err)

	row["call_schedule"] = "x:100"
	_, err = loader.ParseProduct(row, "callable_bond")
	require.Error(t, err)
}

func TestParseMortgagePrepaymentSelection(t *testing.T) {
	t.Parallel()

	base := loader.Row{"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10"}

	p, err := loader.ParseProduct(base, "integrated_german_fixed_rate_mortgage")
	require.NoError(t, err)
	loan := p.(product.IntegratedGermanFixedRateMortgageLoan)
	assert.Nil(t, loan.Prepayment)

	withCPR := loader.Row{"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10", "annual_cpr": "0.05"}
	p, err = loader.ParseProduct(withCPR, "integrated_german_fixed_rate_mortgage")
	require.NoError(t, err)
	loan = p.(product.IntegratedGermanFixedRateMortgageLoan)
	require.NotNil(t, loan.Prepayment)
	assert.IsType(t, product.ConstantCPRPrepayment{}, loan.Prepayment)

	behavioural := loader.Row{
		"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10",
		"use_behavioural_prepayment": "true", "base_cpr": "0.02",
	}
	p, err = loader.ParseProduct(behavioural, "integrated_german_fixed_rate_mortgage")
	require.NoError(t, err)
	loan = p.(product.IntegratedGermanFixedRateMortgageLoan)
	model, ok := loan.Prepayment.(*product.BehaviouralPrepaymentModel)
	require.True(t, ok)
	assert.InDelta(t, 0.02, model.BaseCPR, 1e-12)
}

func TestParseSeasonalityFactors(t *testing.T) {
	t.Parallel()

	row := loader.Row{
		"notional": "200000", "coupon_or_fixed_rate": "0.035", "maturity_years": "10",
		"seasonality_factors": "1|1|1|1|1|1|1|1|1|1|1|2",
	}
	p, err := loader.ParseProduct(row, "german_fixed_rate_mortgage")
	require.NoError(t, err)
	loan := p.(product.GermanFixedRateMortgageLoan)
	require.NotNil(t, loan.Prepayment)
	assert.Equal(t, 2.0, loan.Prepayment.SeasonalityFactors[11])

	row["seasonality_factors"] = "1|1|1"
	_, err = loader.ParseProduct(row, "german_fixed_rate_mortgage")
	require.Error(t, err)
}

func TestParseCCSOptionalFixedRates(t *testing.T) {
	t.Parallel()

	row := loader.Row{
		"notional": "1000000", "notional_foreign": "900000", "maturity_years": "3",
		"coupon_or_fixed_rate": "0.03", "mark_to_market": "yes",
	}
	p, err := loader.ParseProduct(row, "ccs")
	require.NoError(t, err)
	ccs := p.(product.CrossCurrencySwap)
	require.NotNil(t, ccs.DomesticFixedRate)
	assert.InDelta(t, 0.03, *ccs.DomesticFixedRate, 1e-12)
	assert.Nil(t, ccs.ForeignFixedRate)
	assert.True(t, ccs.MarkToMarket)
	assert.True(t, ccs.ExchangeNotionals)
}
