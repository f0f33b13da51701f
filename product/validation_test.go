package product_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

func allSlotsScenario(t *testing.T) *market.Scenario {
	t.Helper()
	s := fxScenario(t, 0.03, 0.01, 1.10)
	hazard, err := market.NewHazardCurve([]float64{1, 5}, []float64{0.02, 0.02})
	require.NoError(t, err)
	s.HazardCurve = hazard
	return s
}

func TestDerivativesRejectNonPositiveNotionalAndMaturity(t *testing.T) {
	t.Parallel()

	s := allSlotsScenario(t)

	builders := []struct {
		name  string
		build func(notional, maturity float64) product.Product
	}{
		{"cds", func(n, m float64) product.Product {
			return product.CreditDefaultSwap{Notional: n, SpreadBps: 100, MaturityYears: m, PaymentFrequency: 4, RecoveryRate: 0.40, ProtectionBuyer: true}
		}},
		{"fixed_float_swap", func(n, m float64) product.Product {
			return product.FixedFloatSwap{Notional: n, FixedRate: 0.03, MaturityYears: m, FixedFrequency: 1, FloatFrequency: 2}
		}},
		{"float_float_swap", func(n, m float64) product.Product {
			return product.FloatFloatSwap{Notional: n, MaturityYears: m, PayLegFrequency: 2, ReceiveLegFrequency: 4, PaySpread: 0.001, PayLegSign: -1}
		}},
		{"fx_swap", func(n, m float64) product.Product {
			return product.FXSwap{NotionalForeign: n, NearRate: 1.10, NearMaturityYears: m, FarMaturityYears: m + 0.75, PayForeignReceiveDomestic: true}
		}},
		{"ccs", func(n, m float64) product.Product {
			return product.CrossCurrencySwap{DomesticNotional: n, ForeignNotional: n, MaturityYears: m, DomesticFrequency: 2, ForeignFrequency: 2, ExchangeNotionals: true}
		}},
		{"swaption", func(n, m float64) product.Product {
			return product.EuropeanSwaption{Notional: n, Strike: 0.03, OptionMaturityYears: m, SwapTenorYears: 5, FixedLegFrequency: 1, Volatility: 0.20, IsPayer: true}
		}},
		{"cap", func(n, m float64) product.Product {
			return product.InterestRateCapFloor{Notional: n, Strike: 0.02, MaturityYears: m, PaymentFrequency: 4, Volatility: 0.20, IsCap: true}
		}},
	}
	cases := []struct{ notional, maturity float64 }{
		{0, 5},
		{-1e6, 5},
		{1e6, 0},
		{1e6, -5},
	}

	for _, b := range builders {
		for _, c := range cases {
			b, c := b, c
			t.Run(fmt.Sprintf("%s/notional=%g,maturity=%g", b.name, c.notional, c.maturity), func(t *testing.T) {
				t.Parallel()
				p := b.build(c.notional, c.maturity)
				_, err := p.PresentValue(s)
				require.Error(t, err)
				_, err = p.Cashflows(s)
				require.Error(t, err)
			})
		}
	}
}
