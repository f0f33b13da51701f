package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// FXForward is a single-period FX forward valued in domestic currency.
// Strike and FX quotes are domestic per unit foreign.
type FXForward struct {
	NotionalForeign           float64
	Strike                    float64
	MaturityYears             float64
	PayForeignReceiveDomestic bool
}

func (f FXForward) Name() string { return "FXForward" }

func (f FXForward) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	if _, err := requireModel(s, "FXForward"); err != nil {
		return nil, err
	}
	fx, err := requireFXCurve(s, "FXForward")
	if err != nil {
		return nil, err
	}
	if f.NotionalForeign <= 0 || f.MaturityYears <= 0 {
		return nil, fmt.Errorf("FXForward: notional and maturity must be positive")
	}
	sign := 1.0
	if !f.PayForeignReceiveDomestic {
		sign = -1.0
	}
	payoff := sign * f.NotionalForeign * (fx.Forward(f.MaturityYears) - f.Strike)
	return []Cashflow{{Time: f.MaturityYears, Amount: payoff}}, nil
}

func (f FXForward) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "FXForward")
	if err != nil {
		return 0, err
	}
	cfs, err := f.Cashflows(s)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

var _ Product = FXForward{}

// FXSwapLegs is the near/far/net cashflow decomposition of an FX swap.
type FXSwapLegs struct {
	NearLeg []Cashflow
	FarLeg  []Cashflow
	Net     []Cashflow
}

// FXSwap is a two-leg FX swap valued in domestic currency. When FarRate is
// nil the far exchange rate is implied by broken-date covered interest
// parity, which requires the scenario's foreign model.
type FXSwap struct {
	NotionalForeign           float64
	NearRate                  float64
	FarRate                   *float64
	NearMaturityYears         float64
	FarMaturityYears          float64
	PayForeignReceiveDomestic bool
}

func (f FXSwap) Name() string { return "FXSwap" }

// LegCashflows returns the near/far leg decomposition for exposure analytics.
func (f FXSwap) LegCashflows(s *market.Scenario) (FXSwapLegs, error) {
	if f.NotionalForeign <= 0 || f.NearMaturityYears <= 0 {
		return FXSwapLegs{}, fmt.Errorf("FXSwap: notional and near maturity must be positive")
	}
	if f.FarMaturityYears <= f.NearMaturityYears {
		return FXSwapLegs{}, fmt.Errorf("FXSwap: far maturity %g must be greater than near maturity %g", f.FarMaturityYears, f.NearMaturityYears)
	}
	sign := 1.0
	if !f.PayForeignReceiveDomestic {
		sign = -1.0
	}
	farRate, err := f.farExchangeRate(s)
	if err != nil {
		return FXSwapLegs{}, err
	}
	near := []Cashflow{{Time: f.NearMaturityYears, Amount: sign * f.NotionalForeign * f.NearRate}}
	far := []Cashflow{{Time: f.FarMaturityYears, Amount: -sign * f.NotionalForeign * farRate}}
	return FXSwapLegs{
		NearLeg: near,
		FarLeg:  far,
		Net:     append(append([]Cashflow(nil), near...), far...),
	}, nil
}

func (f FXSwap) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	legs, err := f.LegCashflows(s)
	if err != nil {
		return nil, err
	}
	return legs.Net, nil
}

func (f FXSwap) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "FXSwap")
	if err != nil {
		return 0, err
	}
	cfs, err := f.Cashflows(s)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

// farExchangeRate resolves the quoted far rate or implies it from the
// domestic/foreign discount-factor ratio between the near and far dates.
func (f FXSwap) farExchangeRate(s *market.Scenario) (float64, error) {
	if f.FarRate != nil {
		return *f.FarRate, nil
	}
	domestic, err := requireModel(s, "FXSwap")
	if err != nil {
		return 0, err
	}
	foreign, err := requireForeignModel(s, "FXSwap")
	if err != nil {
		return 0, err
	}
	if f.FarMaturityYears <= 0 {
		return f.NearRate, nil
	}

	dfDNear, err := domestic.DiscountFactor(f.NearMaturityYears)
	if err != nil {
		return 0, err
	}
	dfDFar, err := domestic.DiscountFactor(f.FarMaturityYears)
	if err != nil {
		return 0, err
	}
	dfFNear, err := foreign.DiscountFactor(f.NearMaturityYears)
	if err != nil {
		return 0, err
	}
	dfFFar, err := foreign.DiscountFactor(f.FarMaturityYears)
	if err != nil {
		return 0, err
	}
	foreignRatio := dfFFar / math.Max(dfFNear, 1e-12)
	domesticRatio := dfDFar / math.Max(dfDNear, 1e-12)
	return f.NearRate * foreignRatio / math.Max(domesticRatio, 1e-12), nil
}

var _ Product = FXSwap{}
