package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// FixedFloatSwap is a vanilla fixed-float IRS without notional exchange.
type FixedFloatSwap struct {
	Notional       float64
	FixedRate      float64
	MaturityYears  float64
	FixedFrequency int
	FloatFrequency int
	PayFixed       bool
}

func (sw FixedFloatSwap) Name() string { return "FixedFloatSwap" }

func (sw FixedFloatSwap) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "FixedFloatSwap")
	if err != nil {
		return nil, err
	}
	if sw.Notional <= 0 || sw.MaturityYears <= 0 {
		return nil, fmt.Errorf("FixedFloatSwap: notional and maturity must be positive")
	}
	fixed, err := sw.fixedLegCashflows()
	if err != nil {
		return nil, err
	}
	float, err := sw.floatLegCashflows(model)
	if err != nil {
		return nil, err
	}
	return append(fixed, float...), nil
}

func (sw FixedFloatSwap) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "FixedFloatSwap")
	if err != nil {
		return 0, err
	}
	if sw.Notional <= 0 || sw.MaturityYears <= 0 {
		return 0, fmt.Errorf("FixedFloatSwap: notional and maturity must be positive")
	}
	fixed, err := sw.fixedLegCashflows()
	if err != nil {
		return 0, err
	}
	float, err := sw.floatLegCashflows(model)
	if err != nil {
		return 0, err
	}
	pvFixed, err := pvOfCashflows(model, fixed)
	if err != nil {
		return 0, err
	}
	pvFloat, err := pvOfCashflows(model, float)
	if err != nil {
		return 0, err
	}
	if sw.PayFixed {
		return pvFloat - pvFixed, nil
	}
	return pvFixed - pvFloat, nil
}

func (sw FixedFloatSwap) fixedLegCashflows() ([]Cashflow, error) {
	if sw.FixedFrequency <= 0 {
		return nil, fmt.Errorf("FixedFloatSwap: fixed frequency must be positive, got %d", sw.FixedFrequency)
	}
	n := int(math.Round(sw.MaturityYears * float64(sw.FixedFrequency)))
	if n <= 0 {
		return nil, fmt.Errorf("FixedFloatSwap: maturity and fixed frequency imply zero periods")
	}
	dt := 1.0 / float64(sw.FixedFrequency)
	coupon := sw.Notional * sw.FixedRate * dt
	cfs := make([]Cashflow, 0, n)
	for i := 1; i <= n; i++ {
		cfs = append(cfs, Cashflow{Time: float64(i) * dt, Amount: coupon})
	}
	return cfs, nil
}

func (sw FixedFloatSwap) floatLegCashflows(model market.RateModel) ([]Cashflow, error) {
	if sw.FloatFrequency <= 0 {
		return nil, fmt.Errorf("FixedFloatSwap: float frequency must be positive, got %d", sw.FloatFrequency)
	}
	n := int(math.Round(sw.MaturityYears * float64(sw.FloatFrequency)))
	if n <= 0 {
		return nil, fmt.Errorf("FixedFloatSwap: maturity and float frequency imply zero periods")
	}
	dt := 1.0 / float64(sw.FloatFrequency)
	cfs := make([]Cashflow, 0, n)
	for i := 1; i <= n; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt
		fwd, err := model.ForwardRate(t0, t1)
		if err != nil {
			return nil, err
		}
		cfs = append(cfs, Cashflow{Time: t1, Amount: sw.Notional * fwd * dt})
	}
	return cfs, nil
}

var _ Product = FixedFloatSwap{}

// FloatFloatSwap is a single-curve basis swap with per-leg spreads.
// PayLegSign is -1 when paying the pay leg, +1 when receiving it.
type FloatFloatSwap struct {
	Notional            float64
	MaturityYears       float64
	PayLegFrequency     int
	ReceiveLegFrequency int
	PaySpread           float64
	ReceiveSpread       float64
	PayLegSign          int
}

func (sw FloatFloatSwap) Name() string { return "FloatFloatSwap" }

func (sw FloatFloatSwap) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "FloatFloatSwap")
	if err != nil {
		return nil, err
	}
	if sw.Notional <= 0 || sw.MaturityYears <= 0 {
		return nil, fmt.Errorf("FloatFloatSwap: notional and maturity must be positive")
	}
	pay, err := sw.legCashflows(model, sw.PayLegFrequency, sw.PaySpread, float64(sw.PayLegSign))
	if err != nil {
		return nil, err
	}
	receive, err := sw.legCashflows(model, sw.ReceiveLegFrequency, sw.ReceiveSpread, -float64(sw.PayLegSign))
	if err != nil {
		return nil, err
	}
	return append(pay, receive...), nil
}

func (sw FloatFloatSwap) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "FloatFloatSwap")
	if err != nil {
		return 0, err
	}
	cfs, err := sw.Cashflows(s)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

func (sw FloatFloatSwap) legCashflows(model market.RateModel, frequency int, spread, sign float64) ([]Cashflow, error) {
	if frequency <= 0 {
		return nil, fmt.Errorf("FloatFloatSwap: leg frequency must be positive, got %d", frequency)
	}
	n := int(math.Round(sw.MaturityYears * float64(frequency)))
	if n <= 0 {
		return nil, fmt.Errorf("FloatFloatSwap: maturity and frequency imply zero periods")
	}
	dt := 1.0 / float64(frequency)
	cfs := make([]Cashflow, 0, n)
	for i := 1; i <= n; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt
		fwd, err := model.ForwardRate(t0, t1)
		if err != nil {
			return nil, err
		}
		cfs = append(cfs, Cashflow{Time: t1, Amount: sign * sw.Notional * (fwd + spread) * dt})
	}
	return cfs, nil
}

var _ Product = FloatFloatSwap{}
