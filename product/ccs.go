package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// CCSLegs is the leg/notional/reset cashflow decomposition of a cross
// currency swap, every amount in domestic currency.
type CCSLegs struct {
	NotionalExchanges []Cashflow
	DomesticLeg       []Cashflow
	ForeignLeg        []Cashflow
	ResetExchanges    []Cashflow
	Net               []Cashflow
}

// CrossCurrencySwap exchanges domestic against foreign coupon streams with
// optional start/end notional exchange and mark-to-market notional resets on
// the foreign leg.
type CrossCurrencySwap struct {
	DomesticNotional  float64
	ForeignNotional   float64
	MaturityYears     float64
	DomesticFrequency int
	ForeignFrequency  int
	// Nil fixed rates make the corresponding leg floating off its own curve.
	DomesticFixedRate *float64
	ForeignFixedRate  *float64
	DomesticSpread    float64
	ForeignSpread     float64

	PayDomesticReceiveForeign bool
	ExchangeNotionals         bool
	MarkToMarket              bool
}

func (c CrossCurrencySwap) Name() string { return "CrossCurrencySwap" }

// LegCashflows returns the decomposed cashflows for exposure reporting.
func (c CrossCurrencySwap) LegCashflows(s *market.Scenario) (CCSLegs, error) {
	domestic, err := requireModel(s, "CrossCurrencySwap")
	if err != nil {
		return CCSLegs{}, err
	}
	foreign, err := requireForeignModel(s, "CrossCurrencySwap")
	if err != nil {
		return CCSLegs{}, err
	}
	fx, err := requireFXCurve(s, "CrossCurrencySwap")
	if err != nil {
		return CCSLegs{}, err
	}
	if c.DomesticNotional <= 0 || c.ForeignNotional <= 0 || c.MaturityYears <= 0 {
		return CCSLegs{}, fmt.Errorf("CrossCurrencySwap: notionals and maturity must be positive")
	}

	sign := 1.0
	if c.PayDomesticReceiveForeign {
		sign = -1.0
	}
	currentForeignNotional := c.ForeignNotional
	if c.MarkToMarket {
		currentForeignNotional = c.DomesticNotional / math.Max(fx.Forward(0.0), 1e-12)
	}

	var legs CCSLegs
	if c.ExchangeNotionals {
		legs.NotionalExchanges = append(legs.NotionalExchanges,
			Cashflow{Time: 0.0, Amount: sign * c.DomesticNotional},
			Cashflow{Time: 0.0, Amount: -sign * currentForeignNotional * fx.Forward(0.0)},
		)
	}

	legs.DomesticLeg, err = c.legCashflows(domestic, nil, c.DomesticNotional, c.DomesticFrequency, c.DomesticFixedRate, c.DomesticSpread, sign)
	if err != nil {
		return CCSLegs{}, err
	}
	legs.ForeignLeg, err = c.legCashflows(foreign, fx, currentForeignNotional, c.ForeignFrequency, c.ForeignFixedRate, c.ForeignSpread, -sign)
	if err != nil {
		return CCSLegs{}, err
	}

	if c.MarkToMarket && c.ExchangeNotionals {
		nResets := int(math.Round(c.MaturityYears * float64(c.ForeignFrequency)))
		dt := 1.0 / float64(c.ForeignFrequency)
		for i := 1; i < nResets; i++ {
			t := float64(i) * dt
			newForeignNotional := c.DomesticNotional / math.Max(fx.Forward(t), 1e-12)
			deltaForeign := newForeignNotional - currentForeignNotional
			legs.ResetExchanges = append(legs.ResetExchanges, Cashflow{Time: t, Amount: -sign * deltaForeign * fx.Forward(t)})
			currentForeignNotional = newForeignNotional
		}
	}

	if c.ExchangeNotionals {
		t := c.MaturityYears
		legs.NotionalExchanges = append(legs.NotionalExchanges,
			Cashflow{Time: t, Amount: -sign * c.DomesticNotional},
			Cashflow{Time: t, Amount: sign * currentForeignNotional * fx.Forward(t)},
		)
	}

	legs.Net = make([]Cashflow, 0, len(legs.NotionalExchanges)+len(legs.DomesticLeg)+len(legs.ForeignLeg)+len(legs.ResetExchanges))
	legs.Net = append(legs.Net, legs.NotionalExchanges...)
	legs.Net = append(legs.Net, legs.DomesticLeg...)
	legs.Net = append(legs.Net, legs.ForeignLeg...)
	legs.Net = append(legs.Net, legs.ResetExchanges...)
	return legs, nil
}

func (c CrossCurrencySwap) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	legs, err := c.LegCashflows(s)
	if err != nil {
		return nil, err
	}
	return legs.Net, nil
}

func (c CrossCurrencySwap) PresentValue(s *market.Scenario) (float64, error) {
	domestic, err := requireModel(s, "CrossCurrencySwap")
	if err != nil {
		return 0, err
	}
	cfs, err := c.Cashflows(s)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(domestic, cfs)
}

// legCashflows builds one coupon leg. A non-nil fx converts each foreign
// amount to domestic at the payment-date forward; under mark-to-market the
// foreign effective notional resets to domestic/FX at each fixing date.
func (c CrossCurrencySwap) legCashflows(model market.RateModel, fx *market.FXCurve, notional float64, frequency int, fixedRate *float64, spread, sign float64) ([]Cashflow, error) {
	n := int(math.Round(c.MaturityYears * float64(frequency)))
	dt := 1.0 / float64(frequency)
	cfs := make([]Cashflow, 0, n)
	for i := 1; i <= n; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt
		effectiveNotional := notional
		if c.MarkToMarket && fx != nil {
			effectiveNotional = c.DomesticNotional / math.Max(fx.Forward(t0), 1e-12)
		}
		rate := 0.0
		if fixedRate != nil {
			rate = *fixedRate
		} else {
			fwd, err := model.ForwardRate(t0, t1)
			if err != nil {
				return nil, err
			}
			rate = fwd
		}
		amount := sign * effectiveNotional * (rate + spread) * dt
		if fx != nil {
			amount *= fx.Forward(t1)
		}
		cfs = append(cfs, Cashflow{Time: t1, Amount: amount})
	}
	return cfs, nil
}

var _ Product = CrossCurrencySwap{}
