package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// EuropeanSwaption is a Black-76 European swaption on the forward swap rate
// against the fixed-leg annuity.
type EuropeanSwaption struct {
	Notional            float64
	Strike              float64
	OptionMaturityYears float64
	SwapTenorYears      float64
	FixedLegFrequency   int
	Volatility          float64
	IsPayer             bool
}

func (o EuropeanSwaption) Name() string { return "EuropeanSwaption" }

// Cashflows represents the option as a single expected discounted flow at
// expiry; option exercise is folded into the Black-76 value.
func (o EuropeanSwaption) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	pv, err := o.PresentValue(s)
	if err != nil {
		return nil, err
	}
	return []Cashflow{{Time: o.OptionMaturityYears, Amount: pv}}, nil
}

func (o EuropeanSwaption) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "EuropeanSwaption")
	if err != nil {
		return 0, err
	}
	if o.Notional <= 0 || o.OptionMaturityYears <= 0 {
		return 0, fmt.Errorf("EuropeanSwaption: notional and maturity must be positive")
	}
	if o.FixedLegFrequency <= 0 {
		return 0, fmt.Errorf("EuropeanSwaption: fixed leg frequency must be positive, got %d", o.FixedLegFrequency)
	}
	n := int(math.Round(o.SwapTenorYears * float64(o.FixedLegFrequency)))
	if n <= 0 {
		return 0, fmt.Errorf("EuropeanSwaption: swap tenor and frequency imply zero periods")
	}

	expiry := o.OptionMaturityYears
	dt := 1.0 / float64(o.FixedLegFrequency)
	annuity := 0.0
	for i := 0; i < n; i++ {
		df, err := model.DiscountFactor(expiry + float64(i+1)*dt)
		if err != nil {
			return 0, err
		}
		annuity += dt * df
	}
	if annuity <= 0 {
		return 0, fmt.Errorf("EuropeanSwaption: annuity must be positive, got %g", annuity)
	}

	pStart, err := model.DiscountFactor(expiry)
	if err != nil {
		return 0, err
	}
	pEnd, err := model.DiscountFactor(expiry + o.SwapTenorYears)
	if err != nil {
		return 0, err
	}
	forwardSwapRate := (pStart - pEnd) / annuity

	sigmaSqrtT := o.Volatility * math.Sqrt(math.Max(expiry, 1e-12))
	if sigmaSqrtT <= 0 {
		intrinsic := forwardSwapRate - o.Strike
		if !o.IsPayer {
			intrinsic = o.Strike - forwardSwapRate
		}
		return o.Notional * annuity * math.Max(0.0, intrinsic), nil
	}

	d1 := (math.Log(math.Max(forwardSwapRate, 1e-12)/math.Max(o.Strike, 1e-12)) + 0.5*sigmaSqrtT*sigmaSqrtT) / sigmaSqrtT
	d2 := d1 - sigmaSqrtT
	var price float64
	if o.IsPayer {
		price = forwardSwapRate*normCDF(d1) - o.Strike*normCDF(d2)
	} else {
		price = o.Strike*normCDF(-d2) - forwardSwapRate*normCDF(-d1)
	}
	return o.Notional * annuity * price, nil
}

var _ Product = EuropeanSwaption{}

// InterestRateCapFloor prices a strip of Black-76 optionlets on simple
// forward rates.
type InterestRateCapFloor struct {
	Notional         float64
	Strike           float64
	MaturityYears    float64
	PaymentFrequency int
	Volatility       float64
	IsCap            bool
}

func (o InterestRateCapFloor) Name() string { return "InterestRateCapFloor" }

// Cashflows reports each optionlet as an undiscounted expected amount at its
// payment time.
func (o InterestRateCapFloor) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "InterestRateCapFloor")
	if err != nil {
		return nil, err
	}
	n, dt, err := o.schedule()
	if err != nil {
		return nil, err
	}
	cfs := make([]Cashflow, 0, n)
	for i := 1; i <= n; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt
		v, err := o.optionletValue(model, t0, t1)
		if err != nil {
			return nil, err
		}
		df, err := model.DiscountFactor(t1)
		if err != nil {
			return nil, err
		}
		cfs = append(cfs, Cashflow{Time: t1, Amount: v / math.Max(df, 1e-12)})
	}
	return cfs, nil
}

func (o InterestRateCapFloor) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "InterestRateCapFloor")
	if err != nil {
		return 0, err
	}
	n, dt, err := o.schedule()
	if err != nil {
		return 0, err
	}
	pv := 0.0
	for i := 1; i <= n; i++ {
		v, err := o.optionletValue(model, float64(i-1)*dt, float64(i)*dt)
		if err != nil {
			return 0, err
		}
		pv += v
	}
	return pv, nil
}

func (o InterestRateCapFloor) schedule() (int, float64, error) {
	if o.Notional <= 0 || o.MaturityYears <= 0 {
		return 0, 0, fmt.Errorf("InterestRateCapFloor: notional and maturity must be positive")
	}
	if o.PaymentFrequency <= 0 {
		return 0, 0, fmt.Errorf("InterestRateCapFloor: payment frequency must be positive, got %d", o.PaymentFrequency)
	}
	n := int(math.Round(o.MaturityYears * float64(o.PaymentFrequency)))
	if n <= 0 {
		return 0, 0, fmt.Errorf("InterestRateCapFloor: maturity and frequency imply zero periods")
	}
	return n, 1.0 / float64(o.PaymentFrequency), nil
}

// optionletValue returns the discounted Black-76 value of one caplet or
// floorlet over (t0, t1].
func (o InterestRateCapFloor) optionletValue(model market.RateModel, t0, t1 float64) (float64, error) {
	rawFwd, err := model.ForwardRate(t0, t1)
	if err != nil {
		return 0, err
	}
	fwd := math.Max(rawFwd, 1e-12)
	k := math.Max(o.Strike, 1e-12)
	tau := math.Max(t1-t0, 1e-12)
	expiry := math.Max(t0, 1e-12)
	volTerm := o.Volatility * math.Sqrt(expiry)
	df, err := model.DiscountFactor(t1)
	if err != nil {
		return 0, err
	}

	if volTerm <= 0 {
		intrinsic := fwd - k
		if !o.IsCap {
			intrinsic = k - fwd
		}
		return o.Notional * tau * df * math.Max(0.0, intrinsic), nil
	}

	d1 := (math.Log(fwd/k) + 0.5*volTerm*volTerm) / volTerm
	d2 := d1 - volTerm
	var payoff float64
	if o.IsCap {
		payoff = fwd*normCDF(d1) - k*normCDF(d2)
	} else {
		payoff = k*normCDF(-d2) - fwd*normCDF(-d1)
	}
	return o.Notional * tau * df * payoff, nil
}

var _ Product = InterestRateCapFloor{}
