package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// CallDate is a single issuer call right at TimeYears for Price.
type CallDate struct {
	TimeYears float64
	Price     float64
}

// CallableFixedRateBond is a fixed-rate bond with issuer call rights, priced
// on a recombining two-branch short-rate lattice around the scenario model's
// short rate.
type CallableFixedRateBond struct {
	Notional            float64
	CouponRate          float64
	MaturityYears       float64
	CouponFrequency     int
	CallSchedule        []CallDate
	ShortRateVolatility float64
}

func (b CallableFixedRateBond) Name() string { return "CallableFixedRateBond" }

func (b CallableFixedRateBond) Face() float64 { return b.Notional }

func (b CallableFixedRateBond) schedule() (periods int, dt float64, err error) {
	if b.Notional <= 0 || b.MaturityYears <= 0 {
		return 0, 0, fmt.Errorf("CallableFixedRateBond: notional and maturity must be positive")
	}
	if b.CouponFrequency <= 0 {
		return 0, 0, fmt.Errorf("CallableFixedRateBond: coupon frequency must be positive")
	}
	periods = int(math.Round(b.MaturityYears * float64(b.CouponFrequency)))
	if periods <= 0 {
		return 0, 0, fmt.Errorf("CallableFixedRateBond: maturity and frequency imply zero periods")
	}
	return periods, 1.0 / float64(b.CouponFrequency), nil
}

// Cashflows returns the contractual schedule only. Call exercise is
// path-dependent and handled inside the lattice valuation.
func (b CallableFixedRateBond) Cashflows(_ *market.Scenario) ([]Cashflow, error) {
	periods, dt, err := b.schedule()
	if err != nil {
		return nil, err
	}
	coupon := b.Notional * b.CouponRate * dt
	cfs := make([]Cashflow, 0, periods)
	for i := 1; i <= periods; i++ {
		amount := coupon
		if i == periods {
			amount += b.Notional
		}
		cfs = append(cfs, Cashflow{Time: float64(i) * dt, Amount: amount})
	}
	return cfs, nil
}

func (b CallableFixedRateBond) PresentValue(s *market.Scenario) (float64, error) {
	return b.PriceWithOAS(0.0, s)
}

// PriceWithOAS values the bond on the lattice with a constant spread added to
// every local short rate.
func (b CallableFixedRateBond) PriceWithOAS(oas float64, s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "CallableFixedRateBond")
	if err != nil {
		return 0, err
	}
	periods, dt, err := b.schedule()
	if err != nil {
		return 0, err
	}

	coupon := b.Notional * b.CouponRate * dt
	sigma := math.Max(b.ShortRateVolatility, 0.0)
	sqrtDt := math.Sqrt(dt)

	callAt := make(map[float64]float64, len(b.CallSchedule))
	for _, c := range b.CallSchedule {
		callAt[c.TimeYears] = c.Price
	}

	values := make([]float64, periods+1)
	for j := range values {
		values[j] = b.Notional
	}
	for i := periods - 1; i >= 0; i-- {
		ti := float64(i) * dt
		tPay := float64(i+1) * dt
		callPrice, callable := callAt[tPay]
		next := make([]float64, i+1)
		for j := 0; j <= i; j++ {
			state := float64(2*j - i)
			r, err := model.ShortRate(ti)
			if err != nil {
				return 0, err
			}
			localR := r + state*sigma*sqrtDt + oas
			disc := math.Exp(-localR * dt)
			cont := disc * (0.5*values[j] + 0.5*values[j+1] + coupon)
			if callable {
				if callVal := disc * (callPrice + coupon); callVal < cont {
					cont = callVal
				}
			}
			next[j] = cont
		}
		values = next
	}
	return values[0], nil
}

// OptionAdjustedSpread solves for the constant lattice spread reproducing a
// target dirty price by bisection.
func (b CallableFixedRateBond) OptionAdjustedSpread(targetDirtyPrice float64, s *market.Scenario) (float64, error) {
	if targetDirtyPrice <= 0 {
		return 0, fmt.Errorf("OptionAdjustedSpread: target dirty price must be positive, got %g", targetDirtyPrice)
	}
	f := func(x float64) (float64, error) {
		pv, err := b.PriceWithOAS(x, s)
		if err != nil {
			return 0, err
		}
		return pv - targetDirtyPrice, nil
	}
	return bisect(f, -0.10, 0.50, "OptionAdjustedSpread")
}

var _ Product = CallableFixedRateBond{}
var _ Facer = CallableFixedRateBond{}
