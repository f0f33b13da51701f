package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// FixedRateBond is a bullet bond with a level coupon schedule.
type FixedRateBond struct {
	Notional        float64
	CouponRate      float64
	MaturityYears   float64
	CouponFrequency int
}

func (b FixedRateBond) Name() string { return "FixedRateBond" }

// Face reports the notional for price-percent breakdowns.
func (b FixedRateBond) Face() float64 { return b.Notional }

func (b FixedRateBond) schedule() (periods int, dt float64, err error) {
	if b.Notional <= 0 || b.MaturityYears <= 0 {
		return 0, 0, fmt.Errorf("FixedRateBond: notional and maturity must be positive")
	}
	if b.CouponFrequency <= 0 {
		return 0, 0, fmt.Errorf("FixedRateBond: coupon frequency must be positive")
	}
	periods = int(math.Round(b.MaturityYears * float64(b.CouponFrequency)))
	if periods <= 0 {
		return 0, 0, fmt.Errorf("FixedRateBond: maturity and frequency imply zero periods")
	}
	return periods, 1.0 / float64(b.CouponFrequency), nil
}

// Cashflows returns the contractual coupon and redemption schedule.
func (b FixedRateBond) Cashflows(_ *market.Scenario) ([]Cashflow, error) {
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

func (b FixedRateBond) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "FixedRateBond")
	if err != nil {
		return 0, err
	}
	cfs, err := b.Cashflows(s)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

var _ Product = FixedRateBond{}
var _ Facer = FixedRateBond{}
