package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// Coupon and schedule vocabulary for CorporateBond.
const (
	CouponFixed    = "fixed"
	CouponFloating = "floating"

	FreqMonthly    = "monthly"
	FreqQuarterly  = "quarterly"
	FreqSemiAnnual = "semi_annual"
	FreqAnnual     = "annual"

	AmortBullet = "bullet"
	AmortLinear = "linear"
	AmortCustom = "custom"

	CompoundingContinuous = "continuous"
	CompoundingAnnual     = "annual"
)

func frequencyYears(frequency string) (float64, error) {
	switch frequency {
	case FreqMonthly:
		return 1.0 / 12.0, nil
	case FreqQuarterly:
		return 0.25, nil
	case FreqSemiAnnual:
		return 0.5, nil
	case FreqAnnual:
		return 1.0, nil
	default:
		return 0, fmt.Errorf("unsupported frequency %q", frequency)
	}
}

// accrualFactor applies the day count to a period length. All supported
// conventions reduce to the nominal period fraction on the year-fraction
// timeline.
func accrualFactor(dayCount string, dt float64) (float64, error) {
	switch dayCount {
	case "30/360", "ACT/365", "ACT/360", "act/365", "act/360":
		return dt, nil
	default:
		return 0, fmt.Errorf("unsupported day count %q", dayCount)
	}
}

// CorporateBond supports fixed or floating coupons, bullet/linear/custom
// amortization, interest-only periods, and constant prepayment.
type CorporateBond struct {
	Notional            float64
	MaturityYears       float64
	CouponType          string
	FixedRate           float64
	Spread              float64
	Frequency           string
	DayCount            string
	AmortizationMode    string
	CustomAmortization  []float64
	InterestOnlyPeriods int
	AnnualCPR           float64
	// PeriodicPrepaymentRate overrides the CPR-derived SMM when set.
	PeriodicPrepaymentRate *float64
}

func (b CorporateBond) Name() string { return "CorporateBond" }

func (b CorporateBond) Face() float64 { return b.Notional }

func (b CorporateBond) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "CorporateBond")
	if err != nil {
		return nil, err
	}
	return b.expectedCashflows(model, forwardSourceOf(s))
}

func (b CorporateBond) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "CorporateBond")
	if err != nil {
		return 0, err
	}
	cfs, err := b.expectedCashflows(model, forwardSourceOf(s))
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

// PriceFromYield discounts the expected cashflows at a flat annual yield.
func (b CorporateBond) PriceFromYield(annualYield float64, s *market.Scenario, compounding string) (float64, error) {
	model, err := requireModel(s, "CorporateBond")
	if err != nil {
		return 0, err
	}
	cfs, err := b.expectedCashflows(model, forwardSourceOf(s))
	if err != nil {
		return 0, err
	}
	switch compounding {
	case CompoundingContinuous:
		pv := 0.0
		for _, cf := range cfs {
			pv += cf.Amount * math.Exp(-annualYield*cf.Time)
		}
		return pv, nil
	case CompoundingAnnual:
		pv := 0.0
		for _, cf := range cfs {
			pv += cf.Amount / math.Pow(1.0+annualYield, cf.Time)
		}
		return pv, nil
	default:
		return 0, fmt.Errorf("PriceFromYield: compounding must be one of: continuous, annual, got %q", compounding)
	}
}

// YieldToMaturity solves for the flat yield matching a target dirty PV.
func (b CorporateBond) YieldToMaturity(targetDirtyPV float64, s *market.Scenario, compounding string) (float64, error) {
	if targetDirtyPV <= 0 {
		return 0, fmt.Errorf("YieldToMaturity: target dirty PV must be positive, got %g", targetDirtyPV)
	}
	f := func(y float64) (float64, error) {
		pv, err := b.PriceFromYield(y, s, compounding)
		if err != nil {
			return 0, err
		}
		return pv - targetDirtyPV, nil
	}
	return bisect(f, -0.05, 1.00, "YieldToMaturity")
}

// forwardSourceOf returns the floating-rate projection source for a scenario:
// the explicit forward model when present, else the discount model.
func forwardSourceOf(s *market.Scenario) market.ForwardSource {
	if s != nil && s.ForwardModel != nil {
		return s.ForwardModel
	}
	if s != nil && s.Model != nil {
		return s.Model
	}
	return nil
}

func (b CorporateBond) expectedCashflows(model market.RateModel, forwards market.ForwardSource) ([]Cashflow, error) {
	if b.Notional <= 0 || b.MaturityYears <= 0 {
		return nil, fmt.Errorf("CorporateBond: notional and maturity must be positive")
	}
	dt, err := frequencyYears(b.Frequency)
	if err != nil {
		return nil, fmt.Errorf("CorporateBond: %w", err)
	}
	periods := int(math.Round(b.MaturityYears / dt))
	if periods <= 0 {
		return nil, fmt.Errorf("CorporateBond: maturity and frequency imply zero periods")
	}
	if b.InterestOnlyPeriods < 0 || b.InterestOnlyPeriods >= periods {
		return nil, fmt.Errorf("CorporateBond: interest-only periods must be in [0, %d)", periods)
	}

	schedule, err := b.scheduledPrincipal(periods)
	if err != nil {
		return nil, err
	}
	accrual, err := accrualFactor(b.DayCount, dt)
	if err != nil {
		return nil, fmt.Errorf("CorporateBond: %w", err)
	}

	cfs := make([]Cashflow, 0, periods+1)
	outstanding := b.Notional
	for i := 1; i <= periods; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt

		prepay := b.prepaymentAmount(outstanding, dt)
		outstandingAfterPrepay := math.Max(0.0, outstanding-prepay)

		couponRate, err := b.couponRate(forwards, t0, t1)
		if err != nil {
			return nil, err
		}
		interest := outstandingAfterPrepay * couponRate * accrual

		scheduled := 0.0
		if i > b.InterestOnlyPeriods {
			scheduled = math.Min(outstandingAfterPrepay, schedule[i-1])
		}

		cfs = append(cfs, Cashflow{Time: t1, Amount: interest + prepay + scheduled})
		outstanding = math.Max(0.0, outstandingAfterPrepay-scheduled)
	}
	if outstanding > 1e-8 {
		cfs = append(cfs, Cashflow{Time: float64(periods) * dt, Amount: outstanding})
	}
	return cfs, nil
}

func (b CorporateBond) couponRate(forwards market.ForwardSource, t0, t1 float64) (float64, error) {
	switch b.CouponType {
	case CouponFixed:
		return b.FixedRate, nil
	case CouponFloating:
		if forwards == nil {
			return 0, fmt.Errorf("CorporateBond: %w", ErrMissingModel)
		}
		fwd, err := forwards.ForwardRate(t0, t1)
		if err != nil {
			return 0, err
		}
		return fwd + b.Spread, nil
	default:
		return 0, fmt.Errorf("CorporateBond: coupon type must be fixed or floating, got %q", b.CouponType)
	}
}

func (b CorporateBond) scheduledPrincipal(periods int) ([]float64, error) {
	switch b.AmortizationMode {
	case AmortBullet:
		principal := make([]float64, periods)
		principal[periods-1] = b.Notional
		return principal, nil
	case AmortLinear:
		equal := b.Notional / float64(periods)
		principal := make([]float64, periods)
		for i := range principal {
			principal[i] = equal
		}
		return principal, nil
	case AmortCustom:
		if len(b.CustomAmortization) != periods {
			return nil, fmt.Errorf("CorporateBond: custom amortization length %d must equal %d periods", len(b.CustomAmortization), periods)
		}
		return append([]float64(nil), b.CustomAmortization...), nil
	default:
		return nil, fmt.Errorf("CorporateBond: amortization mode must be bullet, linear, or custom, got %q", b.AmortizationMode)
	}
}

func (b CorporateBond) prepaymentAmount(outstanding, dt float64) float64 {
	if b.PeriodicPrepaymentRate != nil {
		return outstanding * math.Max(0.0, *b.PeriodicPrepaymentRate)
	}
	annual := math.Max(0.0, b.AnnualCPR)
	return outstanding * (1.0 - math.Pow(1.0-annual, dt))
}

var _ Product = CorporateBond{}
var _ Facer = CorporateBond{}
