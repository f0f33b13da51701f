package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// MortgageConfig is the contractual parameter bundle consumed by the
// schedule generator.
type MortgageConfig struct {
	Notional          float64
	FixedRate         float64
	MaturityYears     float64
	RepaymentType     string
	PaymentFrequency  string
	InterestOnlyYears float64
	DayCount          string
	StartMonth        int
}

// Validate checks the contractual fields before schedule generation.
func (c MortgageConfig) Validate() error {
	if c.Notional <= 0 {
		return fmt.Errorf("MortgageConfig: notional must be positive, got %g", c.Notional)
	}
	if c.MaturityYears <= 0 {
		return fmt.Errorf("MortgageConfig: maturity must be positive, got %g", c.MaturityYears)
	}
	if _, err := monthsPerPeriod(c.PaymentFrequency); err != nil {
		return fmt.Errorf("MortgageConfig: %w", err)
	}
	if c.StartMonth < 1 || c.StartMonth > 12 {
		return fmt.Errorf("MortgageConfig: start month must be in [1, 12], got %d", c.StartMonth)
	}
	switch c.DayCount {
	case "30/360", "ACT/365", "act/365":
	default:
		return fmt.Errorf("MortgageConfig: day count must be one of: 30/360, ACT/365, got %q", c.DayCount)
	}
	return nil
}

// PrepaymentModel projects an annual CPR per period for mortgage products.
type PrepaymentModel interface {
	AnnualCPR(fixedRate, refinanceRate, ageYears, maturityYears float64, monthIndex int) (float64, error)
}

// ConstantCPRPrepayment applies a flat annual CPR regardless of incentive,
// age, or season.
type ConstantCPRPrepayment struct {
	CPR float64
}

func (m ConstantCPRPrepayment) AnnualCPR(_, _, _, _ float64, _ int) (float64, error) {
	return math.Max(0.0, m.CPR), nil
}

var _ PrepaymentModel = ConstantCPRPrepayment{}
var _ PrepaymentModel = (*BehaviouralPrepaymentModel)(nil)

// MortgagePeriod is one row of the amortization table.
type MortgagePeriod struct {
	PeriodIndex        int
	T0                 float64
	T1                 float64
	BeginBalance       float64
	InterestCashflow   float64
	ScheduledPrincipal float64
	Prepayment         float64
	TotalCashflow      float64
	EndBalance         float64
	AnnualCPR          float64
	SMM                float64
}

// MortgageScheduleGenerator produces the expected amortization schedule for a
// mortgage configuration under a rate model.
type MortgageScheduleGenerator struct {
	Config     MortgageConfig
	Prepayment PrepaymentModel
}

func (g MortgageScheduleGenerator) cashflows(model market.RateModel) ([]Cashflow, error) {
	rows, err := g.Schedule(model)
	if err != nil {
		return nil, err
	}
	cfs := make([]Cashflow, len(rows))
	for i, row := range rows {
		cfs[i] = Cashflow{Time: row.T1, Amount: row.TotalCashflow}
	}
	return cfs, nil
}

// Schedule runs the full period loop. The balance amortizes by scheduled
// principal first, then prepayment on the post-scheduled balance; a residual
// balance above 1e-8 is flushed as a terminal row at maturity.
func (g MortgageScheduleGenerator) Schedule(model market.RateModel) ([]MortgagePeriod, error) {
	cfg := g.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	months, err := monthsPerPeriod(cfg.PaymentFrequency)
	if err != nil {
		return nil, err
	}

	periods := int(math.Round(cfg.MaturityYears * 12.0 / float64(months)))
	dt := float64(months) / 12.0
	ioPeriods := int(math.Round(cfg.InterestOnlyYears * 12.0 / float64(months)))
	ratePerPeriod := cfg.FixedRate * dt

	balance := cfg.Notional
	annuityPayment := annuityPayment(cfg.Notional, ratePerPeriod, periods, ioPeriods)
	constPrincipal := 0.0
	if cfg.RepaymentType == RepayConstantRepayment {
		constPrincipal = cfg.Notional / math.Max(1.0, float64(periods-ioPeriods))
	}

	rows := make([]MortgagePeriod, 0, periods+1)
	for i := 1; i <= periods; i++ {
		if balance <= 1e-8 {
			break
		}
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt
		beginBalance := balance
		interest := balance * ratePerPeriod

		scheduled, err := scheduledPrincipalFor(cfg.RepaymentType, i, periods, ioPeriods, annuityPayment, interest, constPrincipal, balance)
		if err != nil {
			return nil, err
		}
		scheduled = math.Min(balance, scheduled)
		postSched := balance - scheduled

		prepay := 0.0
		cpr := 0.0
		smm := 0.0
		if g.Prepayment != nil && postSched > 0 {
			remaining := math.Max(1e-6, cfg.MaturityYears-t0)
			refinance, err := model.ForwardRate(t0, math.Min(cfg.MaturityYears, t0+remaining))
			if err != nil {
				return nil, err
			}
			month := ((cfg.StartMonth-1)+i-1)%12 + 1
			cpr, err = g.Prepayment.AnnualCPR(cfg.FixedRate, refinance, t0, cfg.MaturityYears, month)
			if err != nil {
				return nil, err
			}
			smm = 1.0 - math.Pow(1.0-math.Max(0.0, cpr), math.Max(1e-8, dt))
			prepay = math.Min(postSched, postSched*smm)
		}
		endBalance := postSched - prepay

		rows = append(rows, MortgagePeriod{
			PeriodIndex:        i,
			T0:                 t0,
			T1:                 t1,
			BeginBalance:       beginBalance,
			InterestCashflow:   interest,
			ScheduledPrincipal: scheduled,
			Prepayment:         prepay,
			TotalCashflow:      interest + scheduled + prepay,
			EndBalance:         endBalance,
			AnnualCPR:          cpr,
			SMM:                smm,
		})
		balance = endBalance
	}

	if balance > 1e-8 {
		t := float64(periods) * dt
		rows = append(rows, MortgagePeriod{
			PeriodIndex:   periods + 1,
			T0:            t,
			T1:            t,
			BeginBalance:  balance,
			TotalCashflow: balance,
		})
	}
	return rows, nil
}

func annuityPayment(notional, ratePerPeriod float64, periods, ioPeriods int) float64 {
	n := periods - ioPeriods
	if n <= 0 {
		return 0.0
	}
	if ratePerPeriod == 0 {
		return notional / float64(n)
	}
	return notional * ratePerPeriod / (1.0 - math.Pow(1.0+ratePerPeriod, -float64(n)))
}

func scheduledPrincipalFor(repaymentType string, i, periods, ioPeriods int, annuityPayment, interest, constPrincipal, balance float64) (float64, error) {
	if i <= ioPeriods {
		return 0.0, nil
	}
	switch repaymentType {
	case RepayAnnuity:
		return math.Max(0.0, annuityPayment-interest), nil
	case RepayConstantRepayment:
		return constPrincipal, nil
	case RepayInterestOnlyThenAmortizing:
		return balance / math.Max(1.0, float64(periods-i+1)), nil
	default:
		return 0, fmt.Errorf("repayment type must be one of: annuity, constant_repayment, interest_only_then_amortizing, got %q", repaymentType)
	}
}

// IntegratedMortgageLoan is a mortgage product backed by an explicit schedule
// generator, for callers composing their own prepayment model.
type IntegratedMortgageLoan struct {
	Generator MortgageScheduleGenerator
}

func (l IntegratedMortgageLoan) Name() string { return "IntegratedMortgageLoan" }

func (l IntegratedMortgageLoan) Face() float64 { return l.Generator.Config.Notional }

func (l IntegratedMortgageLoan) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "IntegratedMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.Generator.cashflows(model)
}

func (l IntegratedMortgageLoan) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "IntegratedMortgageLoan")
	if err != nil {
		return 0, err
	}
	cfs, err := l.Generator.cashflows(model)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

// DetailedSchedule exposes the full per-period amortization table.
func (l IntegratedMortgageLoan) DetailedSchedule(s *market.Scenario) ([]MortgagePeriod, error) {
	model, err := requireModel(s, "IntegratedMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.Generator.Schedule(model)
}

var _ Product = IntegratedMortgageLoan{}
var _ Facer = IntegratedMortgageLoan{}

// IntegratedGermanFixedRateMortgageLoan is the parameter-bundle flavor of
// IntegratedMortgageLoan accepting any PrepaymentModel.
type IntegratedGermanFixedRateMortgageLoan struct {
	Notional          float64
	FixedRate         float64
	MaturityYears     float64
	RepaymentType     string
	PaymentFrequency  string
	InterestOnlyYears float64
	DayCount          string
	Prepayment        PrepaymentModel
	StartMonth        int
}

func (l IntegratedGermanFixedRateMortgageLoan) Name() string {
	return "IntegratedGermanFixedRateMortgageLoan"
}

func (l IntegratedGermanFixedRateMortgageLoan) Face() float64 { return l.Notional }

func (l IntegratedGermanFixedRateMortgageLoan) generator() MortgageScheduleGenerator {
	return MortgageScheduleGenerator{
		Config: MortgageConfig{
			Notional:          l.Notional,
			FixedRate:         l.FixedRate,
			MaturityYears:     l.MaturityYears,
			RepaymentType:     l.RepaymentType,
			PaymentFrequency:  l.PaymentFrequency,
			InterestOnlyYears: l.InterestOnlyYears,
			DayCount:          l.DayCount,
			StartMonth:        l.StartMonth,
		},
		Prepayment: l.Prepayment,
	}
}

func (l IntegratedGermanFixedRateMortgageLoan) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "IntegratedGermanFixedRateMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.generator().cashflows(model)
}

func (l IntegratedGermanFixedRateMortgageLoan) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "IntegratedGermanFixedRateMortgageLoan")
	if err != nil {
		return 0, err
	}
	cfs, err := l.generator().cashflows(model)
	if err != nil {
		return 0, err
	}
	return pvOfCashflows(model, cfs)
}

// DetailedSchedule exposes the full per-period amortization table.
func (l IntegratedGermanFixedRateMortgageLoan) DetailedSchedule(s *market.Scenario) ([]MortgagePeriod, error) {
	model, err := requireModel(s, "IntegratedGermanFixedRateMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.generator().Schedule(model)
}

var _ Product = IntegratedGermanFixedRateMortgageLoan{}
var _ Facer = IntegratedGermanFixedRateMortgageLoan{}
