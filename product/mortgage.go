package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// Mortgage repayment and payment-frequency vocabulary.
const (
	RepayAnnuity                    = "annuity"
	RepayConstantRepayment          = "constant_repayment"
	RepayInterestOnlyThenAmortizing = "interest_only_then_amortizing"
)

func monthsPerPeriod(paymentFrequency string) (int, error) {
	switch paymentFrequency {
	case FreqMonthly:
		return 1, nil
	case FreqQuarterly:
		return 3, nil
	case FreqAnnual:
		return 12, nil
	default:
		return 0, fmt.Errorf("payment frequency must be one of: monthly, quarterly, annual, got %q", paymentFrequency)
	}
}

// defaultSeasonality is the monthly multiplier profile applied by the
// behavioural prepayment model, January first.
var defaultSeasonality = [12]float64{1.10, 1.10, 1.00, 0.98, 0.98, 1.00, 1.02, 1.02, 1.00, 1.00, 1.08, 1.12}

// BehaviouralPrepaymentModel combines refinance incentive, loan age, and
// seasonality into an annual CPR, clipped to [MinCPR, MaxCPR].
type BehaviouralPrepaymentModel struct {
	BaseCPR            float64
	IncentiveWeight    float64
	AgeWeight          float64
	SeasonalityWeight  float64
	IncentiveSlope     float64
	AgeSlope           float64
	SeasonalityFactors [12]float64
	MinCPR             float64
	MaxCPR             float64
}

// NewBehaviouralPrepaymentModel returns the standard parameterization.
func NewBehaviouralPrepaymentModel() *BehaviouralPrepaymentModel {
	return &BehaviouralPrepaymentModel{
		BaseCPR:            0.01,
		IncentiveWeight:    0.6,
		AgeWeight:          0.25,
		SeasonalityWeight:  0.15,
		IncentiveSlope:     12.0,
		AgeSlope:           1.0,
		SeasonalityFactors: defaultSeasonality,
		MinCPR:             0.0,
		MaxCPR:             0.30,
	}
}

// AnnualCPR evaluates the behavioural CPR for one period.
func (m *BehaviouralPrepaymentModel) AnnualCPR(fixedRate, refinanceRate, ageYears, maturityYears float64, monthIndex int) (float64, error) {
	if maturityYears <= 0 {
		return 0, fmt.Errorf("BehaviouralPrepaymentModel: maturity must be positive, got %g", maturityYears)
	}
	if monthIndex < 1 || monthIndex > 12 {
		return 0, fmt.Errorf("BehaviouralPrepaymentModel: month index must be in [1, 12], got %d", monthIndex)
	}
	if m.MinCPR < 0 || m.MaxCPR <= m.MinCPR {
		return 0, fmt.Errorf("BehaviouralPrepaymentModel: invalid CPR bounds [%g, %g]", m.MinCPR, m.MaxCPR)
	}

	incentive := math.Max(0.0, fixedRate-refinanceRate)
	incentiveComponent := 1.0 - math.Exp(-m.IncentiveSlope*incentive)
	ageComponent := math.Min(1.0, math.Max(0.0, m.AgeSlope*ageYears/maturityYears))
	seasonalityComponent := math.Max(0.0, m.SeasonalityFactors[monthIndex-1]-1.0)

	combined := m.BaseCPR +
		m.IncentiveWeight*incentiveComponent +
		m.AgeWeight*ageComponent +
		m.SeasonalityWeight*seasonalityComponent
	return math.Min(m.MaxCPR, math.Max(m.MinCPR, combined)), nil
}

// GermanFixedRateMortgageLoan is a fixed-rate mortgage with annuity,
// constant-repayment, or interest-only-then-amortizing schedules and
// optional behavioural prepayments.
type GermanFixedRateMortgageLoan struct {
	Notional          float64
	FixedRate         float64
	MaturityYears     float64
	RepaymentType     string
	PaymentFrequency  string
	InterestOnlyYears float64
	DayCount          string
	Prepayment        *BehaviouralPrepaymentModel
	StartMonth        int
}

func (l GermanFixedRateMortgageLoan) Name() string { return "GermanFixedRateMortgageLoan" }

func (l GermanFixedRateMortgageLoan) Face() float64 { return l.Notional }

func (l GermanFixedRateMortgageLoan) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	model, err := requireModel(s, "GermanFixedRateMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.generator().cashflows(model)
}

func (l GermanFixedRateMortgageLoan) PresentValue(s *market.Scenario) (float64, error) {
	model, err := requireModel(s, "GermanFixedRateMortgageLoan")
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
func (l GermanFixedRateMortgageLoan) DetailedSchedule(s *market.Scenario) ([]MortgagePeriod, error) {
	model, err := requireModel(s, "GermanFixedRateMortgageLoan")
	if err != nil {
		return nil, err
	}
	return l.generator().Schedule(model)
}

func (l GermanFixedRateMortgageLoan) generator() MortgageScheduleGenerator {
	var prepay PrepaymentModel
	if l.Prepayment != nil {
		prepay = l.Prepayment
	}
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
		Prepayment: prepay,
	}
}

var _ Product = GermanFixedRateMortgageLoan{}
var _ Facer = GermanFixedRateMortgageLoan{}
