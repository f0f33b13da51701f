package product_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/riskval/product"
)

func newMortgageConfig() product.MortgageConfig {
	return product.MortgageConfig{
		Notional:         200_000,
		FixedRate:        0.035,
		MaturityYears:    10,
		RepaymentType:    product.RepayAnnuity,
		PaymentFrequency: product.FreqMonthly,
		DayCount:         "30/360",
		StartMonth:       1,
	}
}

func TestMortgageConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, newMortgageConfig().Validate())

	cfg := newMortgageConfig()
	cfg.Notional = 0
	require.Error(t, cfg.Validate())

	cfg = newMortgageConfig()
	cfg.MaturityYears = -1
	require.Error(t, cfg.Validate())

	cfg = newMortgageConfig()
	cfg.PaymentFrequency = "weekly"
	require.Error(t, cfg.Validate())

	cfg = newMortgageConfig()
	cfg.StartMonth = 13
	require.Error(t, cfg.Validate())

	cfg = newMortgageConfig()
	cfg.DayCount = "ACT/ACT"
	require.Error(t, cfg.Validate())
}

func TestConstantRepaymentScheduleIsFlatInPrincipal(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.02)
	cfg := newMortgageConfig()
	cfg.RepaymentType = product.RepayConstantRepayment
	gen := product.MortgageScheduleGenerator{Config: cfg}

	rows, err := gen.Schedule(s.Model)
	require.NoError(t, err)
	require.Len(t, rows, 120)

	principal := make([]float64, len(rows))
	for i, row := range rows {
		principal[i] = row.ScheduledPrincipal
	}
	assert.Less(t, stat.StdDev(principal, nil), 1e-2)
	assert.InDelta(t, 0.0, rows[len(rows)-1].EndBalance, 1e-6)
}

func TestAnnuityPaymentIsConstant(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.02)
	cfg := newMortgageConfig()
	cfg.InterestOnlyYears = 2
	gen := product.MortgageScheduleGenerator{Config: cfg}

	rows, err := gen.Schedule(s.Model)
	require.NoError(t, err)

	var first float64
	for _, row := range rows {
		if row.T0 < cfg.InterestOnlyYears {
			assert.Zero(t, row.ScheduledPrincipal, "interest-only phase repays no principal")
			continue
		}
		total := row.InterestCashflow + row.ScheduledPrincipal
		if first == 0 {
			first = total
			continue
		}
		assert.InDelta(t, first, total, 1e-6, "annuity instalments stay level")
	}
	assert.InDelta(t, 0.0, rows[len(rows)-1].EndBalance, 1e-6)
}

func TestBehaviouralCPRBoundsAndSeasonality(t *testing.T) {
	t.Parallel()

	model := product.NewBehaviouralPrepaymentModel()

	// A huge refinance incentive pushes the CPR into the cap.
	cpr, err := model.AnnualCPR(0.08, 0.005, 9, 10, 12)
	require.NoError(t, err)
	assert.InDelta(t, model.MaxCPR, cpr, 1e-12)

	// No incentive, new loan, neutral month stays near the base.
	cpr, err = model.AnnualCPR(0.02, 0.03, 0, 10, 3)
	require.NoError(t, err)
	assert.InDelta(t, model.BaseCPR, cpr, 1e-12)

	// December carries the heaviest seasonal uplift.
	marCPR, err := model.AnnualCPR(0.02, 0.03, 0, 10, 3)
	require.NoError(t, err)
	decCPR, err := model.AnnualCPR(0.02, 0.03, 0, 10, 12)
	require.NoError(t, err)
	assert.Greater(t, decCPR, marCPR)

	_, err = model.AnnualCPR(0.02, 0.03, 0, 10, 0)
	require.Error(t, err)
	_, err = model.AnnualCPR(0.02, 0.03, 0, 10, 13)
	require.Error(t, err)
	_, err = model.AnnualCPR(0.02, 0.03, 0, 0, 6)
	require.Error(t, err)
}

func TestGermanLoanMatchesIntegratedLoan(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.02)
	behavioural := product.NewBehaviouralPrepaymentModel()

	german := product.GermanFixedRateMortgageLoan{
		Notional: 200_000, FixedRate: 0.035, MaturityYears: 10,
		RepaymentType: product.RepayAnnuity, PaymentFrequency: product.FreqMonthly,
		DayCount: "30/360", Prepayment: behavioural, StartMonth: 4,
	}
	integrated := product.IntegratedGermanFixedRateMortgageLoan{
		Notional: 200_000, FixedRate: 0.035, MaturityYears: 10,
		RepaymentType: product.RepayAnnuity, PaymentFrequency: product.FreqMonthly,
		DayCount: "30/360", Prepayment: behavioural, StartMonth: 4,
	}

	pvGerman, err := german.PresentValue(s)
	require.NoError(t, err)
	pvIntegrated, err := integrated.PresentValue(s)
	require.NoError(t, err)
	assert.Equal(t, pvGerman, pvIntegrated)
}

func TestPrepaymentShortensSchedule(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.02)
	cfg := newMortgageConfig()

	noPrepay := product.IntegratedMortgageLoan{Generator: product.MortgageScheduleGenerator{Config: cfg}}
	withPrepay := product.IntegratedMortgageLoan{Generator: product.MortgageScheduleGenerator{
		Config:     cfg,
		Prepayment: product.ConstantCPRPrepayment{CPR: 0.15},
	}}

	base, err := noPrepay.DetailedSchedule(s)
	require.NoError(t, err)
	fast, err := withPrepay.DetailedSchedule(s)
	require.NoError(t, err)

	// Prepayments drain the balance faster at every point of the schedule.
	require.GreaterOrEqual(t, len(base), len(fast))
	assert.Less(t, fast[11].EndBalance, base[11].EndBalance)

	// Total principal returned equals the notional either way.
	sumPrincipal := func(rows []product.MortgagePeriod) float64 {
		total := 0.0
		for _, row := range rows {
			total += row.TotalCashflow - row.InterestCashflow
		}
		return total
	}
	assert.InDelta(t, cfg.Notional, sumPrincipal(base), 1e-6)
	assert.InDelta(t, cfg.Notional, sumPrincipal(fast), 1e-6)
}

func TestInterestOnlyThenAmortizing(t *testing.T) {
	t.Parallel()

	s := flatScenario(t, 0.02)
	cfg := newMortgageConfig()
	cfg.RepaymentType = product.RepayInterestOnlyThenAmortizing
	cfg.InterestOnlyYears = 3
	gen := product.MortgageScheduleGenerator{Config: cfg}

	rows, err := gen.Schedule(s.Model)
	require.NoError(t, err)
	for _, row := range rows {
		if row.T0 < cfg.InterestOnlyYears {
			assert.Zero(t, row.ScheduledPrincipal)
		} else {
			assert.Greater(t, row.ScheduledPrincipal, 0.0)
		}
	}
	assert.InDelta(t, math.Abs(rows[len(rows)-1].EndBalance), 0.0, 1e-6)
}
