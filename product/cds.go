package product

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// CDSLegs is the premium/protection decomposition of a CDS position.
type CDSLegs struct {
	PremiumLegPV    float64
	ProtectionLegPV float64

	PremiumCashflows    []Cashflow
	ProtectionCashflows []Cashflow
	NetCashflows        []Cashflow
}

// CreditDefaultSwap is a running-spread CDS on deterministic hazard and
// discount curves. Expected premium and protection amounts are computed per
// period from survival probabilities.
type CreditDefaultSwap struct {
	Notional         float64
	SpreadBps        float64
	MaturityYears    float64
	PaymentFrequency int
	RecoveryRate     float64
	ProtectionBuyer  bool
}

func (c CreditDefaultSwap) Name() string { return "CreditDefaultSwap" }

func (c CreditDefaultSwap) Cashflows(s *market.Scenario) ([]Cashflow, error) {
	legs, err := c.LegPresentValues(s)
	if err != nil {
		return nil, err
	}
	return legs.NetCashflows, nil
}

// PresentValue is protection minus premium from the buyer's perspective; the
// per-leg signs already carry the position direction.
func (c CreditDefaultSwap) PresentValue(s *market.Scenario) (float64, error) {
	legs, err := c.LegPresentValues(s)
	if err != nil {
		return 0, err
	}
	return legs.ProtectionLegPV - legs.PremiumLegPV, nil
}

// LegPresentValues computes both legs and their expected cashflows in one
// pass over the payment grid.
func (c CreditDefaultSwap) LegPresentValues(s *market.Scenario) (CDSLegs, error) {
	model, err := requireModel(s, "CreditDefaultSwap")
	if err != nil {
		return CDSLegs{}, err
	}
	hazard, err := requireHazardCurve(s, "CreditDefaultSwap")
	if err != nil {
		return CDSLegs{}, err
	}
	if c.Notional <= 0 || c.MaturityYears <= 0 {
		return CDSLegs{}, fmt.Errorf("CreditDefaultSwap: notional and maturity must be positive")
	}
	if c.PaymentFrequency <= 0 {
		return CDSLegs{}, fmt.Errorf("CreditDefaultSwap: payment frequency must be positive, got %d", c.PaymentFrequency)
	}
	n := int(math.Round(c.MaturityYears * float64(c.PaymentFrequency)))
	if n <= 0 {
		return CDSLegs{}, fmt.Errorf("CreditDefaultSwap: maturity and frequency imply zero periods")
	}

	dt := 1.0 / float64(c.PaymentFrequency)
	sign := 1.0
	if !c.ProtectionBuyer {
		sign = -1.0
	}
	spread := c.SpreadBps / 10000.0

	legs := CDSLegs{
		PremiumCashflows:    make([]Cashflow, 0, n),
		ProtectionCashflows: make([]Cashflow, 0, n),
		NetCashflows:        make([]Cashflow, 0, n),
	}
	for i := 1; i <= n; i++ {
		t := float64(i) * dt
		survival, err := hazard.SurvivalProbability(t)
		if err != nil {
			return CDSLegs{}, err
		}
		prevSurvival, err := hazard.SurvivalProbability(t - dt)
		if err != nil {
			return CDSLegs{}, err
		}
		defaultProb := math.Max(0.0, prevSurvival-survival)

		premium := sign * c.Notional * spread * dt * survival
		protection := sign * c.Notional * (1.0 - c.RecoveryRate) * defaultProb
		df, err := model.DiscountFactor(t)
		if err != nil {
			return CDSLegs{}, err
		}
		legs.PremiumLegPV += premium * df
		legs.ProtectionLegPV += protection * df

		legs.PremiumCashflows = append(legs.PremiumCashflows, Cashflow{Time: t, Amount: premium})
		legs.ProtectionCashflows = append(legs.ProtectionCashflows, Cashflow{Time: t, Amount: protection})
		legs.NetCashflows = append(legs.NetCashflows, Cashflow{Time: t, Amount: protection - premium})
	}
	return legs, nil
}

var _ Product = CreditDefaultSwap{}
