// Package engine runs scenario generation, portfolio valuation, sensitivity,
// and CSA discounting over the product catalog.
package engine

import (
	"fmt"
	"math"

	"github.com/meenmo/riskval/market"
)

// ScenarioGenerator produces valuation scenarios for the engine.
type ScenarioGenerator interface {
	Generate() ([]market.Scenario, error)
}

// ParallelShiftGenerator builds one scenario per parallel zero-curve shift.
type ParallelShiftGenerator struct {
	Base      *market.ZeroCurve
	ShiftsBps []float64
}

func (g ParallelShiftGenerator) Generate() ([]market.Scenario, error) {
	if g.Base == nil {
		return nil, fmt.Errorf("ParallelShiftGenerator: base curve is required")
	}
	scenarios := make([]market.Scenario, 0, len(g.ShiftsBps))
	for _, shift := range g.ShiftsBps {
		scenarios = append(scenarios, market.Scenario{
			Name:  fmt.Sprintf("parallel_shift_%+.0fbps", shift),
			Model: g.Base.Shifted(shift / 10000.0),
		})
	}
	return scenarios, nil
}

var _ ScenarioGenerator = ParallelShiftGenerator{}

// DefaultTwistPivotYear is the pivot used when a stress generator leaves
// TwistPivotYear unset.
const DefaultTwistPivotYear = 5.0

// StressScenarioGenerator combines parallel shocks with pivot twists. A twist
// tilts the curve linearly around the pivot tenor, short end down and long
// end up for a positive shock.
type StressScenarioGenerator struct {
	Base              *market.ZeroCurve
	ParallelShiftsBps []float64
	TwistShiftsBps    []float64
	TwistPivotYear    float64
}

func (g StressScenarioGenerator) Generate() ([]market.Scenario, error) {
	if g.Base == nil {
		return nil, fmt.Errorf("StressScenarioGenerator: base curve is required")
	}
	scenarios, err := ParallelShiftGenerator{Base: g.Base, ShiftsBps: g.ParallelShiftsBps}.Generate()
	if err != nil {
		return nil, err
	}
	twists, err := g.twistScenarios()
	if err != nil {
		return nil, err
	}
	return append(scenarios, twists...), nil
}

func (g StressScenarioGenerator) twistScenarios() ([]market.Scenario, error) {
	pivot := g.TwistPivotYear
	if pivot == 0 {
		pivot = DefaultTwistPivotYear
	}
	tenors := g.Base.Tenors()
	zeroRates := g.Base.ZeroRates()

	maxSpan := 1e-8
	for _, t := range tenors {
		if span := math.Abs(t - pivot); span > maxSpan {
			maxSpan = span
		}
	}
	slope := make([]float64, len(tenors))
	for i, t := range tenors {
		s := (t - pivot) / maxSpan
		slope[i] = math.Max(-1.0, math.Min(1.0, s))
	}

	scenarios := make([]market.Scenario, 0, len(g.TwistShiftsBps))
	for _, twist := range g.TwistShiftsBps {
		twistRate := twist / 10000.0
		rates := make([]float64, len(zeroRates))
		for i, r := range zeroRates {
			rates[i] = r + twistRate*slope[i]
		}
		curve, err := market.NewZeroCurve(tenors, rates)
		if err != nil {
			return nil, fmt.Errorf("StressScenarioGenerator: %w", err)
		}
		scenarios = append(scenarios, market.Scenario{
			Name:  fmt.Sprintf("twist_%+.0fbps_pivot_%gy", twist, pivot),
			Model: curve,
		})
	}
	return scenarios, nil
}

var _ ScenarioGenerator = StressScenarioGenerator{}

// HullWhiteMonteCarloGenerator maps simulated terminal short-rate shocks into
// parallel-curve scenarios, one per path.
type HullWhiteMonteCarloGenerator struct {
	Base         *market.ZeroCurve
	Model        *market.HullWhiteModel
	HorizonYears float64
	Steps        int
	Paths        int
	Seed         uint64
}

func (g HullWhiteMonteCarloGenerator) Generate() ([]market.Scenario, error) {
	if g.Base == nil {
		return nil, fmt.Errorf("HullWhiteMonteCarloGenerator: base curve is required")
	}
	if g.Model == nil {
		return nil, fmt.Errorf("HullWhiteMonteCarloGenerator: model is required")
	}
	paths, err := g.Model.SimulatePaths(g.HorizonYears, g.Steps, g.Paths, g.Seed)
	if err != nil {
		return nil, fmt.Errorf("HullWhiteMonteCarloGenerator: %w", err)
	}
	r0, err := g.Model.ShortRate(0)
	if err != nil {
		return nil, fmt.Errorf("HullWhiteMonteCarloGenerator: %w", err)
	}

	scenarios := make([]market.Scenario, 0, len(paths))
	for idx, path := range paths {
		terminal := path[len(path)-1]
		scenarios = append(scenarios, market.Scenario{
			Name:  fmt.Sprintf("hw_mc_path_%04d", idx),
			Model: g.Base.Shifted(terminal - r0),
		})
	}
	return scenarios, nil
}

var _ ScenarioGenerator = HullWhiteMonteCarloGenerator{}
