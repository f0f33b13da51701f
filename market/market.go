package market

import (
	"fmt"
	"math"
)

// ForwardCurve is a deterministic forward-rate curve on a tenor grid.
type ForwardCurve struct {
	tenors       []float64
	forwardRates []float64
}

// NewForwardCurve validates the tenor grid and returns an immutable curve.
func NewForwardCurve(tenors, forwardRates []float64) (*ForwardCurve, error) {
	if err := validateTenorGrid(tenors, forwardRates, "forward_rates"); err != nil {
		return nil, fmt.Errorf("NewForwardCurve: %w", err)
	}
	return &ForwardCurve{
		tenors:       append([]float64(nil), tenors...),
		forwardRates: append([]float64(nil), forwardRates...),
	}, nil
}

// ForwardRate returns the quoted forward interpolated at the period start t0.
// t1 only participates in validation: forwards are quoted by fixing time.
func (c *ForwardCurve) ForwardRate(t0, t1 float64) (float64, error) {
	if t0 < 0 {
		return 0, fmt.Errorf("ForwardCurve.ForwardRate: t0 must be non-negative, got %g", t0)
	}
	if t1 <= t0 {
		return 0, fmt.Errorf("ForwardCurve.ForwardRate: require t1 > t0, got t0=%g t1=%g", t0, t1)
	}
	return interpolate(t0, c.tenors, c.forwardRates), nil
}

// Tenors returns a copy of the curve's tenor grid.
func (c *ForwardCurve) Tenors() []float64 {
	return append([]float64(nil), c.tenors...)
}

// ForwardRates returns a copy of the quoted forwards.
func (c *ForwardCurve) ForwardRates() []float64 {
	return append([]float64(nil), c.forwardRates...)
}

// Shifted returns a fresh curve with delta added to every forward.
func (c *ForwardCurve) Shifted(delta float64) *ForwardCurve {
	rates := make([]float64, len(c.forwardRates))
	for i, r := range c.forwardRates {
		rates[i] = r + delta
	}
	return &ForwardCurve{tenors: append([]float64(nil), c.tenors...), forwardRates: rates}
}

var _ ForwardSource = (*ForwardCurve)(nil)

// FXCurve is a deterministic FX forward curve quoted as domestic per unit
// foreign.
type FXCurve struct {
	tenors     []float64
	fxForwards []float64
}

// NewFXCurve validates the tenor grid and returns an immutable curve.
func NewFXCurve(tenors, fxForwards []float64) (*FXCurve, error) {
	if err := validateTenorGrid(tenors, fxForwards, "fx_forwards"); err != nil {
		return nil, fmt.Errorf("NewFXCurve: %w", err)
	}
	return &FXCurve{
		tenors:     append([]float64(nil), tenors...),
		fxForwards: append([]float64(nil), fxForwards...),
	}, nil
}

// Forward returns the FX forward level at t. Times at or before the first
// tenor return the first quote.
func (c *FXCurve) Forward(t float64) float64 {
	return interpolate(t, c.tenors, c.fxForwards)
}

// Tenors returns a copy of the curve's tenor grid.
func (c *FXCurve) Tenors() []float64 {
	return append([]float64(nil), c.tenors...)
}

// Forwards returns a copy of the FX forward levels.
func (c *FXCurve) Forwards() []float64 {
	return append([]float64(nil), c.fxForwards...)
}

// Scaled returns a fresh curve with every level multiplied by (1 + pct).
func (c *FXCurve) Scaled(pct float64) *FXCurve {
	levels := make([]float64, len(c.fxForwards))
	for i, f := range c.fxForwards {
		levels[i] = f * (1.0 + pct)
	}
	return &FXCurve{tenors: append([]float64(nil), c.tenors...), fxForwards: levels}
}

// HazardCurve is a deterministic default-intensity curve.
type HazardCurve struct {
	tenors      []float64
	hazardRates []float64
}

// NewHazardCurve validates the tenor grid and returns an immutable curve.
func NewHazardCurve(tenors, hazardRates []float64) (*HazardCurve, error) {
	if err := validateTenorGrid(tenors, hazardRates, "hazard_rates"); err != nil {
		return nil, fmt.Errorf("NewHazardCurve: %w", err)
	}
	return &HazardCurve{
		tenors:      append([]float64(nil), tenors...),
		hazardRates: append([]float64(nil), hazardRates...),
	}, nil
}

// HazardRate returns the interpolated default intensity at t.
func (c *HazardCurve) HazardRate(t float64) float64 {
	return interpolate(t, c.tenors, c.hazardRates)
}

// SurvivalProbability returns exp(-h(t)*t) using the local hazard at t.
//
// This is a single local-rate approximation, not a piecewise-constant
// integral over [0, t].
func (c *HazardCurve) SurvivalProbability(t float64) (float64, error) {
	if t < 0 {
		return 0, fmt.Errorf("HazardCurve.SurvivalProbability: t must be non-negative, got %g", t)
	}
	if t == 0 {
		return 1.0, nil
	}
	return math.Exp(-c.HazardRate(t) * t), nil
}

// Tenors returns a copy of the curve's tenor grid.
func (c *HazardCurve) Tenors() []float64 {
	return append([]float64(nil), c.tenors...)
}

// HazardRates returns a copy of the hazard rates.
func (c *HazardCurve) HazardRates() []float64 {
	return append([]float64(nil), c.hazardRates...)
}

// Shifted returns a fresh curve with delta added to every hazard rate.
func (c *HazardCurve) Shifted(delta float64) *HazardCurve {
	rates := make([]float64, len(c.hazardRates))
	for i, h := range c.hazardRates {
		rates[i] = h + delta
	}
	return &HazardCurve{tenors: append([]float64(nil), c.tenors...), hazardRates: rates}
}
