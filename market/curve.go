package market

import (
	"fmt"
	"math"
)

// ZeroCurve is a piecewise-linear zero curve with continuous compounding.
//
// Interpolation is linear in the zero rate between bracketing tenors, with
// constant extrapolation below the first and above the last tenor. The same
// policy applies to every tenor-gridded curve in this package; only the
// interpolated quantity differs.
type ZeroCurve struct {
	tenors    []float64
	zeroRates []float64
}

// NewZeroCurve validates the tenor grid and returns an immutable curve.
func NewZeroCurve(tenors, zeroRates []float64) (*ZeroCurve, error) {
	if err := validateTenorGrid(tenors, zeroRates, "zero_rates"); err != nil {
		return nil, fmt.Errorf("NewZeroCurve: %w", err)
	}
	return &ZeroCurve{
		tenors:    append([]float64(nil), tenors...),
		zeroRates: append([]float64(nil), zeroRates...),
	}, nil
}

// validateTenorGrid enforces the shared curve invariant: at least two points,
// equal lengths, strictly increasing positive tenors.
func validateTenorGrid(tenors, values []float64, what string) error {
	if len(tenors) != len(values) {
		return fmt.Errorf("tenors and %s must have equal length, got %d and %d", what, len(tenors), len(values))
	}
	if len(tenors) < 2 {
		return fmt.Errorf("curve must contain at least two tenor points, got %d", len(tenors))
	}
	if tenors[0] <= 0 {
		return fmt.Errorf("tenors must be positive, got %g", tenors[0])
	}
	for i := 1; i < len(tenors); i++ {
		if tenors[i] <= tenors[i-1] {
			return fmt.Errorf("tenors must be strictly increasing, got %g after %g", tenors[i], tenors[i-1])
		}
	}
	return nil
}

// interpolate returns the flat/linear interpolated value at t on a validated
// tenor grid.
func interpolate(t float64, tenors, values []float64) float64 {
	if t <= tenors[0] {
		return values[0]
	}
	last := len(tenors) - 1
	if t >= tenors[last] {
		return values[last]
	}
	// Find the bracketing segment.
	i := 1
	for tenors[i] < t {
		i++
	}
	w := (t - tenors[i-1]) / (tenors[i] - tenors[i-1])
	return values[i-1] + w*(values[i]-values[i-1])
}

// DiscountFactor returns exp(-r(t)*t); 1.0 at t = 0.
func (c *ZeroCurve) DiscountFactor(t float64) (float64, error) {
	if t < 0 {
		return 0, fmt.Errorf("ZeroCurve.DiscountFactor: t must be non-negative, got %g", t)
	}
	r := interpolate(t, c.tenors, c.zeroRates)
	return math.Exp(-r * t), nil
}

// ShortRate returns the interpolated zero rate at t.
func (c *ZeroCurve) ShortRate(t float64) (float64, error) {
	if t < 0 {
		return 0, fmt.Errorf("ZeroCurve.ShortRate: t must be non-negative, got %g", t)
	}
	return interpolate(t, c.tenors, c.zeroRates), nil
}

// ForwardRate returns the simple forward rate over (t0, t1] from the
// discount-factor ratio.
func (c *ZeroCurve) ForwardRate(t0, t1 float64) (float64, error) {
	return forwardRateFromDFs(c, t0, t1)
}

// Tenors returns a copy of the curve's tenor grid.
func (c *ZeroCurve) Tenors() []float64 {
	return append([]float64(nil), c.tenors...)
}

// ZeroRates returns a copy of the curve's zero rates.
func (c *ZeroCurve) ZeroRates() []float64 {
	return append([]float64(nil), c.zeroRates...)
}

// Shifted returns a fresh curve with delta added to every zero rate.
func (c *ZeroCurve) Shifted(delta float64) *ZeroCurve {
	rates := make([]float64, len(c.zeroRates))
	for i, r := range c.zeroRates {
		rates[i] = r + delta
	}
	return &ZeroCurve{tenors: append([]float64(nil), c.tenors...), zeroRates: rates}
}

var _ RateModel = (*ZeroCurve)(nil)
var _ ForwardSource = (*ZeroCurve)(nil)
