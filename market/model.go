// Package market holds the rate/curve models, the Hull-White short-rate
// model, and the bootstrap calibration used by the valuation engine.
//
// All times are year fractions from the valuation date; all rates are
// decimals (0.025 == 2.5%). Curves are immutable once constructed: scenario
// generators and bump engines build shifted copies, never mutate a base.
package market

import (
	"fmt"
	"math"
)

// DefaultForwardStep is the finite-difference step for instantaneous
// forward rates.
const DefaultForwardStep = 1e-4

// RateModel provides discounting and rate projection for product pricers.
type RateModel interface {
	// DiscountFactor returns the discount factor from time 0 to t in years.
	// t must be non-negative; DiscountFactor(0) == 1.
	DiscountFactor(t float64) (float64, error)
	// ShortRate returns the instantaneous short rate at time t.
	ShortRate(t float64) (float64, error)
	// ForwardRate returns the simple forward rate over (t0, t1] implied by
	// discount factors.
	ForwardRate(t0, t1 float64) (float64, error)
}

// ForwardSource projects simple period rates for floating coupons.
//
// Satisfied by *ZeroCurve (discount-factor ratio) and *ForwardCurve (quoted
// forwards interpolated at the period start).
type ForwardSource interface {
	ForwardRate(t0, t1 float64) (float64, error)
}

// forwardRateFromDFs is the shared DF-ratio forward used by every RateModel.
func forwardRateFromDFs(m RateModel, t0, t1 float64) (float64, error) {
	if t0 < 0 || t1 <= t0 {
		return 0, fmt.Errorf("ForwardRate: require t0 >= 0 and t1 > t0, got t0=%g t1=%g", t0, t1)
	}
	df0, err := m.DiscountFactor(t0)
	if err != nil {
		return 0, err
	}
	df1, err := m.DiscountFactor(t1)
	if err != nil {
		return 0, err
	}
	if df0 <= 0 || df1 <= 0 {
		return 0, fmt.Errorf("ForwardRate: discount factors must be positive, got DF(%g)=%g DF(%g)=%g", t0, df0, t1, df1)
	}
	return (df0/df1 - 1.0) / (t1 - t0), nil
}

// InstForwardRate approximates the instantaneous forward rate at t from a
// log-discount-factor finite difference with step dt.
func InstForwardRate(m RateModel, t, dt float64) (float64, error) {
	if t < 0 || dt <= 0 {
		return 0, fmt.Errorf("InstForwardRate: require t >= 0 and dt > 0, got t=%g dt=%g", t, dt)
	}
	dfT, err := m.DiscountFactor(t)
	if err != nil {
		return 0, err
	}
	dfTp, err := m.DiscountFactor(t + dt)
	if err != nil {
		return 0, err
	}
	if dfT <= 0 || dfTp <= 0 {
		return 0, fmt.Errorf("InstForwardRate: discount factors must be positive at t=%g", t)
	}
	return (math.Log(dfT) - math.Log(dfTp)) / dt, nil
}
