// Package product implements the instrument catalog priced by the valuation
// engine: bonds, mortgages, swaps, FX products, options, and credit.
//
// Products are immutable value types. Pricing is pure: the same product and
// scenario always yield the same cashflows and present value.
package product

import (
	"errors"
	"fmt"

	"github.com/meenmo/riskval/market"
)

// Scenario slot errors, raised before any pricing work.
var (
	ErrMissingModel        = errors.New("scenario model is required")
	ErrMissingForeignModel = errors.New("scenario foreign model is required")
	ErrMissingFXCurve      = errors.New("scenario fx curve is required")
	ErrMissingHazardCurve  = errors.New("scenario hazard curve is required")
)

// ErrNoBracket reports a root-finding bracket failure in OAS/yield solvers.
var ErrNoBracket = errors.New("unable to bracket root")

// Cashflow is a single dated amount, time in years from the valuation date.
type Cashflow struct {
	Time   float64
	Amount float64
}

// Product is the common pricing interface for all instruments.
type Product interface {
	Name() string
	// Cashflows returns the expected future cashflows under a scenario.
	Cashflows(s *market.Scenario) ([]Cashflow, error)
	// PresentValue returns the scenario PV in domestic currency.
	PresentValue(s *market.Scenario) (float64, error)
}

// Facer is implemented by products with a face amount, enabling price-percent
// reporting in valuation breakdowns.
type Facer interface {
	Face() float64
}

// Breakdown is the dirty/clean decomposition of a product PV. Price percents
// are populated only for products exposing a face amount.
type Breakdown struct {
	DirtyPV         float64
	CleanPV         float64
	AccruedInterest float64
	DirtyPricePct   float64
	CleanPricePct   float64
}

// ValuationBreakdown computes the dirty/clean PV split for any product.
func ValuationBreakdown(p Product, s *market.Scenario, accruedInterest float64) (Breakdown, error) {
	dirty, err := p.PresentValue(s)
	if err != nil {
		return Breakdown{}, fmt.Errorf("ValuationBreakdown: %w", err)
	}
	b := Breakdown{
		DirtyPV:         dirty,
		CleanPV:         dirty - accruedInterest,
		AccruedInterest: accruedInterest,
	}
	if f, ok := p.(Facer); ok && f.Face() > 0 {
		b.DirtyPricePct = 100.0 * b.DirtyPV / f.Face()
		b.CleanPricePct = 100.0 * b.CleanPV / f.Face()
	}
	return b, nil
}

// ---- scenario slot checks ----

func requireModel(s *market.Scenario, name string) (market.RateModel, error) {
	if s == nil || s.Model == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingModel)
	}
	return s.Model, nil
}

func requireForeignModel(s *market.Scenario, name string) (market.RateModel, error) {
	if s == nil || s.ForeignModel == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingForeignModel)
	}
	return s.ForeignModel, nil
}

func requireFXCurve(s *market.Scenario, name string) (*market.FXCurve, error) {
	if s == nil || s.FXCurve == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingFXCurve)
	}
	return s.FXCurve, nil
}

func requireHazardCurve(s *market.Scenario, name string) (*market.HazardCurve, error) {
	if s == nil || s.HazardCurve == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingHazardCurve)
	}
	return s.HazardCurve, nil
}

// pvOfCashflows discounts each cashflow on the given model and sums.
func pvOfCashflows(model market.RateModel, cfs []Cashflow) (float64, error) {
	pv := 0.0
	for _, cf := range cfs {
		df, err := model.DiscountFactor(cf.Time)
		if err != nil {
			return 0, err
		}
		pv += cf.Amount * df
	}
	return pv, nil
}

// ---- solver constants shared by OAS and yield bisection ----

const (
	solverMaxIter   = 200
	solverTol       = 1e-10
	solverBracketHi = 5.0
	solverExpand    = 1.5
)

// bisect finds a root of f on [lo, hi], expanding hi geometrically until the
// interval brackets a sign change. On iteration exhaustion the current
// midpoint is returned.
func bisect(f func(float64) (float64, error), lo, hi float64, name string) (float64, error) {
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	for flo*fhi > 0 && hi < solverBracketHi {
		hi *= solverExpand
		if fhi, err = f(hi); err != nil {
			return 0, err
		}
	}
	if flo*fhi > 0 {
		return 0, fmt.Errorf("%s: %w on [%g, %g]", name, ErrNoBracket, lo, hi)
	}

	for i := 0; i < solverMaxIter; i++ {
		mid := 0.5 * (lo + hi)
		fm, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fm < solverTol && fm > -solverTol {
			return mid, nil
		}
		if flo*fm <= 0 {
			hi = mid
		} else {
			lo, flo = mid, fm
		}
	}
	return 0.5 * (lo + hi), nil
}
