package engine

import (
	"fmt"

	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

// BumpSizes sets the shock sizes for bump-and-revalue sensitivities. Rate
// and hazard bumps are in basis points, the FX bump is a relative fraction.
type BumpSizes struct {
	RateBps   float64
	HazardBps float64
	FXPct     float64
}

// DefaultBumpSizes is 1bp on rates and hazard, 1% on FX.
func DefaultBumpSizes() BumpSizes {
	return BumpSizes{RateBps: 1.0, HazardBps: 1.0, FXPct: 0.01}
}

// SensitivityResult holds per-product and portfolio first-order
// sensitivities, keyed by metric name (DV01, DV01_foreign, DV01_forward,
// CS01, FX_DELTA_1PCT). Product labels follow the "%03d_Name" convention.
type SensitivityResult struct {
	ProductSensitivities   map[string]map[string]float64
	PortfolioSensitivities map[string]float64
}

// SensitivityEngine computes bump-and-revalue sensitivities against the
// curve slots present in a base scenario.
type SensitivityEngine struct {
	products []product.Product
}

// NewSensitivityEngine wraps a portfolio for sensitivity runs.
func NewSensitivityEngine(products []product.Product) *SensitivityEngine {
	return &SensitivityEngine{products: append([]product.Product(nil), products...)}
}

type bumpedScenario struct {
	metric   string
	bumpSize float64
	scenario market.Scenario
}

// Compute revalues the portfolio once per present curve slot. DV01 metrics
// require the rate slot to hold a *market.ZeroCurve; the forward slot also
// accepts *market.ForwardCurve. Each sensitivity is (bumped - base) / bump,
// and the portfolio figure is the exact sum of the per-product figures.
func (e *SensitivityEngine) Compute(base *market.Scenario, bumps BumpSizes) (*SensitivityResult, error) {
	if base == nil {
		return nil, fmt.Errorf("Compute: base scenario is required")
	}
	basePVs, err := e.productPVs(base)
	if err != nil {
		return nil, err
	}

	var shocked []bumpedScenario
	if curve, ok := base.Model.(*market.ZeroCurve); ok {
		s := *base
		s.Model = curve.Shifted(bumps.RateBps / 10000.0)
		shocked = append(shocked, bumpedScenario{metric: "DV01", bumpSize: bumps.RateBps, scenario: s})
	}
	if curve, ok := base.ForeignModel.(*market.ZeroCurve); ok {
		s := *base
		s.ForeignModel = curve.Shifted(bumps.RateBps / 10000.0)
		shocked = append(shocked, bumpedScenario{metric: "DV01_foreign", bumpSize: bumps.RateBps, scenario: s})
	}
	switch fwd := base.ForwardModel.(type) {
	case *market.ZeroCurve:
		s := *base
		s.ForwardModel = fwd.Shifted(bumps.RateBps / 10000.0)
		shocked = append(shocked, bumpedScenario{metric: "DV01_forward", bumpSize: bumps.RateBps, scenario: s})
	case *market.ForwardCurve:
		s := *base
		s.ForwardModel = fwd.Shifted(bumps.RateBps / 10000.0)
		shocked = append(shocked, bumpedScenario{metric: "DV01_forward", bumpSize: bumps.RateBps, scenario: s})
	}
	if base.HazardCurve != nil {
		s := *base
		s.HazardCurve = base.HazardCurve.Shifted(bumps.HazardBps / 10000.0)
		shocked = append(shocked, bumpedScenario{metric: "CS01", bumpSize: bumps.HazardBps, scenario: s})
	}
	if base.FXCurve != nil {
		s := *base
		s.FXCurve = base.FXCurve.Scaled(bumps.FXPct)
		shocked = append(shocked, bumpedScenario{metric: "FX_DELTA_1PCT", bumpSize: bumps.FXPct, scenario: s})
	}

	result := &SensitivityResult{
		ProductSensitivities:   make(map[string]map[string]float64, len(basePVs)),
		PortfolioSensitivities: make(map[string]float64, len(shocked)),
	}
	for label := range basePVs {
		result.ProductSensitivities[label] = make(map[string]float64, len(shocked))
	}

	for _, b := range shocked {
		shockedPVs, err := e.productPVs(&b.scenario)
		if err != nil {
			return nil, fmt.Errorf("Compute: %s: %w", b.metric, err)
		}
		total := 0.0
		for idx, p := range e.products {
			label := productLabel(idx, p)
			normalized := 0.0
			if b.bumpSize != 0 {
				normalized = (shockedPVs[label] - basePVs[label]) / b.bumpSize
			}
			result.ProductSensitivities[label][b.metric] = normalized
			total += normalized
		}
		result.PortfolioSensitivities[b.metric] = total
	}
	return result, nil
}

func (e *SensitivityEngine) productPVs(s *market.Scenario) (map[string]float64, error) {
	out := make(map[string]float64, len(e.products))
	for idx, p := range e.products {
		pv, err := p.PresentValue(s)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", productLabel(idx, p), err)
		}
		out[productLabel(idx, p)] = pv
	}
	return out, nil
}

func productLabel(idx int, p product.Product) string {
	return fmt.Sprintf("%03d_%s", idx, p.Name())
}
