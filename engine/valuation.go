package engine

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

// baseScenarioName is the scenario used as the PV anchor for loss measures.
const baseScenarioName = "parallel_shift_+0bps"

// ValuationResult holds per-scenario portfolio PVs. Names preserves the
// scenario evaluation order, which also orders the distribution and CSV/JSON
// exports.
type ValuationResult struct {
	Names        []string
	ScenarioPV   map[string]float64
	Distribution []float64
}

// RiskSummary is the headline risk view at a single confidence level.
type RiskSummary struct {
	PVaR              float64
	ExpectedShortfall float64
	MinPV             float64
	MaxPV             float64
	MeanPV            float64
}

// ValuationEngine values a product collection under scenario sets.
type ValuationEngine struct {
	products []product.Product
	workers  int
}

// EngineOption configures a ValuationEngine.
type EngineOption func(*ValuationEngine)

// WithWorkers enables scenario-parallel valuation with at most n concurrent
// workers. Results merge by scenario index, so totals are identical to the
// serial evaluation order.
func WithWorkers(n int) EngineOption {
	return func(e *ValuationEngine) { e.workers = n }
}

// NewValuationEngine wraps a portfolio for scenario valuation.
func NewValuationEngine(products []product.Product, opts ...EngineOption) *ValuationEngine {
	e := &ValuationEngine{products: append([]product.Product(nil), products...)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Value computes the portfolio PV under each scenario.
func (e *ValuationEngine) Value(scenarios []market.Scenario) (*ValuationResult, error) {
	totals := make([]float64, len(scenarios))
	eval := func(i int) error {
		s := scenarios[i]
		total := 0.0
		for _, p := range e.products {
			pv, err := p.PresentValue(&s)
			if err != nil {
				return fmt.Errorf("Value: scenario %q: %w", s.Name, err)
			}
			total += pv
		}
		totals[i] = total
		return nil
	}
	if err := e.run(len(scenarios), eval); err != nil {
		return nil, err
	}
	return newResult(scenarios, totals), nil
}

// Contributions maps scenario name to per-product PV labeled "%03d_Name".
type Contributions map[string]map[string]float64

// ValueWithContributions also returns per-product PVs per scenario. The
// labeled contributions sum exactly to the scenario total: the total is
// accumulated from the identical per-product terms in the same order.
func (e *ValuationEngine) ValueWithContributions(scenarios []market.Scenario) (*ValuationResult, Contributions, error) {
	totals := make([]float64, len(scenarios))
	perScenario := make([]map[string]float64, len(scenarios))
	eval := func(i int) error {
		s := scenarios[i]
		perProduct := make(map[string]float64, len(e.products))
		total := 0.0
		for idx, p := range e.products {
			pv, err := p.PresentValue(&s)
			if err != nil {
				return fmt.Errorf("ValueWithContributions: scenario %q: %w", s.Name, err)
			}
			perProduct[fmt.Sprintf("%03d_%s", idx, p.Name())] = pv
			total += pv
		}
		totals[i] = total
		perScenario[i] = perProduct
		return nil
	}
	if err := e.run(len(scenarios), eval); err != nil {
		return nil, nil, err
	}

	contributions := make(Contributions, len(scenarios))
	for i, s := range scenarios {
		contributions[s.Name] = perScenario[i]
	}
	return newResult(scenarios, totals), contributions, nil
}

// ValueWithGroupedContributions aggregates the per-product contributions by
// product name, summing positions of the same type.
func (e *ValuationEngine) ValueWithGroupedContributions(scenarios []market.Scenario) (*ValuationResult, Contributions, error) {
	result, contributions, err := e.ValueWithContributions(scenarios)
	if err != nil {
		return nil, nil, err
	}
	grouped := make(Contributions, len(contributions))
	for scenarioName, perProduct := range contributions {
		groups := make(map[string]float64)
		for label, pv := range perProduct {
			// label format: "idx_ProductName"
			name := label
			for j := 0; j < len(label); j++ {
				if label[j] == '_' {
					name = label[j+1:]
					break
				}
			}
			groups[name] += pv
		}
		grouped[scenarioName] = groups
	}
	return result, grouped, nil
}

// run evaluates n indexed jobs, serially or on a bounded errgroup pool.
func (e *ValuationEngine) run(n int, eval func(int) error) error {
	if e.workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := eval(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return eval(i) })
	}
	return g.Wait()
}

func newResult(scenarios []market.Scenario, totals []float64) *ValuationResult {
	names := make([]string, len(scenarios))
	scenarioPV := make(map[string]float64, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
		scenarioPV[s.Name] = totals[i]
	}
	return &ValuationResult{
		Names:        names,
		ScenarioPV:   scenarioPV,
		Distribution: append([]float64(nil), totals...),
	}
}

// basePV anchors loss measures on the unshifted parallel scenario when
// present, else the best-case PV.
func (r *ValuationResult) basePV() float64 {
	if pv, ok := r.ScenarioPV[baseScenarioName]; ok {
		return pv
	}
	return floats.Max(r.Distribution)
}

// PVaR is the present-value-at-risk: base PV minus the (1-confidence) PV
// quantile of the scenario distribution.
func (r *ValuationResult) PVaR(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("PVaR: confidence must be between 0 and 1, got %g", confidence)
	}
	if len(r.Distribution) == 0 {
		return 0, fmt.Errorf("PVaR: empty distribution")
	}
	return r.basePV() - quantile(r.Distribution, 1.0-confidence), nil
}

// ExpectedShortfall is the mean loss at or beyond the loss quantile at the
// given confidence; zero when the tail is empty.
func (r *ValuationResult) ExpectedShortfall(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("ExpectedShortfall: confidence must be between 0 and 1, got %g", confidence)
	}
	if len(r.Distribution) == 0 {
		return 0, fmt.Errorf("ExpectedShortfall: empty distribution")
	}
	base := r.basePV()
	losses := make([]float64, len(r.Distribution))
	for i, pv := range r.Distribution {
		losses[i] = base - pv
	}
	cutoff := quantile(losses, confidence)

	tailSum := 0.0
	tailN := 0
	for _, loss := range losses {
		if loss >= cutoff {
			tailSum += loss
			tailN++
		}
	}
	if tailN == 0 {
		return 0.0, nil
	}
	return tailSum / float64(tailN), nil
}

// Summary reports the headline risk measures at one confidence level.
func (r *ValuationResult) Summary(confidence float64) (RiskSummary, error) {
	pvar, err := r.PVaR(confidence)
	if err != nil {
		return RiskSummary{}, err
	}
	es, err := r.ExpectedShortfall(confidence)
	if err != nil {
		return RiskSummary{}, err
	}
	return RiskSummary{
		PVaR:              pvar,
		ExpectedShortfall: es,
		MinPV:             floats.Min(r.Distribution),
		MaxPV:             floats.Max(r.Distribution),
		MeanPV:            stat.Mean(r.Distribution, nil),
	}, nil
}

// RiskProfile evaluates PVaR and ES per confidence level, keyed "%.4f".
func (r *ValuationResult) RiskProfile(confidences []float64) (map[string]RiskSummary, error) {
	profile := make(map[string]RiskSummary, len(confidences))
	for _, c := range confidences {
		pvar, err := r.PVaR(c)
		if err != nil {
			return nil, err
		}
		es, err := r.ExpectedShortfall(c)
		if err != nil {
			return nil, err
		}
		profile[fmt.Sprintf("%.4f", c)] = RiskSummary{PVaR: pvar, ExpectedShortfall: es}
	}
	return profile, nil
}

// WriteCSV writes "scenario,pv" rows in scenario evaluation order.
func (r *ValuationResult) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "pv"}); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for _, name := range r.Names {
		if err := cw.Write([]string{name, strconv.FormatFloat(r.ScenarioPV[name], 'g', -1, 64)}); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// WriteJSON writes the scenario PVs, the distribution, and PVaR at the given
// confidence.
func (r *ValuationResult) WriteJSON(w io.Writer, confidence float64) error {
	pvar, err := r.PVaR(confidence)
	if err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	out := struct {
		ScenarioPV   map[string]float64 `json:"scenario_pv"`
		Distribution []float64          `json:"portfolio_pv_distribution"`
		PVaR         float64            `json:"pvat_risk"`
		Confidence   float64            `json:"confidence"`
	}{
		ScenarioPV:   r.ScenarioPV,
		Distribution: r.Distribution,
		PVaR:         pvar,
		Confidence:   confidence,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

// quantile is the linear-interpolation quantile on sorted order statistics,
// with q in [0, 1] mapped onto the index range [0, n-1].
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	w := pos - float64(lo)
	return sorted[lo] + w*(sorted[hi]-sorted[lo])
}
