package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Bootstrap calibration errors.
var (
	ErrUnsupportedInterpolation = errors.New("interpolation must be one of: linear_zero, log_df")
	ErrMissingGridPoint         = errors.New("missing earlier discount factor on swap payment grid")
	ErrNonPositiveDF            = errors.New("bootstrapped discount factor is non-positive")
)

// DepositQuote is a simple-interest money-market quote.
type DepositQuote struct {
	TenorYears float64
	SimpleRate float64
}

// SwapQuote is a par swap quote with an annual fixed-payment count.
type SwapQuote struct {
	MaturityYears  float64
	ParRate        float64
	FixedFrequency int
}

// Diagnostics summarizes the post-hoc quality of a bootstrapped curve.
type Diagnostics struct {
	MonotonicDiscountFactors bool
	NonNegativeForwards      bool
	MaxAbsFitError           float64
}

// BootstrapZeroCurve builds a zero curve from deposit and par-swap quotes.
//
// Deposits map directly to DF(T) = 1/(1 + r*T). Swaps are stripped in
// maturity order from the par identity 1 - DF(T) = K * sum_i alpha_i DF(t_i),
// which requires every earlier payment-grid discount factor to already be
// known. Swap maturities must therefore align to the fixed-payment grid of
// the quotes preceding them. Node rates are -ln(DF)/T at quoted tenors only;
// the interpolation label is a policy tag, validated but not yet branching.
func BootstrapZeroCurve(deposits []DepositQuote, swaps []SwapQuote, interpolation string) (*ZeroCurve, Diagnostics, error) {
	if interpolation != "linear_zero" && interpolation != "log_df" {
		return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: %w, got %q", ErrUnsupportedInterpolation, interpolation)
	}
	if len(deposits) == 0 && len(swaps) == 0 {
		return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: at least one deposit or swap quote is required")
	}

	dep := append([]DepositQuote(nil), deposits...)
	sort.Slice(dep, func(i, j int) bool { return dep[i].TenorYears < dep[j].TenorYears })
	sw := append([]SwapQuote(nil), swaps...)
	sort.Slice(sw, func(i, j int) bool { return sw[i].MaturityYears < sw[j].MaturityYears })

	dfs := make(map[float64]float64)

	for _, d := range dep {
		if d.TenorYears <= 0 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: deposit tenor must be positive, got %g", d.TenorYears)
		}
		if d.SimpleRate < -0.99 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: deposit simple rate %g is unrealistically low", d.SimpleRate)
		}
		dfs[d.TenorYears] = 1.0 / (1.0 + d.SimpleRate*d.TenorYears)
	}

	for _, s := range sw {
		if s.MaturityYears <= 0 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: swap maturity must be positive, got %g", s.MaturityYears)
		}
		if s.FixedFrequency <= 0 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: fixed frequency must be positive, got %d", s.FixedFrequency)
		}

		dt := 1.0 / float64(s.FixedFrequency)
		n := int(math.Round(s.MaturityYears * float64(s.FixedFrequency)))
		if n <= 0 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: invalid maturity/frequency combination %g/%d", s.MaturityYears, s.FixedFrequency)
		}

		knownLeg := 0.0
		for i := 1; i < n; i++ {
			t := float64(i) * dt
			df, ok := dfs[t]
			if !ok {
				return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: %w at t=%g for swap maturity %g", ErrMissingGridPoint, t, s.MaturityYears)
			}
			knownLeg += dt * df
		}

		dfT := (1.0 - s.ParRate*knownLeg) / (1.0 + s.ParRate*dt)
		if dfT <= 0 {
			return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: %w at maturity %g; inconsistent market quotes", ErrNonPositiveDF, s.MaturityYears)
		}
		dfs[s.MaturityYears] = dfT
	}

	tenors := make([]float64, 0, len(dfs))
	for t := range dfs {
		tenors = append(tenors, t)
	}
	sort.Float64s(tenors)
	zeroRates := make([]float64, len(tenors))
	for i, t := range tenors {
		zeroRates[i] = -math.Log(math.Max(dfs[t], 1e-16)) / math.Max(t, 1e-16)
	}

	curve, err := NewZeroCurve(tenors, zeroRates)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: %w", err)
	}
	diag, err := diagnose(curve, dep, sw)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("BootstrapZeroCurve: %w", err)
	}
	return curve, diag, nil
}

// diagnose reprices every input quote against the calibrated curve.
func diagnose(curve *ZeroCurve, deposits []DepositQuote, swaps []SwapQuote) (Diagnostics, error) {
	tenors := curve.Tenors()

	monotonic := true
	prev := math.Inf(1)
	for _, t := range tenors {
		df, err := curve.DiscountFactor(t)
		if err != nil {
			return Diagnostics{}, err
		}
		if df-prev > 1e-12 {
			monotonic = false
		}
		prev = df
	}

	nonNegForwards := true
	for i := 1; i < len(tenors); i++ {
		fwd, err := curve.ForwardRate(tenors[i-1], tenors[i])
		if err != nil {
			return Diagnostics{}, err
		}
		if fwd < -1e-10 {
			nonNegForwards = false
		}
	}

	maxErr := 0.0
	for _, d := range deposits {
		modelDF, err := curve.DiscountFactor(d.TenorYears)
		if err != nil {
			return Diagnostics{}, err
		}
		mktDF := 1.0 / (1.0 + d.SimpleRate*d.TenorYears)
		if e := math.Abs(modelDF - mktDF); e > maxErr {
			maxErr = e
		}
	}
	for _, s := range swaps {
		dt := 1.0 / float64(s.FixedFrequency)
		n := int(math.Round(s.MaturityYears * float64(s.FixedFrequency)))
		annuity := 0.0
		for i := 1; i <= n; i++ {
			df, err := curve.DiscountFactor(float64(i) * dt)
			if err != nil {
				return Diagnostics{}, err
			}
			annuity += dt * df
		}
		if annuity <= 0 {
			continue
		}
		dfT, err := curve.DiscountFactor(s.MaturityYears)
		if err != nil {
			return Diagnostics{}, err
		}
		modelPar := (1.0 - dfT) / annuity
		if e := math.Abs(modelPar - s.ParRate); e > maxErr {
			maxErr = e
		}
	}

	return Diagnostics{
		MonotonicDiscountFactors: monotonic,
		NonNegativeForwards:      nonNegForwards,
		MaxAbsFitError:           maxErr,
	}, nil
}
