// Package loader builds curves, portfolios, and CSA inputs from CSV files
// and row maps for the CLI drivers.
package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meenmo/riskval/product"
)

// ErrUnsupportedProductType reports an unknown product_type value.
var ErrUnsupportedProductType = errors.New("unsupported product type")

// Row is one CSV record keyed by header name.
type Row map[string]string

// ParseProduct constructs a product from a row. The product type vocabulary
// mirrors the portfolio CSV format: fixed_bond, callable_bond,
// corporate_bond, german_fixed_rate_mortgage, integrated_mortgage,
// integrated_german_fixed_rate_mortgage, fixed_float_swap, float_float_swap,
// fx_forward, fx_swap, ccs, swaption, cap_floor, cds.
func ParseProduct(row Row, productType string) (product.Product, error) {
	switch productType {
	case "fixed_bond":
		return parseFixedBond(row)
	case "callable_bond":
		return parseCallableBond(row)
	case "corporate_bond":
		return parseCorporateBond(row)
	case "german_fixed_rate_mortgage":
		return parseGermanMortgage(row)
	case "integrated_mortgage":
		return parseIntegratedMortgage(row)
	case "integrated_german_fixed_rate_mortgage":
		return parseIntegratedGermanMortgage(row)
	case "fixed_float_swap":
		return parseFixedFloatSwap(row)
	case "float_float_swap":
		return parseFloatFloatSwap(row)
	case "fx_forward":
		return parseFXForward(row)
	case "fx_swap":
		return parseFXSwap(row)
	case "ccs":
		return parseCCS(row)
	case "swaption":
		return parseSwaption(row)
	case "cap_floor":
		return parseCapFloor(row)
	case "cds":
		return parseCDS(row)
	default:
		return nil, fmt.Errorf("ParseProduct: %w: %q", ErrUnsupportedProductType, productType)
	}
}

func parseFixedBond(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	coupon, err := floatField(row, "coupon_or_fixed_rate")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.FixedRateBond{
		Notional:        notional,
		CouponRate:      coupon,
		MaturityYears:   maturity,
		CouponFrequency: intFieldDefault(row, "fixed_frequency", 1),
	}, nil
}

func parseCallableBond(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	coupon, err := floatField(row, "coupon_or_fixed_rate")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	schedule, err := parseCallSchedule(strField(row, "call_schedule", ""))
	if err != nil {
		return nil, err
	}
	return product.CallableFixedRateBond{
		Notional:            notional,
		CouponRate:          coupon,
		MaturityYears:       maturity,
		CouponFrequency:     intFieldDefault(row, "fixed_frequency", 1),
		CallSchedule:        schedule,
		ShortRateVolatility: floatFieldDefault(row, "volatility", 0.01),
	}, nil
}

// parseCallSchedule decodes "time:price|time:price" pairs.
func parseCallSchedule(raw string) ([]product.CallDate, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	schedule := make([]product.CallDate, 0, len(parts))
	for _, part := range parts {
		tp := strings.SplitN(part, ":", 2)
		if len(tp) != 2 {
			return nil, fmt.Errorf("call_schedule entry %q must be time:price", part)
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(tp[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("call_schedule time %q: %w", tp[0], err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(tp[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("call_schedule price %q: %w", tp[1], err)
		}
		schedule = append(schedule, product.CallDate{TimeYears: t, Price: price})
	}
	return schedule, nil
}

func parseCorporateBond(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	custom, err := pipeFloats(strField(row, "custom_amortization", ""))
	if err != nil {
		return nil, err
	}
	return product.CorporateBond{
		Notional:               notional,
		MaturityYears:          maturity,
		CouponType:             strField(row, "coupon_type", product.CouponFixed),
		FixedRate:              floatFieldDefault(row, "coupon_or_fixed_rate", 0.0),
		Spread:                 floatFieldDefault(row, "spread", 0.0),
		Frequency:              strField(row, "payment_frequency", product.FreqSemiAnnual),
		DayCount:               strField(row, "day_count", "30/360"),
		AmortizationMode:       strField(row, "amortization_mode", product.AmortBullet),
		CustomAmortization:     custom,
		InterestOnlyPeriods:    intFieldDefault(row, "interest_only_periods", 0),
		AnnualCPR:              floatFieldDefault(row, "annual_cpr", 0.0),
		PeriodicPrepaymentRate: optFloatField(row, "periodic_prepayment_rate"),
	}, nil
}

func parseBehaviouralPrepayment(row Row) (*product.BehaviouralPrepaymentModel, error) {
	m := product.NewBehaviouralPrepaymentModel()
	m.BaseCPR = floatFieldDefault(row, "base_cpr", m.BaseCPR)
	m.IncentiveWeight = floatFieldDefault(row, "incentive_weight", m.IncentiveWeight)
	m.AgeWeight = floatFieldDefault(row, "age_weight", m.AgeWeight)
	m.SeasonalityWeight = floatFieldDefault(row, "seasonality_weight", m.SeasonalityWeight)
	m.IncentiveSlope = floatFieldDefault(row, "incentive_slope", m.IncentiveSlope)
	m.AgeSlope = floatFieldDefault(row, "age_slope", m.AgeSlope)
	m.MinCPR = floatFieldDefault(row, "min_cpr", m.MinCPR)
	m.MaxCPR = floatFieldDefault(row, "max_cpr", m.MaxCPR)
	if raw := strField(row, "seasonality_factors", ""); raw != "" {
		factors, err := pipeFloats(raw)
		if err != nil {
			return nil, err
		}
		if len(factors) != 12 {
			return nil, fmt.Errorf("seasonality_factors must contain 12 values, got %d", len(factors))
		}
		copy(m.SeasonalityFactors[:], factors)
	}
	return m, nil
}

func parseGermanMortgage(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	rate, err := floatField(row, "coupon_or_fixed_rate")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	prepay, err := parseBehaviouralPrepayment(row)
	if err != nil {
		return nil, err
	}
	return product.GermanFixedRateMortgageLoan{
		Notional:          notional,
		FixedRate:         rate,
		MaturityYears:     maturity,
		RepaymentType:     strField(row, "repayment_type", product.RepayAnnuity),
		PaymentFrequency:  strField(row, "payment_frequency", product.FreqMonthly),
		InterestOnlyYears: floatFieldDefault(row, "interest_only_years", 0.0),
		DayCount:          strField(row, "day_count", "30/360"),
		Prepayment:        prepay,
		StartMonth:        intFieldDefault(row, "start_month", 1),
	}, nil
}

func parseMortgageConfig(row Row) (product.MortgageConfig, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return product.MortgageConfig{}, err
	}
	rate, err := floatField(row, "coupon_or_fixed_rate")
	if err != nil {
		return product.MortgageConfig{}, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return product.MortgageConfig{}, err
	}
	return product.MortgageConfig{
		Notional:          notional,
		FixedRate:         rate,
		MaturityYears:     maturity,
		RepaymentType:     strField(row, "repayment_type", product.RepayAnnuity),
		PaymentFrequency:  strField(row, "payment_frequency", product.FreqMonthly),
		InterestOnlyYears: floatFieldDefault(row, "interest_only_years", 0.0),
		DayCount:          strField(row, "day_count", "30/360"),
		StartMonth:        intFieldDefault(row, "start_month", 1),
	}, nil
}

func parsePrepaymentModel(row Row) (product.PrepaymentModel, error) {
	if boolField(row, "use_behavioural_prepayment", false) {
		return parseBehaviouralPrepayment(row)
	}
	if cpr := floatFieldDefault(row, "annual_cpr", 0.0); cpr > 0 {
		return product.ConstantCPRPrepayment{CPR: cpr}, nil
	}
	return nil, nil
}

func parseIntegratedMortgage(row Row) (product.Product, error) {
	cfg, err := parseMortgageConfig(row)
	if err != nil {
		return nil, err
	}
	var prepay product.PrepaymentModel
	if boolField(row, "use_behavioural_prepayment", false) {
		prepay, err = parseBehaviouralPrepayment(row)
		if err != nil {
			return nil, err
		}
	} else {
		prepay = product.ConstantCPRPrepayment{CPR: floatFieldDefault(row, "annual_cpr", 0.0)}
	}
	return product.IntegratedMortgageLoan{
		Generator: product.MortgageScheduleGenerator{Config: cfg, Prepayment: prepay},
	}, nil
}

func parseIntegratedGermanMortgage(row Row) (product.Product, error) {
	cfg, err := parseMortgageConfig(row)
	if err != nil {
		return nil, err
	}
	prepay, err := parsePrepaymentModel(row)
	if err != nil {
		return nil, err
	}
	return product.IntegratedGermanFixedRateMortgageLoan{
		Notional:          cfg.Notional,
		FixedRate:         cfg.FixedRate,
		MaturityYears:     cfg.MaturityYears,
		RepaymentType:     cfg.RepaymentType,
		PaymentFrequency:  cfg.PaymentFrequency,
		InterestOnlyYears: cfg.InterestOnlyYears,
		DayCount:          cfg.DayCount,
		Prepayment:        prepay,
		StartMonth:        cfg.StartMonth,
	}, nil
}

func parseFixedFloatSwap(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	rate, err := floatField(row, "coupon_or_fixed_rate")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.FixedFloatSwap{
		Notional:       notional,
		FixedRate:      rate,
		MaturityYears:  maturity,
		FixedFrequency: intFieldDefault(row, "fixed_frequency", 1),
		FloatFrequency: intFieldDefault(row, "float_frequency", 4),
		PayFixed:       boolField(row, "pay_fixed", true),
	}, nil
}

func parseFloatFloatSwap(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.FloatFloatSwap{
		Notional:            notional,
		MaturityYears:       maturity,
		PayLegFrequency:     intFieldDefault(row, "fixed_frequency", 4),
		ReceiveLegFrequency: intFieldDefault(row, "float_frequency", 4),
		PaySpread:           floatFieldDefault(row, "pay_spread", 0.0),
		ReceiveSpread:       floatFieldDefault(row, "receive_spread", 0.0),
		PayLegSign:          intFieldDefault(row, "pay_leg_sign", -1),
	}, nil
}

func parseFXForward(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional_foreign")
	if err != nil {
		return nil, err
	}
	strike, err := floatField(row, "strike")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.FXForward{
		NotionalForeign:           notional,
		Strike:                    strike,
		MaturityYears:             maturity,
		PayForeignReceiveDomestic: boolField(row, "pay_foreign_receive_domestic", true),
	}, nil
}

func parseFXSwap(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional_foreign")
	if err != nil {
		return nil, err
	}
	nearRate, err := floatField(row, "near_rate")
	if err != nil {
		return nil, err
	}
	nearMaturity, err := floatField(row, "near_maturity_years")
	if err != nil {
		return nil, err
	}
	farMaturity, err := floatField(row, "far_maturity_years")
	if err != nil {
		return nil, err
	}
	return product.FXSwap{
		NotionalForeign:           notional,
		NearRate:                  nearRate,
		FarRate:                   optFloatField(row, "far_rate"),
		NearMaturityYears:         nearMaturity,
		FarMaturityYears:          farMaturity,
		PayForeignReceiveDomestic: boolField(row, "pay_foreign_receive_domestic", true),
	}, nil
}

func parseCCS(row Row) (product.Product, error) {
	domesticNotional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	foreignNotional, err := floatField(row, "notional_foreign")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.CrossCurrencySwap{
		DomesticNotional:          domesticNotional,
		ForeignNotional:           foreignNotional,
		MaturityYears:             maturity,
		DomesticFrequency:         intFieldDefault(row, "fixed_frequency", 2),
		ForeignFrequency:          intFieldDefault(row, "float_frequency", 2),
		DomesticFixedRate:         optFloatField(row, "coupon_or_fixed_rate"),
		ForeignFixedRate:          optFloatField(row, "foreign_fixed_rate"),
		DomesticSpread:            floatFieldDefault(row, "spread", 0.0),
		ForeignSpread:             floatFieldDefault(row, "foreign_spread", 0.0),
		PayDomesticReceiveForeign: boolField(row, "pay_domestic_receive_foreign", true),
		ExchangeNotionals:         boolField(row, "exchange_notionals", true),
		MarkToMarket:              boolField(row, "mark_to_market", false),
	}, nil
}

func parseSwaption(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	strike, err := floatField(row, "strike")
	if err != nil {
		return nil, err
	}
	optionMaturity, err := floatField(row, "option_maturity_years")
	if err != nil {
		return nil, err
	}
	swapTenor, err := floatField(row, "swap_tenor_years")
	if err != nil {
		return nil, err
	}
	return product.EuropeanSwaption{
		Notional:            notional,
		Strike:              strike,
		OptionMaturityYears: optionMaturity,
		SwapTenorYears:      swapTenor,
		FixedLegFrequency:   intFieldDefault(row, "fixed_frequency", 1),
		Volatility:          floatFieldDefault(row, "volatility", 0.20),
		IsPayer:             boolField(row, "is_payer", true),
	}, nil
}

func parseCapFloor(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	strike, err := floatField(row, "strike")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.InterestRateCapFloor{
		Notional:         notional,
		Strike:           strike,
		MaturityYears:    maturity,
		PaymentFrequency: intFieldDefault(row, "float_frequency", 4),
		Volatility:       floatFieldDefault(row, "volatility", 0.20),
		IsCap:            boolField(row, "is_cap", true),
	}, nil
}

func parseCDS(row Row) (product.Product, error) {
	notional, err := floatField(row, "notional")
	if err != nil {
		return nil, err
	}
	spreadBps, err := floatField(row, "spread_bps")
	if err != nil {
		return nil, err
	}
	maturity, err := floatField(row, "maturity_years")
	if err != nil {
		return nil, err
	}
	return product.CreditDefaultSwap{
		Notional:         notional,
		SpreadBps:        spreadBps,
		MaturityYears:    maturity,
		PaymentFrequency: intFieldDefault(row, "float_frequency", 4),
		RecoveryRate:     floatFieldDefault(row, "recovery_rate", 0.40),
		ProtectionBuyer:  boolField(row, "protection_buyer", true),
	}, nil
}

// ---- field helpers ----

// pipeFloats decodes a "v|v|v" list; an empty string yields nil.
func pipeFloats(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("list value %q: %w", part, err)
		}
		values = append(values, f)
	}
	return values, nil
}

func strField(row Row, key, def string) string {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return def
	}
	return v
}

func floatField(row Row, key string) (float64, error) {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return f, nil
}

func floatFieldDefault(row Row, key string, def float64) float64 {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func optFloatField(row Row, key string) *float64 {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func intFieldDefault(row Row, key string, def int) int {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return int(f)
}

func boolField(row Row, key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(row[key]))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
