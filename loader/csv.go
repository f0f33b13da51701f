package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/meenmo/riskval/engine"
	"github.com/meenmo/riskval/market"
	"github.com/meenmo/riskval/product"
)

// readRows decodes a headered CSV stream into Row maps.
func readRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV input")
	}
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[strings.TrimSpace(key)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadZeroCurveCSV reads a "tenor_years,zero_rate" file into a zero curve.
func LoadZeroCurveCSV(path string) (*market.ZeroCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadZeroCurveCSV: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("LoadZeroCurveCSV: %s: %w", path, err)
	}
	tenors := make([]float64, 0, len(rows))
	rates := make([]float64, 0, len(rows))
	for _, row := range rows {
		t, err := floatField(row, "tenor_years")
		if err != nil {
			return nil, fmt.Errorf("LoadZeroCurveCSV: %s: %w", path, err)
		}
		r, err := floatField(row, "zero_rate")
		if err != nil {
			return nil, fmt.Errorf("LoadZeroCurveCSV: %s: %w", path, err)
		}
		tenors = append(tenors, t)
		rates = append(rates, r)
	}
	curve, err := market.NewZeroCurve(tenors, rates)
	if err != nil {
		return nil, fmt.Errorf("LoadZeroCurveCSV: %s: %w", path, err)
	}
	return curve, nil
}

// LoadPortfolioCSV reads a mixed-product portfolio file. Each row names its
// product_type; rows with an empty product_type are skipped.
func LoadPortfolioCSV(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPortfolioCSV: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("LoadPortfolioCSV: %s: %w", path, err)
	}
	portfolio := make([]product.Product, 0, len(rows))
	for i, row := range rows {
		productType := strings.ToLower(strings.TrimSpace(row["product_type"]))
		if productType == "" {
			continue
		}
		p, err := ParseProduct(row, productType)
		if err != nil {
			return nil, fmt.Errorf("LoadPortfolioCSV: %s row %d: %w", path, i+2, err)
		}
		portfolio = append(portfolio, p)
	}
	return portfolio, nil
}

// LoadCurveQuotesCSV reads calibration quotes with columns
// instrument_type (deposit|swap), tenor_years, rate, and an optional
// fixed_frequency for swaps.
func LoadCurveQuotesCSV(path string) ([]market.DepositQuote, []market.SwapQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("LoadCurveQuotesCSV: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, nil, fmt.Errorf("LoadCurveQuotesCSV: %s: %w", path, err)
	}
	var deposits []market.DepositQuote
	var swaps []market.SwapQuote
	for i, row := range rows {
		tenor, err := floatField(row, "tenor_years")
		if err != nil {
			return nil, nil, fmt.Errorf("LoadCurveQuotesCSV: %s row %d: %w", path, i+2, err)
		}
		rate, err := floatField(row, "rate")
		if err != nil {
			return nil, nil, fmt.Errorf("LoadCurveQuotesCSV: %s row %d: %w", path, i+2, err)
		}
		switch instrument := strings.ToLower(strings.TrimSpace(row["instrument_type"])); instrument {
		case "deposit":
			deposits = append(deposits, market.DepositQuote{TenorYears: tenor, SimpleRate: rate})
		case "swap":
			swaps = append(swaps, market.SwapQuote{
				MaturityYears:  tenor,
				ParRate:        rate,
				FixedFrequency: intFieldDefault(row, "fixed_frequency", 1),
			})
		default:
			return nil, nil, fmt.Errorf("LoadCurveQuotesCSV: %s row %d: unsupported instrument_type %q", path, i+2, instrument)
		}
	}
	return deposits, swaps, nil
}

// LoadNettingSetMapCSV reads "product_index,netting_set_id" assignments.
func LoadNettingSetMapCSV(path string) (map[int]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadNettingSetMapCSV: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("LoadNettingSetMapCSV: %s: %w", path, err)
	}
	mapping := make(map[int]string, len(rows))
	for i, row := range rows {
		idxRaw := strings.TrimSpace(row["product_index"])
		idx, err := strconv.Atoi(idxRaw)
		if err != nil {
			return nil, fmt.Errorf("LoadNettingSetMapCSV: %s row %d: product_index %q: %w", path, i+2, idxRaw, err)
		}
		nsID := strings.TrimSpace(row["netting_set_id"])
		if nsID == "" {
			return nil, fmt.Errorf("LoadNettingSetMapCSV: %s row %d: netting_set_id must be non-empty", path, i+2)
		}
		mapping[idx] = nsID
	}
	return mapping, nil
}

// LoadCSAConfigsCSV reads CSA terms keyed by netting set, resolving each
// discount_model_key against the supplied model registry.
func LoadCSAConfigsCSV(path string, discountModels map[string]market.RateModel) (map[string]engine.CSAConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCSAConfigsCSV: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("LoadCSAConfigsCSV: %s: %w", path, err)
	}
	configs := make(map[string]engine.CSAConfig, len(rows))
	for i, row := range rows {
		nsID := strings.TrimSpace(row["netting_set_id"])
		if nsID == "" {
			return nil, fmt.Errorf("LoadCSAConfigsCSV: %s row %d: netting_set_id must be non-empty", path, i+2)
		}
		modelKey := strings.TrimSpace(row["discount_model_key"])
		model, ok := discountModels[modelKey]
		if !ok {
			return nil, fmt.Errorf("LoadCSAConfigsCSV: %s row %d: unknown discount_model_key %q", path, i+2, modelKey)
		}
		configs[nsID] = engine.CSAConfig{
			NettingSetID:          nsID,
			DiscountModel:         model,
			CollateralRate:        floatFieldDefault(row, "collateral_rate", 0.0),
			Threshold:             floatFieldDefault(row, "threshold", 0.0),
			MinimumTransferAmount: floatFieldDefault(row, "minimum_transfer_amount", 0.0),
		}
	}
	return configs, nil
}
