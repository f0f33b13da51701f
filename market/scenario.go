package market

// Scenario is the full set of market states a product may price against.
//
// Only Name and Model are universally required; each product checks the
// slots it needs and fails with a slot-specific error before pricing.
type Scenario struct {
	Name string

	// Model discounts domestic cashflows.
	Model RateModel
	// ForeignModel discounts foreign-leg cashflows for FX and CCS products.
	ForeignModel RateModel
	// ForwardModel, when set, overrides Model for floating-rate projection.
	ForwardModel ForwardSource
	// FXCurve quotes FX forwards as domestic per unit foreign.
	FXCurve *FXCurve
	// HazardCurve drives credit products.
	HazardCurve *HazardCurve
}
