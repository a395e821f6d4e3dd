package analysis

import (
	"agricore/pkg/domain"

	"github.com/shopspring/decimal"
)

// MarketValue prices the estimated yield at current policy rates. Organic
// crops command a premium on top of their reduced yield. Values are exact
// decimals to keep monetary arithmetic round-trip safe.
func MarketValue(entity domain.Entity, policy Policy) (decimal.Decimal, error) {
	estimate, err := EstimateYield(entity, policy)
	if err != nil {
		return decimal.Zero, err
	}
	quantity := decimal.NewFromFloat(estimate.Quantity)
	switch e := entity.(type) {
	case domain.Crop:
		value := quantity.Mul(policy.cropPrice(e.Type))
		if e.Organic {
			value = value.Mul(decimal.NewFromFloat(policy.OrganicPriceFactor))
		}
		return value, nil
	case domain.Forest:
		return quantity.Mul(policy.timberPrice(e.Species)), nil
	default:
		return decimal.Zero, domain.ErrInsufficientData{Entity: entity.Kind(), ID: estimate.EntityID, Missing: "valuation rate"}
	}
}

// WaterRequirement estimates seasonal irrigation demand in cubic meters.
func WaterRequirement(c domain.Crop, policy Policy) (float64, error) {
	if c.AreaHectares <= 0 {
		return 0, domain.ErrInsufficientData{Entity: domain.EntityCrop, ID: c.ID, Missing: "positive area"}
	}
	rate, ok := policy.WaterRates[c.Type]
	if !ok {
		rate = policy.WaterDefault
	}
	return rate * c.AreaHectares, nil
}

// Sequestration returns annual CO2 uptake in tonnes for a forest stand.
func Sequestration(f domain.Forest, policy Policy) float64 {
	rate, ok := policy.SequestrationRates[f.Species]
	if !ok {
		rate = policy.SequestrationDefault
	}
	return rate * f.AreaHectares
}

// Carbon balance classifications.
const (
	CarbonSink   = "carbon_sink"
	CarbonSource = "carbon_source"
)

// CarbonReport is the annual carbon balance for one entity. Positive
// AnnualTonnesCO2 means net emission, negative means net sequestration.
type CarbonReport struct {
	EntityID        string  `json:"entity_id"`
	Classification  string  `json:"classification"`
	AnnualTonnesCO2 float64 `json:"annual_tonnes_co2"`
}

// CarbonFootprint computes the annual carbon balance. Forests sequester,
// crops emit.
func CarbonFootprint(entity domain.Entity, policy Policy) (CarbonReport, error) {
	switch e := entity.(type) {
	case domain.Crop:
		if e.AreaHectares <= 0 {
			return CarbonReport{}, domain.ErrInsufficientData{Entity: domain.EntityCrop, ID: e.ID, Missing: "positive area"}
		}
		rate, ok := policy.EmissionRates[e.Type]
		if !ok {
			rate = policy.EmissionDefault
		}
		return CarbonReport{
			EntityID:        e.ID,
			Classification:  CarbonSource,
			AnnualTonnesCO2: rate * e.AreaHectares,
		}, nil
	case domain.Forest:
		if e.AreaHectares <= 0 {
			return CarbonReport{}, domain.ErrInsufficientData{Entity: domain.EntityForest, ID: e.ID, Missing: "positive area"}
		}
		return CarbonReport{
			EntityID:        e.ID,
			Classification:  CarbonSink,
			AnnualTonnesCO2: -Sequestration(e, policy),
		}, nil
	default:
		return CarbonReport{}, domain.ErrInsufficientData{Entity: entity.Kind(), ID: "", Missing: "carbon rate"}
	}
}
