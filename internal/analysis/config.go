// Package analysis computes insights — yield estimates, recommendations,
// aggregates, valuations — from registry entities. Every function is pure:
// same inputs, same outputs, no dependency on process-local state, so the
// computations can run in an isolated execution context.
package analysis

import (
	"agricore/pkg/domain"

	"github.com/shopspring/decimal"
)

// Policy externalizes the tuning constants behind yield estimation and the
// recommendation rule set. Values are product decisions; DefaultPolicy
// carries the rates the system shipped with.
type Policy struct {
	// Yield per hectare by crop type, tonnes. CropYieldDefault applies to
	// unknown types.
	CropYieldRates   map[domain.CropType]float64
	CropYieldDefault float64

	// Timber per hectare by species, cubic meters.
	TimberRates   map[string]float64
	TimberDefault float64

	// Growth-stage multipliers applied to the crop base rate.
	StageMultipliers map[domain.GrowthStage]float64

	// Stands younger than YoungStandAgeYears yield at YoungStandMultiplier.
	YoungStandAgeYears  int
	YoungStandMultiplier float64

	// Organic farming yields less but prices higher.
	OrganicYieldFactor float64
	OrganicPriceFactor float64

	// Recommendation thresholds.
	HarvestWindowDays      int
	InventoryStalenessDays int

	// Market prices per tonne (crops) and per cubic meter (timber).
	CropPrices   map[domain.CropType]decimal.Decimal
	CropPriceDefault decimal.Decimal
	TimberPrices map[string]decimal.Decimal
	TimberPriceDefault decimal.Decimal

	// Water requirement per hectare by crop type, cubic meters.
	WaterRates   map[domain.CropType]float64
	WaterDefault float64

	// Carbon accounting: sequestration per hectare per year by species and
	// emissions per hectare per year by crop type, tonnes CO2.
	SequestrationRates   map[string]float64
	SequestrationDefault float64
	EmissionRates        map[domain.CropType]float64
	EmissionDefault      float64

	// Portfolio thresholds for Analyze.
	LargeHoldingHectares float64
}

// DefaultPolicy returns the shipped tuning values.
func DefaultPolicy() Policy {
	return Policy{
		CropYieldRates: map[domain.CropType]float64{
			domain.CropTypeGrain:     3.5,
			domain.CropTypeVegetable: 12.0,
			domain.CropTypeFruit:     9.0,
			domain.CropTypeOther:     5.0,
		},
		CropYieldDefault: 5.0,
		TimberRates: map[string]float64{
			"pine":       15.0,
			"oak":        8.0,
			"eucalyptus": 25.0,
			"teak":       10.0,
			"bamboo":     20.0,
		},
		TimberDefault: 12.0,
		StageMultipliers: map[domain.GrowthStage]float64{
			domain.StageSeedling: 0.1,
			domain.StageGrowing:  0.5,
			domain.StageMature:   1.0,
		},
		YoungStandAgeYears:   10,
		YoungStandMultiplier: 0.3,
		OrganicYieldFactor:   0.8,
		OrganicPriceFactor:   1.3,

		HarvestWindowDays:      14,
		InventoryStalenessDays: 365,

		CropPrices: map[domain.CropType]decimal.Decimal{
			domain.CropTypeGrain:     decimal.NewFromInt(250),
			domain.CropTypeVegetable: decimal.NewFromInt(150),
			domain.CropTypeFruit:     decimal.NewFromInt(350),
			domain.CropTypeOther:     decimal.NewFromInt(300),
		},
		CropPriceDefault: decimal.NewFromInt(200),
		TimberPrices: map[string]decimal.Decimal{
			"pine":       decimal.NewFromInt(100),
			"oak":        decimal.NewFromInt(150),
			"eucalyptus": decimal.NewFromInt(80),
		},
		TimberPriceDefault: decimal.NewFromInt(100),

		WaterRates: map[domain.CropType]float64{
			domain.CropTypeGrain:     4500,
			domain.CropTypeVegetable: 5000,
			domain.CropTypeFruit:     6000,
			domain.CropTypeOther:     5000,
		},
		WaterDefault: 5000,

		SequestrationRates: map[string]float64{
			"pine":       8.0,
			"oak":        6.5,
			"eucalyptus": 15.0,
			"teak":       7.0,
			"bamboo":     12.0,
		},
		SequestrationDefault: 8.0,
		EmissionRates: map[domain.CropType]float64{
			domain.CropTypeGrain:     0.5,
			domain.CropTypeVegetable: 0.4,
			domain.CropTypeFruit:     0.6,
			domain.CropTypeOther:     0.5,
		},
		EmissionDefault: 0.5,

		LargeHoldingHectares: 100,
	}
}

func (p Policy) cropYieldRate(t domain.CropType) float64 {
	if rate, ok := p.CropYieldRates[t]; ok {
		return rate
	}
	return p.CropYieldDefault
}

func (p Policy) timberRate(species string) float64 {
	if rate, ok := p.TimberRates[species]; ok {
		return rate
	}
	return p.TimberDefault
}

func (p Policy) stageMultiplier(stage domain.GrowthStage) float64 {
	if m, ok := p.StageMultipliers[stage]; ok {
		return m
	}
	return 0
}

func (p Policy) cropPrice(t domain.CropType) decimal.Decimal {
	if price, ok := p.CropPrices[t]; ok {
		return price
	}
	return p.CropPriceDefault
}

func (p Policy) timberPrice(species string) decimal.Decimal {
	if price, ok := p.TimberPrices[species]; ok {
		return price
	}
	return p.TimberPriceDefault
}
