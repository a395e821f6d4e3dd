package analysis

import "agricore/pkg/domain"

// Yield units. Crops are estimated in tonnes, timber in cubic meters.
const (
	UnitTonnes      = "tonnes"
	UnitCubicMeters = "cubic_meters"
)

// Confidence labels attached to yield estimates.
const (
	ConfidenceRecorded  = "recorded"  // harvested crop, actual yield on file
	ConfidenceEstimated = "estimated" // model output from area and rates
)

// YieldEstimate is the computed production forecast for one entity.
type YieldEstimate struct {
	EntityID   string            `json:"entity_id"`
	Entity     domain.EntityType `json:"entity"`
	Quantity   float64           `json:"quantity"`
	Unit       string            `json:"unit"`
	PerHectare float64           `json:"per_hectare"`
	Confidence string            `json:"confidence"`
}

// Recommendation is the highest-priority advice matched for an entity.
type Recommendation struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Insight bundles the computed results for one entity. Insights are
// ephemeral: produced per call, never stored by the registry.
type Insight struct {
	EntityID       string            `json:"entity_id"`
	Entity         domain.EntityType `json:"entity"`
	Yield          YieldEstimate     `json:"yield"`
	Recommendation Recommendation    `json:"recommendation"`
}

// AggregateReport summarizes a collection of entities. An empty collection
// produces a zero-valued report, not an error.
type AggregateReport struct {
	TotalCount        int     `json:"total_count"`
	CropCount         int     `json:"crop_count"`
	ForestCount       int     `json:"forest_count"`
	TotalAreaHectares float64 `json:"total_area_hectares"`
	CropAreaHectares  float64 `json:"crop_area_hectares"`
	ForestAreaHectares float64 `json:"forest_area_hectares"`

	// TotalEstimatedYield sums crop tonnes and timber cubic meters, matching
	// the reporting convention of the upstream dashboard. Per-unit totals
	// are also broken out.
	TotalEstimatedYield        float64 `json:"total_estimated_yield"`
	AverageEstimatedYield      float64 `json:"average_estimated_yield"`
	EstimatedCropTonnes        float64 `json:"estimated_crop_tonnes"`
	EstimatedTimberCubicMeters float64 `json:"estimated_timber_cubic_meters"`

	CountsByStage    map[domain.GrowthStage]int `json:"counts_by_stage"`
	CountsByCropType map[domain.CropType]int    `json:"counts_by_crop_type"`
}

// Risk levels reported by Analyze.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
)

// Analysis is the full portfolio report: statistics, per-entity insights,
// portfolio-level recommendations, and a diversification risk label.
type Analysis struct {
	Statistics              AggregateReport `json:"statistics"`
	Insights                []Insight       `json:"insights"`
	Recommendations         []string        `json:"recommendations"`
	RiskLevel               string          `json:"risk_level"`
	CarbonSequestrationTCO2 float64         `json:"carbon_sequestration_tco2,omitempty"`
}
