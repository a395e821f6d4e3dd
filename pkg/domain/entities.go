// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by agricore.
package domain

import "time"

// EntityType identifies the kind of record stored in the registry.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityCrop identifies an agricultural crop record.
	EntityCrop EntityType = "crop"
	// EntityForest identifies a forestry plantation record.
	EntityForest EntityType = "forest"
)

// CropType classifies a crop for yield and valuation purposes.
type CropType string

// Canonical crop type classifications.
const (
	CropTypeGrain     CropType = "grain"
	CropTypeVegetable CropType = "vegetable"
	CropTypeFruit     CropType = "fruit"
	CropTypeOther     CropType = "other"
)

// GrowthStage represents the canonical crop lifecycle states. Transitions are
// monotonic: a crop never moves back to an earlier stage.
type GrowthStage string

// Canonical growth stages in lifecycle order.
const (
	StageSeedling  GrowthStage = "seedling"
	StageGrowing   GrowthStage = "growing"
	StageMature    GrowthStage = "mature"
	StageHarvested GrowthStage = "harvested"
)

// Status is the caller-visible operational state shared by all entity kinds.
type Status string

// Canonical entity statuses.
const (
	StatusPlanted    Status = "planted"
	StatusGrowing    Status = "growing"
	StatusHarvesting Status = "harvesting"
	StatusHarvested  Status = "harvested"
	StatusDormant    Status = "dormant"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all registry records. Area is expressed in
// hectares throughout.
type Base struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OwnerID      string    `json:"owner_id"`
	AreaHectares float64   `json:"area_hectares"`
	PlantedAt    time.Time `json:"planted_at"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Crop represents an agricultural crop under management.
type Crop struct {
	Base
	Type              CropType    `json:"type"`
	Stage             GrowthStage `json:"stage"`
	Organic           bool        `json:"organic"`
	ExpectedHarvestAt *time.Time  `json:"expected_harvest_at,omitempty"`
	LastYieldTonnes   *float64    `json:"last_yield_tonnes,omitempty"`
	PhotoKey          *string     `json:"photo_key,omitempty"`
}

// Forest represents a forestry plantation stand.
type Forest struct {
	Base
	Species           string     `json:"species"`
	StandAgeYears     int        `json:"stand_age_years"`
	DensityPerHectare float64    `json:"density_per_hectare"`
	LastInventoryAt   *time.Time `json:"last_inventory_at,omitempty"`
	PhotoKey          *string    `json:"photo_key,omitempty"`
}

// Entity is implemented by the concrete registry record kinds so analysis
// code can operate over mixed collections.
type Entity interface {
	Kind() EntityType
}

// Kind identifies the record as a crop.
func (Crop) Kind() EntityType { return EntityCrop }

// Kind identifies the record as a forest stand.
func (Forest) Kind() EntityType { return EntityForest }

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for rule evaluation
// and audit.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
