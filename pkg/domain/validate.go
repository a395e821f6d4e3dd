package domain

import "time"

var stageRank = map[GrowthStage]int{
	StageSeedling:  0,
	StageGrowing:   1,
	StageMature:    2,
	StageHarvested: 3,
}

// Valid reports whether the stage is one of the canonical growth stages.
func (s GrowthStage) Valid() bool {
	_, ok := stageRank[s]
	return ok
}

// Valid reports whether the crop type is one of the canonical classifications.
func (t CropType) Valid() bool {
	switch t {
	case CropTypeGrain, CropTypeVegetable, CropTypeFruit, CropTypeOther:
		return true
	}
	return false
}

// Valid reports whether the status is one of the canonical entity statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanted, StatusGrowing, StatusHarvesting, StatusHarvested, StatusDormant:
		return true
	}
	return false
}

// StageTransitionAllowed reports whether moving from one growth stage to
// another respects the monotonic lifecycle ordering. Staying in place is
// always allowed.
func StageTransitionAllowed(from, to GrowthStage) bool {
	fromRank, ok := stageRank[from]
	if !ok {
		return false
	}
	toRank, ok := stageRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

func (b Base) validate(entity EntityType, now time.Time) error {
	if b.Name == "" {
		return ErrInvalidState{Entity: entity, ID: b.ID, Reason: "name is required"}
	}
	if b.AreaHectares <= 0 {
		return ErrInvalidState{Entity: entity, ID: b.ID, Reason: "area must be positive"}
	}
	if b.PlantedAt.IsZero() {
		return ErrInvalidState{Entity: entity, ID: b.ID, Reason: "planting date is required"}
	}
	if b.PlantedAt.After(now) {
		return ErrInvalidState{Entity: entity, ID: b.ID, Reason: "planting date is in the future"}
	}
	if !b.Status.Valid() {
		return ErrInvalidState{Entity: entity, ID: b.ID, Reason: "unknown status " + string(b.Status)}
	}
	return nil
}

// Validate checks every crop invariant against the supplied reference time.
// It is applied on creation and after every update mutation.
func (c Crop) Validate(now time.Time) error {
	if err := c.Base.validate(EntityCrop, now); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return ErrInvalidState{Entity: EntityCrop, ID: c.ID, Reason: "unknown crop type " + string(c.Type)}
	}
	if !c.Stage.Valid() {
		return ErrInvalidState{Entity: EntityCrop, ID: c.ID, Reason: "unknown growth stage " + string(c.Stage)}
	}
	if c.ExpectedHarvestAt != nil && c.ExpectedHarvestAt.Before(c.PlantedAt) {
		return ErrInvalidState{Entity: EntityCrop, ID: c.ID, Reason: "expected harvest precedes planting"}
	}
	if c.LastYieldTonnes != nil && *c.LastYieldTonnes < 0 {
		return ErrInvalidState{Entity: EntityCrop, ID: c.ID, Reason: "recorded yield must be non-negative"}
	}
	return nil
}

// Validate checks every forest invariant against the supplied reference time.
func (f Forest) Validate(now time.Time) error {
	if err := f.Base.validate(EntityForest, now); err != nil {
		return err
	}
	if f.Species == "" {
		return ErrInvalidState{Entity: EntityForest, ID: f.ID, Reason: "species is required"}
	}
	if f.StandAgeYears < 0 {
		return ErrInvalidState{Entity: EntityForest, ID: f.ID, Reason: "stand age must be non-negative"}
	}
	if f.DensityPerHectare <= 0 {
		return ErrInvalidState{Entity: EntityForest, ID: f.ID, Reason: "density must be positive"}
	}
	if f.LastInventoryAt != nil {
		if f.LastInventoryAt.Before(f.PlantedAt) {
			return ErrInvalidState{Entity: EntityForest, ID: f.ID, Reason: "inventory precedes establishment"}
		}
		if f.LastInventoryAt.After(now) {
			return ErrInvalidState{Entity: EntityForest, ID: f.ID, Reason: "inventory date is in the future"}
		}
	}
	return nil
}
