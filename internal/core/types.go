// Package core exposes the transactional registry service, rule set, and
// storage/observability wiring for agricore.
package core

import "agricore/pkg/domain"

type (
	EntityType         = domain.EntityType
	CropType           = domain.CropType
	GrowthStage        = domain.GrowthStage
	Status             = domain.Status
	Severity           = domain.Severity
	Base               = domain.Base
	Crop               = domain.Crop
	Forest             = domain.Forest
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityCrop   = domain.EntityCrop
	EntityForest = domain.EntityForest
)

const (
	StageSeedling  = domain.StageSeedling
	StageGrowing   = domain.StageGrowing
	StageMature    = domain.StageMature
	StageHarvested = domain.StageHarvested
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine returns an engine preloaded with the registry rule set.
func NewRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StageTransitionRule())
	return engine
}
