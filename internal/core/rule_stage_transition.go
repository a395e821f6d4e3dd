package core

import (
	"context"
	"fmt"

	"agricore/pkg/domain"
)

// StageTransitionRule blocks growth-stage regressions and unknown stages on
// crop records, whichever transaction path produced the change.
func StageTransitionRule() domain.Rule {
	return stageTransitionRule{}
}

type stageTransitionRule struct{}

func (stageTransitionRule) Name() string { return "stage_transition" }

func (stageTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityCrop {
			continue
		}

		after, ok := change.After.(domain.Crop)
		if ok && !after.Stage.Valid() {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stage_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("crop %s is set to unknown stage %s", after.ID, after.Stage),
				Entity:   domain.EntityCrop,
				EntityID: after.ID,
			})
			continue
		}

		before, okBefore := change.Before.(domain.Crop)
		if !okBefore || !ok {
			continue
		}
		if !domain.StageTransitionAllowed(before.Stage, after.Stage) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stage_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("crop %s cannot regress from stage %s to %s", before.ID, before.Stage, after.Stage),
				Entity:   domain.EntityCrop,
				EntityID: after.ID,
			})
		}
	}
	return res, nil
}
